package repository

import (
	"context"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/gorm"
)

const maxHistoryRows = 500

type CommunicationRepository interface {
	Create(ctx context.Context, record *domain.CommunicationRecord) error
	// ListHistory returns newest first. A zero customerID lists every customer.
	ListHistory(ctx context.Context, customerID uint, limit int) ([]domain.CommunicationRecord, error)
}

type GormCommunicationRepository struct {
	store crudStore[domain.CommunicationRecord]
}

func NewCommunicationRepository(db *gorm.DB) CommunicationRepository {
	return &GormCommunicationRepository{store: crudStore[domain.CommunicationRecord]{db: db, name: "communication"}}
}

func (r *GormCommunicationRepository) Create(ctx context.Context, record *domain.CommunicationRecord) error {
	return r.store.create(ctx, record)
}

func (r *GormCommunicationRepository) ListHistory(ctx context.Context, customerID uint, limit int) ([]domain.CommunicationRecord, error) {
	if limit <= 0 || limit > maxHistoryRows {
		limit = maxHistoryRows
	}
	return r.store.list(ctx, "list_history", func(db *gorm.DB) *gorm.DB {
		if customerID != 0 {
			db = db.Where("customer_id = ?", customerID)
		}
		return db.Order("created_at desc, id desc").Limit(limit)
	})
}
