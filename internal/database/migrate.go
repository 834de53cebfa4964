package database

import (
	"context"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"

	"gorm.io/gorm"
)

// Models lists every table owned by the service in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Customer{},
		&domain.Stage{},
		&domain.Lead{},
		&domain.Contact{},
		&domain.Task{},
		&domain.CommunicationRecord{},
	}
}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	}()
	if err := db.AutoMigrate(Models()...); err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

// PendingTables returns the model tables that do not exist yet.
func PendingTables(db *gorm.DB) ([]string, error) {
	var pending []string
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		if !db.Migrator().HasTable(m) {
			pending = append(pending, stmt.Schema.Table)
		}
	}
	return pending, nil
}
