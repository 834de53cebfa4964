package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"

	"gorm.io/gorm"
)

// SeedInput carries optional seed data. BootstrapUser must already hold a
// password hash; it is created only when no user owns its email.
type SeedInput struct {
	BootstrapUser *domain.User
}

type SeedReport struct {
	CreatedStages int  `json:"created_stages"`
	CreatedUsers  int  `json:"created_users"`
	Noop          bool `json:"noop"`
}

func Seed(db *gorm.DB, in SeedInput) error {
	_, err := SeedSync(db, in)
	return err
}

func SeedSync(db *gorm.DB, in SeedInput) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	report := &SeedReport{}
	for i, name := range domain.DefaultStages {
		stage := domain.Stage{Name: name, Position: i + 1}
		res := db.Where("name = ?", name).Attrs(domain.Stage{Position: i + 1}).FirstOrCreate(&stage)
		if res.Error != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedStages++
		}
	}

	if u := in.BootstrapUser; u != nil {
		email := strings.TrimSpace(u.Email)
		if email == "" || u.PasswordHash == "" {
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, fmt.Errorf("bootstrap user requires email and password hash")
		}
		var existing domain.User
		err := db.Where("email = ?", email).First(&existing).Error
		switch {
		case err == nil:
		case errors.Is(err, gorm.ErrRecordNotFound):
			user := domain.User{Username: u.Username, Email: email, PasswordHash: u.PasswordHash}
			if err := db.Create(&user).Error; err != nil {
				observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
				return nil, fmt.Errorf("create bootstrap user: %w", err)
			}
			report.CreatedUsers++
		default:
			observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
			return nil, err
		}
	}

	report.Noop = report.CreatedStages == 0 && report.CreatedUsers == 0
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}
