package common

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/config"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/database"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/observability"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/tools/ui"
)

// ExitFailure is the process status for a failed tool command.
const ExitFailure = 3

type Options struct {
	EnvFile string
	Timeout time.Duration
	CI      bool
}

type Action func(context.Context) ([]string, error)

// Run executes action either headless (CI) or under the terminal UI and
// records the outcome under tool/command.
func Run(opts Options, tool, command string, action Action) ([]string, error) {
	title := tool + " " + command
	var (
		details []string
		err     error
	)
	if opts.CI {
		ctx, cancel := context.WithTimeout(context.Background(), orDefault(opts.Timeout))
		details, err = action(ctx)
		cancel()
		PrintCIResult(err == nil, title, details, err)
	} else {
		details, err = ui.Run(title, orDefault(opts.Timeout), action)
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommandRun(context.Background(), tool, command, outcome)
	return details, err
}

// Exit terminates the process with ExitFailure when err is set.
func Exit(err error) error {
	if err != nil {
		os.Exit(ExitFailure)
	}
	return nil
}

// LoadConfigDB loads env, validates configuration and opens the database.
// The caller owns the returned connection.
func LoadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func CloseDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 2 * time.Minute
	}
	return d
}
