package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/config"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/database"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/security"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/tools/common"
)

const toolName = "seed"

type options struct {
	common.Options
	userEmail string
	userName  string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.CI, "ci", false, "non-interactive machine-readable output")
	cmd.PersistentFlags().StringVar(&opts.userEmail, "bootstrap-user-email", "", "override BOOTSTRAP_USER_EMAIL")
	cmd.PersistentFlags().StringVar(&opts.userName, "bootstrap-user-name", "", "override BOOTSTRAP_USER_NAME")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Insert default pipeline stages and the optional bootstrap user",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(opts.Options, toolName, "apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.LoadConfigDB(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				return apply(db.WithContext(ctx), bootstrapFrom(cfg, opts))
			})
			return common.Exit(err)
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what apply would insert without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(opts.Options, toolName, "dry-run", func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.LoadConfigDB(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				return dryRun(db.WithContext(ctx), bootstrapFrom(cfg, opts))
			})
			return common.Exit(err)
		},
	}
}

type bootstrapUser struct {
	email    string
	name     string
	password string
}

func bootstrapFrom(cfg *config.Config, opts *options) bootstrapUser {
	b := bootstrapUser{email: cfg.BootstrapUserEmail, name: cfg.BootstrapUserName, password: cfg.BootstrapUserPassword}
	if v := strings.TrimSpace(opts.userEmail); v != "" {
		b.email = v
	}
	if v := strings.TrimSpace(opts.userName); v != "" {
		b.name = v
	}
	return b
}

func apply(db *gorm.DB, b bootstrapUser) ([]string, error) {
	in := database.SeedInput{}
	if b.email != "" {
		if b.password == "" {
			return nil, errors.New("BOOTSTRAP_USER_PASSWORD is required when a bootstrap user email is set")
		}
		hash, err := security.HashPassword(b.password)
		if err != nil {
			return nil, fmt.Errorf("hash bootstrap password: %w", err)
		}
		in.BootstrapUser = &domain.User{Username: b.name, Email: b.email, PasswordHash: hash}
	}
	report, err := database.SeedSync(db, in)
	if err != nil {
		return nil, err
	}
	details := []string{fmt.Sprintf("default stages created: %d", report.CreatedStages)}
	if b.email != "" {
		details = append(details, fmt.Sprintf("bootstrap users created: %d (%s)", report.CreatedUsers, b.email))
	}
	if report.Noop {
		details = append(details, "nothing to do")
	}
	return details, nil
}

func dryRun(db *gorm.DB, b bootstrapUser) ([]string, error) {
	if pending, err := database.PendingTables(db); err != nil {
		return nil, err
	} else if len(pending) > 0 {
		return nil, fmt.Errorf("schema not migrated, pending tables: %s", strings.Join(pending, ", "))
	}

	var existing []string
	if err := db.Model(&domain.Stage{}).Where("name IN ?", domain.DefaultStages).Pluck("name", &existing).Error; err != nil {
		return nil, err
	}
	details := []string{fmt.Sprintf("default stages to create: %d", len(domain.DefaultStages)-len(existing))}

	if b.email != "" {
		var count int64
		if err := db.Model(&domain.User{}).Where("email = ?", b.email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			details = append(details, "bootstrap user would be created: "+b.email)
		} else {
			details = append(details, "bootstrap user already exists: "+b.email)
		}
	}
	details = append(details, "no mutation executed in dry-run mode")
	return details, nil
}
