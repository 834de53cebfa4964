package migrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/database"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/di"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"
	"github.com/sandeepkv93/crm-dashboard-backend/internal/tools/common"
)

const toolName = "migrate"

func NewRootCommand() *cobra.Command {
	opts := &common.Options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.CI, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations and default pipeline stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(*opts, toolName, "up", func(ctx context.Context) ([]string, error) {
				if err := common.LoadEnvFile(opts.EnvFile); err != nil {
					return nil, err
				}
				runner, err := di.InitializeMigrationRunner()
				if err != nil {
					return nil, err
				}
				defer func() { _ = runner.Close() }()

				report, err := runner.Run()
				if err != nil {
					return nil, err
				}
				return []string{
					fmt.Sprintf("schema migration applied for %d tables", len(database.Models())),
					fmt.Sprintf("default stages created: %d", report.CreatedStages),
				}, nil
			})
			return common.Exit(err)
		},
	}
}

func newStatusCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report pending tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(*opts, toolName, "status", func(ctx context.Context) ([]string, error) {
				_, db, err := common.LoadConfigDB(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				if err := ping(ctx, db); err != nil {
					return nil, err
				}
				pending, err := database.PendingTables(db.WithContext(ctx))
				if err != nil {
					return nil, err
				}
				if len(pending) == 0 {
					return []string{"database reachable", "schema: up to date"}, nil
				}
				return []string{"database reachable", "pending tables: " + strings.Join(pending, ", ")}, nil
			})
			return common.Exit(err)
		},
	}
}

func newPlanCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what up would change (dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(*opts, toolName, "plan", func(ctx context.Context) ([]string, error) {
				_, db, err := common.LoadConfigDB(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDB(db)
				if err := ping(ctx, db); err != nil {
					return nil, err
				}
				return plan(db.WithContext(ctx))
			})
			return common.Exit(err)
		},
	}
}

// plan lists the tables up would create and the default stages it would
// insert. Existing tables are still auto-migrated for new columns.
func plan(db *gorm.DB) ([]string, error) {
	pending, err := database.PendingTables(db)
	if err != nil {
		return nil, err
	}
	details := []string{}
	if len(pending) > 0 {
		details = append(details, "would create tables: "+strings.Join(pending, ", "))
	} else {
		details = append(details, "would auto-migrate existing tables for new columns")
	}

	missing := domain.DefaultStages
	if db.Migrator().HasTable(&domain.Stage{}) {
		var existing []string
		if err := db.Model(&domain.Stage{}).Where("name IN ?", domain.DefaultStages).Pluck("name", &existing).Error; err != nil {
			return nil, err
		}
		have := make(map[string]struct{}, len(existing))
		for _, n := range existing {
			have[n] = struct{}{}
		}
		missing = nil
		for _, n := range domain.DefaultStages {
			if _, ok := have[n]; !ok {
				missing = append(missing, n)
			}
		}
	}
	if len(missing) > 0 {
		details = append(details, "would insert default stages: "+strings.Join(missing, ", "))
	}
	details = append(details, "no mutation executed in plan mode")
	return details, nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
