package migrate

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/database"
)

func openPlanDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPlanOnEmptyDatabase(t *testing.T) {
	details, err := plan(openPlanDB(t))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	joined := strings.Join(details, "\n")
	for _, want := range []string{"would create tables:", "users", "communication_history", "would insert default stages: New, Contacted", "no mutation executed"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("plan missing %q:\n%s", want, joined)
		}
	}
}

func TestPlanAfterMigrateAndSeed(t *testing.T) {
	db := openPlanDB(t)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, database.SeedInput{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	details, err := plan(db)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	joined := strings.Join(details, "\n")
	if strings.Contains(joined, "would create tables") || strings.Contains(joined, "would insert default stages") {
		t.Fatalf("expected nothing pending:\n%s", joined)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"up", "status", "plan"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("missing subcommand %s: %v", name, err)
		}
	}
}
