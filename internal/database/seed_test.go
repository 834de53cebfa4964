package database

import (
	"testing"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMigrateCreatesAllTables(t *testing.T) {
	db := openTestDB(t)
	pending, err := PendingTables(db)
	if err != nil {
		t.Fatalf("pending tables: %v", err)
	}
	if len(pending) != len(Models()) {
		t.Fatalf("expected all tables pending on empty db, got %v", pending)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pending, err = PendingTables(db)
	if err != nil {
		t.Fatalf("pending tables: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending tables, got %v", pending)
	}
	if !db.Migrator().HasTable("communication_history") {
		t.Fatal("expected communication_history table")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	in := SeedInput{BootstrapUser: &domain.User{Username: "admin", Email: "admin@example.com", PasswordHash: "$argon2id$stub"}}

	first, err := SeedSync(db, in)
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if first.CreatedStages != len(domain.DefaultStages) || first.CreatedUsers != 1 || first.Noop {
		t.Fatalf("unexpected first report: %+v", first)
	}

	second, err := SeedSync(db, in)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if !second.Noop {
		t.Fatalf("expected noop second seed, got %+v", second)
	}

	var stages []domain.Stage
	if err := db.Order("position asc").Find(&stages).Error; err != nil {
		t.Fatalf("list stages: %v", err)
	}
	if len(stages) != len(domain.DefaultStages) || stages[0].Name != "New" || stages[0].Position != 1 {
		t.Fatalf("unexpected stages: %+v", stages)
	}
}

func TestSeedRejectsBootstrapUserWithoutHash(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := SeedSync(db, SeedInput{BootstrapUser: &domain.User{Email: "a@b.c"}}); err == nil {
		t.Fatal("expected error for bootstrap user without hash")
	}
}
