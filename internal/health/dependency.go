package health

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/crm-dashboard-backend/internal/database"
)

// Probe errors are reported as short codes; the driver error is logged.
func unhealthy(ctx context.Context, name, code string, err error) CheckResult {
	slog.WarnContext(ctx, "readiness check failed", "check", name, "error", err.Error())
	return CheckResult{Name: name, Healthy: false, Error: code}
}

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	sqlDB, err := c.db.DB()
	if err != nil {
		return unhealthy(ctx, "db", "db handle unavailable", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy(ctx, "db", "db unreachable", err)
	}
	return CheckResult{Name: "db", Healthy: true}
}

// SchemaChecker reports unhealthy until every model table exists.
type SchemaChecker struct {
	db *gorm.DB
}

func NewSchemaChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &SchemaChecker{db: db}
}

func (c *SchemaChecker) Check(ctx context.Context) CheckResult {
	pending, err := database.PendingTables(c.db.WithContext(ctx))
	if err != nil {
		return unhealthy(ctx, "schema", "schema inspection failed", err)
	}
	if len(pending) > 0 {
		return CheckResult{Name: "schema", Healthy: false, Error: "pending tables: " + strings.Join(pending, ",")}
	}
	return CheckResult{Name: "schema", Healthy: true}
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unhealthy(ctx, "redis", "redis unreachable", err)
	}
	return CheckResult{Name: "redis", Healthy: true}
}
