// Package db provides PostgreSQL storage for user accounts and landing
// calculation history.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/unklstewy/b200-landing/pkg/config"
)

//go:embed schema.sql
var schemaSQL embed.FS

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config config.DatabaseConfig
}

// DSN builds a lib/pq connection string from cfg.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	sqlDB, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     sqlDB,
		config: cfg,
	}, nil
}

// InitSchema creates or updates the database schema.
// This should be called once at application startup.
func (db *DB) InitSchema(ctx context.Context) error {
	schemaBytes, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// PruneHistory deletes calculations older than maxAge and returns how many
// rows were removed. A non-positive maxAge keeps everything.
func (db *DB) PruneHistory(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := historyCutoff(time.Now(), maxAge)

	result, err := db.ExecContext(ctx,
		`DELETE FROM calculations WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune calculation history: %w", err)
	}
	return result.RowsAffected()
}

func historyCutoff(now time.Time, maxAge time.Duration) time.Time {
	return now.UTC().Add(-maxAge)
}

// GetStats returns database statistics.
func (db *DB) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var userCount int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_active = TRUE`,
	).Scan(&userCount)
	if err != nil {
		return nil, err
	}
	stats["active_users"] = userCount

	var calcCount int64
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM calculations`,
	).Scan(&calcCount)
	if err != nil {
		return nil, err
	}
	stats["calculations"] = calcCount

	var last sql.NullTime
	err = db.QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM calculations`,
	).Scan(&last)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		stats["last_calculation"] = last.Time
	}

	pool := db.Stats()
	stats["open_connections"] = pool.OpenConnections
	stats["in_use_connections"] = pool.InUse

	return stats, nil
}
