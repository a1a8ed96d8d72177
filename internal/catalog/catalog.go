// Package catalog opens the product catalog selected by configuration.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"shoppingcart/internal/config"
	"shoppingcart/internal/db"
	"shoppingcart/internal/migrate"
	productrepo "shoppingcart/internal/repository/product"
	"shoppingcart/internal/seed"
)

// Store is an opened catalog backend. Exactly one of Pool and SQL is set for
// the database drivers; both are nil for the memory driver.
type Store struct {
	Driver string
	Repo   productrepo.Repository
	Ready  db.Pinger
	Pool   *pgxpool.Pool
	SQL    *sql.DB
}

// Open connects to the backend named by cfg.CatalogDriver. SQLite files are
// migrated on open and the memory catalog starts with the demo products.
// Postgres schemas are left to cmd/migrate.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.CatalogDriver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &Store{
			Driver: cfg.CatalogDriver,
			Repo:   productrepo.NewPostgres(pool, logger),
			Ready:  pool,
			Pool:   pool,
		}, nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := migrate.ApplySQLite(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return &Store{
			Driver: cfg.CatalogDriver,
			Repo:   productrepo.NewSQLite(sqlDB, logger),
			Ready:  db.PingFunc(sqlDB.PingContext),
			SQL:    sqlDB,
		}, nil

	case config.DriverMemory:
		repo := productrepo.NewMemory()
		if err := seed.Apply(ctx, repo); err != nil {
			return nil, fmt.Errorf("seed memory catalog: %w", err)
		}
		return &Store{
			Driver: cfg.CatalogDriver,
			Repo:   repo,
			Ready:  db.PingFunc(func(context.Context) error { return nil }),
		}, nil

	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.CatalogDriver)
	}
}

// Close releases the underlying connection, if any.
func (s *Store) Close() {
	if s == nil {
		return
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.SQL != nil {
		s.SQL.Close()
	}
}
