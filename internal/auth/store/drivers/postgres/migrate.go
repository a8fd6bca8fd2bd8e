package postgres

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/postgres/migrations"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// ApplyMigrations applies the embedded schema. It needs a real *pgxpool.Pool.
func (s *Store) ApplyMigrations() error {
	pool, ok := s.pool.(*pgxpool.Pool)
	if !ok {
		return fmt.Errorf("postgres: migrations need a *pgxpool.Pool, got %T", s.pool)
	}

	// Closing the driver closes db but never the pool.
	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		_ = driver.Close()
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return err
	}
	defer func() { _, _ = instance.Close() }()

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
