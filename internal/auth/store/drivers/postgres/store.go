// Package postgres is the pgx/v5 implementation of store.Store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tokengate/internal/auth/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Store keeps tokens in PostgreSQL.
type Store struct {
	pool   Pool
	q      traced
	tracer trace.Tracer
}

// NewStore connects a pool to url and verifies it with a ping.
func NewStore(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return NewFromPool(pool), nil
}

// NewFromPool wraps an existing pool, typically a pgxmock pool in tests.
func NewFromPool(pool Pool) *Store {
	tracer := otel.Tracer(tracerName)
	return &Store{
		pool:   pool,
		q:      traced{q: pool, tracer: tracer},
		tracer: tracer,
	}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, span := startSpan(ctx, s.tracer, "Ping", "SELECT 1")
	err := s.pool.Ping(ctx)
	finishSpan(span, err)
	return err
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txStore{
		tx:     tx,
		ctx:    context.WithoutCancel(ctx),
		q:      traced{q: tx, tracer: s.tracer},
		tracer: s.tracer,
	}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Rollback after Commit is a no-op in pgx.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) begin(ctx context.Context) (pgx.Tx, error) {
	ctx, span := startSpan(ctx, s.tracer, "Begin", "BEGIN")
	tx, err := s.pool.Begin(ctx)
	finishSpan(span, err)
	return tx, err
}

func (s *Store) Tokens() store.Tokens { return &tokensRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens {
	return &refreshTokensRepo{q: s.q, begin: s.begin, tracer: s.tracer}
}
func (s *Store) Tenants() store.Tenants { return &tenantsRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %w", store.ErrAlreadyExists, err)
	}
	return err
}

// nullable maps "" to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
