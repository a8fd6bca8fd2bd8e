package postgres

import (
	"context"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aussiebroadwan/tokengate/internal/auth/store/drivers/postgres"

// Pool is the subset of *pgxpool.Pool the driver needs. pgxmock satisfies it
// as well, which is how the driver is unit tested.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var _ Pool = (*pgxpool.Pool)(nil)

// querier is implemented by both Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// traced wraps a querier with one client span per statement.
type traced struct {
	q      querier
	tracer trace.Tracer
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	ctx, span := startSpan(ctx, t.tracer, "Query", sql)
	rows, err := t.q.Query(ctx, sql, args...)
	finishSpan(span, err)
	return rows, err
}

// QueryRow errors surface on Scan, so the span only covers dispatch.
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	ctx, span := startSpan(ctx, t.tracer, "QueryRow", sql)
	defer span.End()
	return t.q.QueryRow(ctx, sql, args...)
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ctx, span := startSpan(ctx, t.tracer, "Exec", sql)
	tag, err := t.q.Exec(ctx, sql, args...)
	finishSpan(span, err)
	return tag, err
}

func startSpan(ctx context.Context, tracer trace.Tracer, op, sql string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "postgres."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", truncateSQL(sql)),
	)
	return ctx, span
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

const maxStatementLen = 100

func truncateSQL(sql string) string {
	if len(sql) <= maxStatementLen {
		return sql
	}
	cut := maxStatementLen
	for cut > 0 && !utf8.RuneStart(sql[cut]) {
		cut--
	}
	return sql[:cut] + "..."
}
