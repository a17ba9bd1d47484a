package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	pgxTracerName = "github.com/buriane/taghiane/internal/storage/postgres"
	maxStatement  = 300
)

type querySpanKey struct{}

// PGXTracer turns every query of the Postgres bill store into a client span
// named after its verb and table, e.g. "SELECT split_bills".
type PGXTracer struct {
	provider trace.TracerProvider
}

var _ pgx.QueryTracer = (*PGXTracer)(nil)

// NewPGXTracer returns a tracer on tp, or on the global provider when tp is
// nil. The global provider is looked up per query, so it may be installed
// after the pool is built.
func NewPGXTracer(tp trace.TracerProvider) *PGXTracer {
	return &PGXTracer{provider: tp}
}

func (t *PGXTracer) tracer() trace.Tracer {
	if t.provider != nil {
		return t.provider.Tracer(pgxTracerName)
	}
	return otel.Tracer(pgxTracerName)
}

// querySummary returns the statement verb and the table it targets.
func querySummary(sql string) (verb, table string) {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "", ""
	}
	verb = strings.ToUpper(fields[0])
	for i, f := range fields[:len(fields)-1] {
		switch strings.ToUpper(f) {
		case "FROM", "INTO", "UPDATE":
			return verb, strings.Trim(fields[i+1], `"(;`)
		}
	}
	return verb, ""
}

func (t *PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	verb, table := querySummary(data.SQL)
	name := strings.TrimSpace(verb + " " + table)
	if name == "" {
		name = "postgres"
	}

	statement := strings.TrimSpace(data.SQL)
	if len(statement) > maxStatement {
		statement = statement[:maxStatement] + "..."
	}

	ctx, span := t.tracer().Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", verb),
			attribute.String("db.sql.table", table),
			attribute.String("db.statement", statement),
		),
	)
	return context.WithValue(ctx, querySpanKey{}, span)
}

func (t *PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(querySpanKey{}).(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, "query failed")
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
}
