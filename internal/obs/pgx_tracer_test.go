package obs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/buriane/taghiane/internal/obs"
)

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) attribute.Value {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestPGXTracerSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := obs.NewPGXTracer(tp)
	ctx := context.Background()

	qctx := tracer.TraceQueryStart(ctx, nil, pgx.TraceQueryStartData{
		SQL: "INSERT INTO split_bills (id, user_id) VALUES ($1, $2)",
	})
	tracer.TraceQueryEnd(qctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("INSERT 0 1")})

	qctx = tracer.TraceQueryStart(ctx, nil, pgx.TraceQueryStartData{
		SQL: "select receipt_data from split_bills where id = $1",
	})
	tracer.TraceQueryEnd(qctx, nil, pgx.TraceQueryEndData{Err: errors.New("connection reset")})

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	insert := spans[0]
	assert.Equal(t, "INSERT split_bills", insert.Name())
	assert.Equal(t, "postgresql", spanAttr(insert, "db.system").AsString())
	assert.Equal(t, int64(1), spanAttr(insert, "db.rows_affected").AsInt64())
	assert.Equal(t, codes.Unset, insert.Status().Code)

	selectSpan := spans[1]
	assert.Equal(t, "SELECT split_bills", selectSpan.Name())
	assert.Equal(t, "split_bills", spanAttr(selectSpan, "db.sql.table").AsString())
	assert.Equal(t, codes.Error, selectSpan.Status().Code)
	require.Len(t, selectSpan.Events(), 1)
	assert.Equal(t, "exception", selectSpan.Events()[0].Name)
}

func TestPGXTracerEndWithoutStart(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := obs.NewPGXTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	assert.Empty(t, recorder.Ended())
}
