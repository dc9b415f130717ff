package database

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"phlock/infrastructure/observability"
)

// queryTracer reports every statement's operation and duration to the
// metrics provider. With metrics disabled it costs one context value.
type queryTracer struct{}

type queryStartKey struct{}

type queryStart struct {
	at        time.Time
	operation string
}

func (queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{
		at:        time.Now(),
		operation: sqlOperation(data.SQL),
	})
}

func (queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryEndData) {
	metrics := observability.GetMetrics()
	if metrics == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	metrics.RecordDatabaseQuery(start.operation, time.Since(start.at))
}

// sqlOperation extracts the leading SQL keyword for metric labeling.
// Statements that do not start with a bare keyword report as OTHER.
func sqlOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "OTHER"
	}
	op := strings.ToUpper(fields[0])
	for _, r := range op {
		if r < 'A' || r > 'Z' {
			return "OTHER"
		}
	}
	return op
}
