package credstore

import (
	"context"
	"log/slog"
	"time"
)

// MetricsCollector receives timing information for store operations.
type MetricsCollector interface {
	// RecordOperation records a completed store operation. op is a stable
	// name such as "save_password" or "delete".
	RecordOperation(ctx context.Context, op string, duration time.Duration, err error)

	// RecordPoolStats records connection pool statistics.
	RecordPoolStats(stats PoolStats)
}

// NoOpMetricsCollector discards all metrics.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordOperation(context.Context, string, time.Duration, error) {}

func (NoOpMetricsCollector) RecordPoolStats(PoolStats) {}

// LoggingMetricsCollector logs metrics through slog.
type LoggingMetricsCollector struct {
	logger *slog.Logger
}

// NewLoggingMetricsCollector creates a collector that logs each operation.
func NewLoggingMetricsCollector(logger *slog.Logger) *LoggingMetricsCollector {
	return &LoggingMetricsCollector{logger: logger}
}

func (l *LoggingMetricsCollector) RecordOperation(ctx context.Context, op string, duration time.Duration, err error) {
	if err != nil {
		l.logger.ErrorContext(ctx, "store operation failed",
			slog.String("op", op),
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)
		return
	}
	l.logger.DebugContext(ctx, "store operation completed",
		slog.String("op", op),
		slog.Duration("duration", duration),
	)
}

func (l *LoggingMetricsCollector) RecordPoolStats(stats PoolStats) {
	l.logger.Debug("pool stats",
		slog.Int("acquired_conns", int(stats.AcquiredConns)),
		slog.Int("idle_conns", int(stats.IdleConns)),
		slog.Int("total_conns", int(stats.TotalConns)),
		slog.Int("max_conns", int(stats.MaxConns)),
	)
}
