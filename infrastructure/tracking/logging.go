package tracking

import (
	"context"
	"log/slog"

	"github.com/corvus-index/corvus/domain/task"
)

// LoggingReporter implements Reporter by logging status changes.
type LoggingReporter struct {
	logger *slog.Logger
}

// NewLoggingReporter creates a new LoggingReporter.
func NewLoggingReporter(logger *slog.Logger) *LoggingReporter {
	return &LoggingReporter{
		logger: logger,
	}
}

// OnChange logs the task status change.
func (r *LoggingReporter) OnChange(_ context.Context, status task.Status) error {
	state := status.State()
	attrs := r.baseAttrs(status)

	if state == task.ReportingStateFailed {
		attrs = append(attrs, slog.String("error", status.Error()))
		r.logger.Error(status.Operation().String(), attrs...)
	} else {
		if msg := status.Message(); msg != "" {
			attrs = append(attrs, slog.String("message", msg))
		}
		r.logger.Info(status.Operation().String(), attrs...)
	}

	return nil
}

// baseAttrs returns the fields common to every log line: state, completion,
// and the entity the status is tracked against. Callers append state-specific
// fields (the error message, a progress message) on top.
func (r *LoggingReporter) baseAttrs(status task.Status) []any {
	attrs := []any{
		slog.String("state", string(status.State())),
		slog.Float64("completion_percent", status.CompletionPercent()),
	}
	if status.TrackableID() != 0 {
		attrs = append(attrs,
			slog.String("trackable_type", string(status.TrackableType())),
			slog.Int64("trackable_id", status.TrackableID()),
		)
	}
	return attrs
}
