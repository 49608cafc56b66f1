// Package observability provides the dashboard telemetry sinks: structured
// logs through zerolog and counters through prometheus.
package observability

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

// LogTelemetry writes every dashboard event as a log entry. Failures log at
// warn level, everything else at debug.
type LogTelemetry struct {
	logger zerolog.Logger
}

var _ dashboard.Telemetry = (*LogTelemetry)(nil)

// NewLogTelemetry tags entries with component=telemetry.
func NewLogTelemetry(logger zerolog.Logger) *LogTelemetry {
	return &LogTelemetry{logger: logger.With().Str("component", "telemetry").Logger()}
}

// Record satisfies dashboard.Telemetry.
func (t *LogTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	entry := t.logger.Debug()
	if strings.HasSuffix(event, ".failed") {
		entry = t.logger.Warn()
	}
	entry.Fields(payload).Str("event", event).Msg("dashboard event")
}

// Multi fans one event out to several sinks, skipping nil entries.
type Multi []dashboard.Telemetry

// Record satisfies dashboard.Telemetry.
func (m Multi) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range m {
		if sink != nil {
			sink.Record(ctx, event, payload)
		}
	}
}

// LogHook logs every region write at trace level.
type LogHook struct {
	logger zerolog.Logger
}

var _ dashboard.RefreshHook = (*LogHook)(nil)

// NewLogHook tags entries with component=regions.
func NewLogHook(logger zerolog.Logger) *LogHook {
	return &LogHook{logger: logger.With().Str("component", "regions").Logger()}
}

// WidgetUpdated satisfies dashboard.RefreshHook.
func (h *LogHook) WidgetUpdated(_ context.Context, event dashboard.WidgetEvent) error {
	h.logger.Trace().
		Str("widget", event.Widget).
		Str("region", event.Region).
		Str("state", string(event.State.Kind)).
		Uint64("seq", event.State.Seq).
		Str("reason", event.Reason).
		Msg("region written")
	return nil
}
