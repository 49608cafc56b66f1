package commands

import (
	"context"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

// Telemetry is the sink commands emit structured events to.
type Telemetry = dashboard.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
