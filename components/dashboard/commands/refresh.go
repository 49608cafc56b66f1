package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshWidgetInput names the widget to refresh and its optional input.
type RefreshWidgetInput struct {
	Widget string `json:"widget"`
	Input  string `json:"input,omitempty"`
	// Wait blocks until the region holds a terminal state.
	Wait bool `json:"wait,omitempty"`
}

type refresher interface {
	Refresh(ctx context.Context, code, input string) error
	RefreshAsync(ctx context.Context, code, input string) error
}

// RefreshWidgetCommand runs one widget refresh.
type RefreshWidgetCommand struct {
	service   refresher
	telemetry Telemetry
}

// NewRefreshWidgetCommand creates the command.
func NewRefreshWidgetCommand(service refresher, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute refreshes the widget. Only unknown widgets produce an error; fetch
// failures are written to the widget region.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Widget == "" {
		return errors.New("refresh command requires widget code")
	}
	var err error
	if msg.Wait {
		err = c.service.Refresh(ctx, msg.Widget, msg.Input)
	} else {
		err = c.service.RefreshAsync(ctx, msg.Widget, msg.Input)
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"widget": msg.Widget,
		"wait":   msg.Wait,
	})
	return nil
}
