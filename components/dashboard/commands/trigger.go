package commands

import (
	"context"
	"errors"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	gocommand "github.com/goliatone/go-command"
)

// FireTriggerInput dispatches a bound trigger action.
type FireTriggerInput struct {
	Trigger string `json:"trigger"`
	Input   string `json:"input,omitempty"`
	Wait    bool   `json:"wait,omitempty"`
	// Result receives the trigger outcome when set.
	Result func(dashboard.TriggerResult) `json:"-"`
}

type triggerFirer interface {
	Fire(ctx context.Context, id, input string) (dashboard.TriggerResult, error)
	FireSync(ctx context.Context, id, input string) (dashboard.TriggerResult, error)
}

// FireTriggerCommand wraps Bootstrap.Fire and Bootstrap.FireSync.
type FireTriggerCommand struct {
	bootstrap triggerFirer
	telemetry Telemetry
}

// NewFireTriggerCommand creates the command.
func NewFireTriggerCommand(bootstrap triggerFirer, telemetry Telemetry) *FireTriggerCommand {
	return &FireTriggerCommand{bootstrap: bootstrap, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FireTriggerInput] = (*FireTriggerCommand)(nil)

// Execute fires the trigger.
func (c *FireTriggerCommand) Execute(ctx context.Context, msg FireTriggerInput) error {
	if c.bootstrap == nil {
		return errors.New("trigger command requires bootstrap")
	}
	if msg.Trigger == "" {
		return errors.New("trigger command requires trigger id")
	}
	fire := c.bootstrap.Fire
	if msg.Wait {
		fire = c.bootstrap.FireSync
	}
	result, err := fire(ctx, msg.Trigger, msg.Input)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.trigger", map[string]any{
		"trigger": msg.Trigger,
		"widget":  result.Widget,
	})
	if msg.Result != nil {
		msg.Result(result)
	}
	return nil
}
