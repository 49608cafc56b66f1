package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// SaveCredentialInput carries the API key to persist.
type SaveCredentialInput struct {
	Value string `json:"value"`
	// Saved receives the confirmation message when set.
	Saved func(message string) `json:"-"`
}

type credentialSaver interface {
	SaveCredential(ctx context.Context, value string) (string, error)
}

// SaveCredentialCommand wraps Service.SaveCredential.
type SaveCredentialCommand struct {
	service   credentialSaver
	telemetry Telemetry
}

// NewSaveCredentialCommand creates the command.
func NewSaveCredentialCommand(service credentialSaver, telemetry Telemetry) *SaveCredentialCommand {
	return &SaveCredentialCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveCredentialInput] = (*SaveCredentialCommand)(nil)

// Execute stores the credential. It never refreshes a widget.
func (c *SaveCredentialCommand) Execute(ctx context.Context, msg SaveCredentialInput) error {
	if c.service == nil {
		return errors.New("credential command requires service")
	}
	message, err := c.service.SaveCredential(ctx, msg.Value)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.credential", nil)
	if msg.Saved != nil {
		msg.Saved(message)
	}
	return nil
}
