package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
	"github.com/goliatone/go-apidash/components/dashboard/commands"
	"github.com/goliatone/go-apidash/components/dashboard/queries"
)

// Executor abstracts the actions transports invoke.
type Executor interface {
	FireTrigger(ctx context.Context, input commands.FireTriggerInput) error
	SaveCredential(ctx context.Context, input commands.SaveCredentialInput) error
	Region(ctx context.Context, input queries.RegionInput) (dashboard.RegionSnapshot, error)
	Snapshot(ctx context.Context, input queries.SnapshotInput) ([]dashboard.RegionSnapshot, error)
	CredentialConfigured(ctx context.Context) bool
}

var errMissingCommander = errors.New("httpapi: commander not configured")

// CommandExecutor adapts go-command commanders and queriers to Executor.
type CommandExecutor struct {
	TriggerCommander    gocommand.Commander[commands.FireTriggerInput]
	CredentialCommander gocommand.Commander[commands.SaveCredentialInput]
	RegionQuerier       gocommand.Querier[queries.RegionInput, dashboard.RegionSnapshot]
	SnapshotQuerier     gocommand.Querier[queries.SnapshotInput, []dashboard.RegionSnapshot]
	Credentials         CredentialStatus
}

var _ Executor = (*CommandExecutor)(nil)

// NewCommandExecutor wires the default commands and queries around a service
// and its bootstrap.
func NewCommandExecutor(service *dashboard.Service, boot *dashboard.Bootstrap, telemetry dashboard.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		TriggerCommander:    commands.NewFireTriggerCommand(boot, telemetry),
		CredentialCommander: commands.NewSaveCredentialCommand(service, telemetry),
		RegionQuerier:       queries.NewRegionQuery(service),
		SnapshotQuerier:     queries.NewSnapshotQuery(service),
		Credentials:         service,
	}
}

func (e *CommandExecutor) FireTrigger(ctx context.Context, input commands.FireTriggerInput) error {
	if e.TriggerCommander == nil {
		return errMissingCommander
	}
	return e.TriggerCommander.Execute(ctx, input)
}

func (e *CommandExecutor) SaveCredential(ctx context.Context, input commands.SaveCredentialInput) error {
	if e.CredentialCommander == nil {
		return errMissingCommander
	}
	return e.CredentialCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Region(ctx context.Context, input queries.RegionInput) (dashboard.RegionSnapshot, error) {
	if e.RegionQuerier == nil {
		return dashboard.RegionSnapshot{}, errMissingCommander
	}
	return e.RegionQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Snapshot(ctx context.Context, input queries.SnapshotInput) ([]dashboard.RegionSnapshot, error) {
	if e.SnapshotQuerier == nil {
		return nil, errMissingCommander
	}
	return e.SnapshotQuerier.Query(ctx, input)
}

func (e *CommandExecutor) CredentialConfigured(ctx context.Context) bool {
	if e.Credentials == nil {
		return false
	}
	return e.Credentials.CredentialConfigured(ctx)
}

// NewHandlers builds net/http handlers around an executor's collaborators.
func (e *CommandExecutor) NewHandlers(controller *dashboard.Controller, broadcast *dashboard.BroadcastHook) *Handlers {
	return &Handlers{
		Controller:  controller,
		Broadcast:   broadcast,
		Trigger:     e.TriggerCommander,
		Credential:  e.CredentialCommander,
		Region:      e.RegionQuerier,
		Snapshot:    e.SnapshotQuerier,
		Credentials: e.Credentials,
	}
}
