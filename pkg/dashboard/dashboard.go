// Package dashboard is the import-friendly entry point for embedding the API
// dashboard in another program.
package dashboard

import (
	"context"

	core "github.com/goliatone/go-apidash/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Bootstrap exposes the trigger wiring.
type Bootstrap = core.Bootstrap

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Start builds a service, binds the default triggers and fires the initial
// loads. Callers that need the page settled should Wait on the returned loads.
func Start(ctx context.Context, opts Options) (*Service, *Bootstrap, *core.InitialLoads, error) {
	service := core.NewService(opts)
	boot := core.NewBootstrap(service)
	loads, err := boot.Start(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return service, boot, loads, nil
}
