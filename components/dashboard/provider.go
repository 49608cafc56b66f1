package dashboard

import "context"

// Provider fetches and renders the data displayed by a widget.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (Fragment, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (Fragment, error)

// Fetch calls the wrapped function.
func (fn ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (Fragment, error) {
	return fn(ctx, meta)
}

// Preflighter is implemented by providers that must be configured before the
// widget shows a Loading state. A configuration error from Preflight renders a
// prompt and skips the fetch.
type Preflighter interface {
	Preflight(ctx context.Context, meta *WidgetContext) error
}

// LoadingMessager supplies the progress message shown while a refresh runs.
type LoadingMessager interface {
	LoadingMessage(meta WidgetContext) string
}

// WidgetContext contains the metadata needed by providers.
type WidgetContext struct {
	Definition   WidgetDefinition
	Input        string
	Credential   string
	InvocationID string
}
