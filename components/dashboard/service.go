package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var errMissingCredentialStore = errors.New("dashboard: credential store not configured")

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Providers   ProviderRegistry
	Credentials CredentialStore
	Validator   InputValidator
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Logger      *zerolog.Logger
	// HTTPClient is used by the default providers when Providers is nil.
	HTTPClient JSONGetter
	Endpoints  Endpoints
	// Widgets restricts and orders the mounted widgets; empty mounts every
	// enabled definition in registration order.
	Widgets []string
}

// Service owns the mounted widgets and their regions.
type Service struct {
	opts    Options
	widgets map[string]*Widget
	order   []string
}

// RegionSnapshot is the observable state of one mounted widget.
type RegionSnapshot struct {
	Widget     string      `json:"widget"`
	Name       string      `json:"name"`
	Region     string      `json:"region"`
	InputField string      `json:"input_field,omitempty"`
	State      WidgetState `json:"state"`
}

// NewService builds a Service and binds every widget to its region once.
func NewService(opts Options) *Service {
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Credentials == nil {
		opts.Credentials = NewInMemoryCredentialStore()
	}
	if opts.Providers == nil {
		client := opts.HTTPClient
		if client == nil {
			client = NewHTTPClient(HTTPConfig{})
		}
		opts.Providers = NewDefaultRegistry(ProviderDeps{
			Client:      client,
			Endpoints:   opts.Endpoints,
			Credentials: opts.Credentials,
		})
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}

	s := &Service{opts: opts, widgets: map[string]*Widget{}}
	for _, def := range s.mountedDefinitions() {
		provider, ok := opts.Providers.Provider(def.Code)
		if !ok || provider == nil {
			opts.Logger.Warn().Str("widget", def.Code).Msg("widget has no provider; skipping")
			continue
		}
		if _, dup := s.widgets[def.Code]; dup {
			continue
		}
		logger := opts.Logger.With().Str("component", "widget").Logger()
		s.widgets[def.Code] = &Widget{
			def:       def,
			provider:  provider,
			region:    NewRegion(def.Code, opts.RefreshHook),
			validator: opts.Validator,
			telemetry: opts.Telemetry,
			logger:    &logger,
		}
		s.order = append(s.order, def.Code)
	}
	return s
}

func (s *Service) mountedDefinitions() []WidgetDefinition {
	if len(s.opts.Widgets) == 0 {
		var defs []WidgetDefinition
		for _, def := range s.opts.Providers.Definitions() {
			if !def.Disabled {
				defs = append(defs, def)
			}
		}
		return defs
	}
	defs := make([]WidgetDefinition, 0, len(s.opts.Widgets))
	for _, code := range s.opts.Widgets {
		def, ok := s.opts.Providers.Definition(code)
		if !ok {
			s.opts.Logger.Warn().Str("widget", code).Msg("unknown widget requested; skipping")
			continue
		}
		if def.Disabled {
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

// Widget returns the mounted widget for code.
func (s *Service) Widget(code string) (*Widget, bool) {
	w, ok := s.widgets[code]
	return w, ok
}

// Widgets returns the mounted widgets in display order.
func (s *Service) Widgets() []*Widget {
	out := make([]*Widget, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, s.widgets[code])
	}
	return out
}

// Refresh runs one widget refresh and waits for it to settle.
func (s *Service) Refresh(ctx context.Context, code, input string) error {
	w, err := s.widget(code)
	if err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.refresh", map[string]any{"widget": code})
	w.Refresh(ctx, input)
	return nil
}

// RefreshAsync starts a widget refresh without waiting. The refresh outlives
// cancellation of ctx.
func (s *Service) RefreshAsync(ctx context.Context, code, input string) error {
	w, err := s.widget(code)
	if err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.refresh", map[string]any{"widget": code, "async": true})
	detached := context.WithoutCancel(ctx)
	go w.Refresh(detached, input)
	return nil
}

// State returns the current region state of a widget.
func (s *Service) State(code string) (WidgetState, error) {
	w, err := s.widget(code)
	if err != nil {
		return WidgetState{}, err
	}
	return w.region.State(), nil
}

// Snapshot returns the state of every mounted region in display order.
func (s *Service) Snapshot() []RegionSnapshot {
	out := make([]RegionSnapshot, 0, len(s.order))
	for _, w := range s.Widgets() {
		out = append(out, snapshotOf(w))
	}
	return out
}

// RegionSnapshot returns the observable state of one widget.
func (s *Service) RegionSnapshot(code string) (RegionSnapshot, error) {
	w, err := s.widget(code)
	if err != nil {
		return RegionSnapshot{}, err
	}
	return snapshotOf(w), nil
}

func snapshotOf(w *Widget) RegionSnapshot {
	return RegionSnapshot{
		Widget:     w.def.Code,
		Name:       w.def.Name,
		Region:     w.region.ID(),
		InputField: w.def.InputField,
		State:      w.region.State(),
	}
}

// SaveCredential stores the movie API key and returns the confirmation message.
func (s *Service) SaveCredential(ctx context.Context, value string) (string, error) {
	if s.opts.Credentials == nil {
		return "", errMissingCredentialStore
	}
	if err := s.opts.Credentials.Save(ctx, value); err != nil {
		if !IsEmptyCredential(err) {
			s.opts.Logger.Error().Err(err).Msg("credential save failed")
		}
		return "", err
	}
	s.recordTelemetry(ctx, "dashboard.credential.saved", map[string]any{"key": CredentialKey})
	return credentialSavedMessage, nil
}

// Credential returns the stored credential.
func (s *Service) Credential(ctx context.Context) (string, bool, error) {
	if s.opts.Credentials == nil {
		return "", false, errMissingCredentialStore
	}
	return s.opts.Credentials.Load(ctx)
}

// CredentialConfigured reports whether a non-empty credential is stored.
func (s *Service) CredentialConfigured(ctx context.Context) bool {
	value, ok, err := s.Credential(ctx)
	if err != nil {
		s.opts.Logger.Warn().Err(err).Msg("credential lookup failed")
		return false
	}
	return ok && value != ""
}

func (s *Service) widget(code string) (*Widget, error) {
	w, ok := s.widgets[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownWidget, code)
	}
	return w, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// IsUnknownWidget reports whether err was caused by an unknown widget code.
func IsUnknownWidget(err error) bool {
	return errors.Is(err, errUnknownWidget)
}
