package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TriggerKind distinguishes primary actions from their key aliases.
type TriggerKind string

const (
	TriggerClick TriggerKind = "click"
	TriggerEnter TriggerKind = "enter"
	TriggerSave  TriggerKind = "save"
)

// Trigger binds a named user action to a widget.
type Trigger struct {
	ID     string      `json:"id"`
	Widget string      `json:"widget"`
	Kind   TriggerKind `json:"kind"`
	Label  string      `json:"label,omitempty"`
	// AliasOf names the primary trigger an Enter alias re-fires.
	AliasOf string `json:"alias_of,omitempty"`
}

// DefaultTriggers lists the built-in trigger actions.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{ID: "refresh-dog", Widget: WidgetDog, Kind: TriggerClick, Label: "New Dog"},
		{ID: "refresh-cat", Widget: WidgetCat, Kind: TriggerClick, Label: "New Cat"},
		{ID: "go-weather", Widget: WidgetWeather, Kind: TriggerClick, Label: "Go"},
		{ID: "weather-city:enter", Widget: WidgetWeather, Kind: TriggerEnter, AliasOf: "go-weather"},
		{ID: "refresh-currency", Widget: WidgetCurrency, Kind: TriggerClick, Label: "Refresh"},
		{ID: "save-tmdb", Widget: WidgetMovies, Kind: TriggerSave, Label: "Save Key"},
		{ID: "refresh-movies", Widget: WidgetMovies, Kind: TriggerClick, Label: "Refresh"},
		{ID: "go-gh", Widget: WidgetGitHubUser, Kind: TriggerClick, Label: "Go"},
		{ID: "gh-user:enter", Widget: WidgetGitHubUser, Kind: TriggerEnter, AliasOf: "go-gh"},
		{ID: "refresh-joke", Widget: WidgetJoke, Kind: TriggerClick, Label: "New Joke"},
		{ID: "refresh-apis", Widget: WidgetPublicAPI, Kind: TriggerClick, Label: "Random API"},
	}
}

// TriggerResult is what a fired trigger reports back to the caller.
type TriggerResult struct {
	Trigger string `json:"trigger"`
	Widget  string `json:"widget"`
	Message string `json:"message,omitempty"`
}

type triggerAction func(ctx context.Context, input string, wait bool) (TriggerResult, error)

// Bootstrap wires trigger actions to widgets and fires the initial loads.
type Bootstrap struct {
	service  *Service
	triggers []Trigger

	mu       sync.RWMutex
	bindings map[string]triggerAction
	bound    []Trigger
}

// NewBootstrap prepares a bootstrap for service using the given triggers
// (DefaultTriggers when none are supplied).
func NewBootstrap(service *Service, triggers ...Trigger) *Bootstrap {
	if len(triggers) == 0 {
		triggers = DefaultTriggers()
	}
	return &Bootstrap{
		service:  service,
		triggers: triggers,
		bindings: map[string]triggerAction{},
	}
}

// InitialLoads blocks until the loads fired by Start settle.
type InitialLoads struct {
	group   *errgroup.Group
	Widgets []string
}

// Wait blocks until every initial load has written a terminal state.
func (l *InitialLoads) Wait() {
	if l == nil || l.group == nil {
		return
	}
	_ = l.group.Wait()
}

// Start binds every trigger and fires each widget's initial refresh without
// waiting for it. Movies only loads when a credential is already stored.
func (b *Bootstrap) Start(ctx context.Context) (*InitialLoads, error) {
	if b.service == nil {
		return nil, fmt.Errorf("dashboard: bootstrap requires a service")
	}
	if err := b.bind(); err != nil {
		return nil, err
	}
	loads := &InitialLoads{group: &errgroup.Group{}}
	detached := context.WithoutCancel(ctx)
	for _, w := range b.service.Widgets() {
		if w.Code() == WidgetMovies && !b.service.CredentialConfigured(ctx) {
			continue
		}
		widget := w
		loads.Widgets = append(loads.Widgets, widget.Code())
		loads.group.Go(func() error {
			widget.Refresh(detached, "")
			return nil
		})
	}
	return loads, nil
}

func (b *Bootstrap) bind() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings = map[string]triggerAction{}
	b.bound = nil
	primaries := map[string]triggerAction{}
	var aliases []Trigger
	for _, trig := range b.triggers {
		if trig.ID == "" {
			return fmt.Errorf("dashboard: trigger id is required")
		}
		if trig.Kind == TriggerEnter {
			aliases = append(aliases, trig)
			continue
		}
		widget, ok := b.service.Widget(trig.Widget)
		if !ok {
			// Triggers of unmounted widgets are skipped.
			continue
		}
		var action triggerAction
		switch trig.Kind {
		case TriggerSave:
			action = b.saveAction(trig)
		default:
			action = b.refreshAction(trig, widget)
		}
		primaries[trig.ID] = action
		b.bindings[trig.ID] = action
		b.bound = append(b.bound, trig)
	}
	for _, alias := range aliases {
		action, ok := primaries[alias.AliasOf]
		if !ok {
			continue
		}
		b.bindings[alias.ID] = aliasAction(alias.ID, action)
		b.bound = append(b.bound, alias)
	}
	return nil
}

// aliasAction runs the primary action but reports the alias as the trigger.
func aliasAction(id string, primary triggerAction) triggerAction {
	return func(ctx context.Context, input string, wait bool) (TriggerResult, error) {
		result, err := primary(ctx, input, wait)
		result.Trigger = id
		return result, err
	}
}

func (b *Bootstrap) refreshAction(trig Trigger, widget *Widget) triggerAction {
	return func(ctx context.Context, input string, wait bool) (TriggerResult, error) {
		result := TriggerResult{Trigger: trig.ID, Widget: widget.Code()}
		if wait {
			widget.Refresh(ctx, input)
		} else {
			go widget.Refresh(context.WithoutCancel(ctx), input)
		}
		b.service.recordTelemetry(ctx, "dashboard.trigger.fired", map[string]any{
			"trigger": trig.ID,
			"widget":  widget.Code(),
			"wait":    wait,
		})
		return result, nil
	}
}

func (b *Bootstrap) saveAction(trig Trigger) triggerAction {
	return func(ctx context.Context, input string, _ bool) (TriggerResult, error) {
		msg, err := b.service.SaveCredential(ctx, input)
		if err != nil {
			return TriggerResult{}, err
		}
		return TriggerResult{Trigger: trig.ID, Widget: trig.Widget, Message: msg}, nil
	}
}

// Fire dispatches a trigger without waiting for the refresh to settle.
func (b *Bootstrap) Fire(ctx context.Context, id, input string) (TriggerResult, error) {
	return b.fire(ctx, id, input, false)
}

// FireSync dispatches a trigger and waits for the refresh to settle.
func (b *Bootstrap) FireSync(ctx context.Context, id, input string) (TriggerResult, error) {
	return b.fire(ctx, id, input, true)
}

func (b *Bootstrap) fire(ctx context.Context, id, input string, wait bool) (TriggerResult, error) {
	b.mu.RLock()
	action, ok := b.bindings[id]
	b.mu.RUnlock()
	if !ok {
		return TriggerResult{}, fmt.Errorf("%w: %s", errUnknownTrigger, id)
	}
	return action(ctx, input, wait)
}

// Triggers returns the bound triggers sorted by id.
func (b *Bootstrap) Triggers() []Trigger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := append([]Trigger(nil), b.bound...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WidgetTriggers returns the bound primary triggers of a widget in
// declaration order. Enter aliases are omitted.
func (b *Bootstrap) WidgetTriggers(code string) []Trigger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Trigger
	for _, trig := range b.bound {
		if trig.Widget == code && trig.Kind != TriggerEnter {
			out = append(out, trig)
		}
	}
	return out
}

// EnterTrigger returns the Enter alias bound for a widget's input.
func (b *Bootstrap) EnterTrigger(code string) (Trigger, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, trig := range b.bound {
		if trig.Widget == code && trig.Kind == TriggerEnter {
			return trig, true
		}
	}
	return Trigger{}, false
}

// IsUnknownTrigger reports whether err was caused by an unbound trigger id.
func IsUnknownTrigger(err error) bool {
	return errors.Is(err, errUnknownTrigger)
}
