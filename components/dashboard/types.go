package dashboard

import (
	"context"
	"time"
)

// StateKind enumerates the states a widget content region can hold.
type StateKind string

const (
	StateIdle    StateKind = "idle"
	StateLoading StateKind = "loading"
	StateLoaded  StateKind = "loaded"
	StateFailed  StateKind = "failed"
	StatePrompt  StateKind = "prompt"
)

// Terminal reports whether no further automatic transition follows the state.
func (k StateKind) Terminal() bool {
	return k == StateLoaded || k == StateFailed || k == StatePrompt
}

// WidgetState is the single value held by a content region. Every write
// replaces the previous state.
type WidgetState struct {
	Kind         StateKind `json:"kind"`
	Message      string    `json:"message,omitempty"`
	Fragment     *Fragment `json:"fragment,omitempty"`
	Diagnostic   string    `json:"diagnostic,omitempty"`
	InvocationID string    `json:"invocation_id,omitempty"`
	Seq          uint64    `json:"seq"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoadingState builds a Loading state carrying a progress message.
func LoadingState(message string) WidgetState {
	return WidgetState{Kind: StateLoading, Message: message}
}

// LoadedState wraps a rendered fragment.
func LoadedState(fragment Fragment) WidgetState {
	return WidgetState{Kind: StateLoaded, Fragment: &fragment}
}

// FailedState renders the user message of err and keeps the raw error as diagnostic.
func FailedState(err error) WidgetState {
	state := WidgetState{Kind: StateFailed, Message: UserMessage(err)}
	if err != nil {
		state.Diagnostic = err.Error()
	}
	return state
}

// PromptState asks the viewer to configure the widget.
func PromptState(message string) WidgetState {
	return WidgetState{Kind: StatePrompt, Message: message}
}

// Fragment is the rendered result of a successful refresh.
type Fragment struct {
	Title       string         `json:"title,omitempty"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Lines       []string       `json:"lines,omitempty"`
	Image       *Image         `json:"image,omitempty"`
	Link        *Link          `json:"link,omitempty"`
	Items       []FragmentItem `json:"items,omitempty"`
	Attribution string         `json:"attribution,omitempty"`
}

// Image references a remote picture shown inside a fragment.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Link is an outbound reference rendered below the fragment text.
type Link struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// FragmentItem is one entry of a list fragment (trending movies).
type FragmentItem struct {
	Title    string `json:"title"`
	Meta     string `json:"meta,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// WidgetDefinition describes a widget and how its input is interpreted.
type WidgetDefinition struct {
	Code         string         `json:"code" yaml:"code"`
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category     string         `json:"category,omitempty" yaml:"category,omitempty"`
	DefaultInput string         `json:"default_input,omitempty" yaml:"default_input,omitempty"`
	InputField   string         `json:"input_field,omitempty" yaml:"input_field,omitempty"`
	Schema       map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Disabled     bool           `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// WidgetEvent describes a region write that transports might care about.
type WidgetEvent struct {
	Widget string      `json:"widget"`
	Region string      `json:"region"`
	State  WidgetState `json:"state"`
	Reason string      `json:"reason"`
}

// RefreshHook notifies transports (SSE/WebSocket) about region writes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}

// RefreshHooks fans a single event out to several hooks.
type RefreshHooks []RefreshHook

// WidgetUpdated invokes every hook and returns the first error.
func (h RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var first error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
