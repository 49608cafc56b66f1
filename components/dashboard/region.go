package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/ettle/strcase"
)

// Region is the content region exclusively owned by one widget. Writes are
// serialized and the latest write wins.
type Region struct {
	id     string
	widget string
	hook   RefreshHook

	// notifyMu keeps hook notifications in write order.
	notifyMu sync.Mutex
	mu       sync.RWMutex
	state    WidgetState
	seq      uint64
}

// NewRegion builds an idle region for the widget code.
func NewRegion(widget string, hook RefreshHook) *Region {
	if hook == nil {
		hook = noopRefreshHook{}
	}
	return &Region{
		id:     RegionID(widget),
		widget: widget,
		hook:   hook,
		state:  WidgetState{Kind: StateIdle},
	}
}

// RegionID derives the element identifier of a widget region ("github_user" -> "github-user-content").
func RegionID(widget string) string {
	return strcase.ToKebab(widget) + "-content"
}

// ID returns the region identifier.
func (r *Region) ID() string { return r.id }

// Widget returns the code of the owning widget.
func (r *Region) Widget() string { return r.widget }

// State returns the current state.
func (r *Region) State() WidgetState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Set overwrites the region state and notifies the refresh hook.
func (r *Region) Set(ctx context.Context, state WidgetState) WidgetState {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	r.seq++
	state.Seq = r.seq
	state.UpdatedAt = time.Now().UTC()
	r.state = state
	r.mu.Unlock()

	_ = r.hook.WidgetUpdated(ctx, WidgetEvent{
		Widget: r.widget,
		Region: r.id,
		State:  state,
		Reason: string(state.Kind),
	})
	return state
}
