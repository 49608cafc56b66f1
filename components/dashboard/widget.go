package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultLoadingMessage = "Loading…"

// Widget pairs a definition and provider with the region it exclusively owns.
type Widget struct {
	def       WidgetDefinition
	provider  Provider
	region    *Region
	validator InputValidator
	telemetry Telemetry
	logger    *zerolog.Logger
}

// Definition returns the widget definition.
func (w *Widget) Definition() WidgetDefinition { return w.def }

// Code returns the widget code.
func (w *Widget) Code() string { return w.def.Code }

// Region returns the content region bound to the widget.
func (w *Widget) Region() *Region { return w.region }

// Refresh runs the fetch-transform-render protocol once. It never returns a
// result; the outcome is written to the region.
func (w *Widget) Refresh(ctx context.Context, input string) {
	started := time.Now()
	meta := WidgetContext{
		Definition:   w.def,
		Input:        w.resolveInput(input),
		InvocationID: uuid.NewString(),
	}

	if pre, ok := w.provider.(Preflighter); ok {
		if err := pre.Preflight(ctx, &meta); err != nil {
			if KindOf(err) == KindConfiguration {
				w.write(ctx, meta, PromptState(UserMessage(err)))
				w.telemetry.Record(ctx, "dashboard.widget.prompt", map[string]any{"widget": w.def.Code})
				return
			}
			w.fail(ctx, meta, started, err)
			return
		}
	}

	w.write(ctx, meta, LoadingState(w.loadingMessage(meta)))

	if w.validator != nil {
		if err := w.validator.Validate(w.def, meta.Input); err != nil {
			w.fail(ctx, meta, started, err)
			return
		}
	}

	fragment, err := w.provider.Fetch(ctx, meta)
	if err != nil {
		w.fail(ctx, meta, started, err)
		return
	}
	w.write(ctx, meta, LoadedState(fragment))
	w.telemetry.Record(ctx, "dashboard.widget.loaded", map[string]any{
		"widget":   w.def.Code,
		"duration": time.Since(started),
	})
}

func (w *Widget) resolveInput(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return w.def.DefaultInput
	}
	return input
}

func (w *Widget) loadingMessage(meta WidgetContext) string {
	if lm, ok := w.provider.(LoadingMessager); ok {
		if msg := lm.LoadingMessage(meta); msg != "" {
			return msg
		}
	}
	return defaultLoadingMessage
}

func (w *Widget) write(ctx context.Context, meta WidgetContext, state WidgetState) {
	state.InvocationID = meta.InvocationID
	w.region.Set(ctx, state)
}

func (w *Widget) fail(ctx context.Context, meta WidgetContext, started time.Time, err error) {
	err = withWidget(err, w.def.Code)
	kind := KindOf(err)
	if kind == "" && errors.Is(err, context.Canceled) {
		kind = KindTransport
	}
	w.logger.Error().
		Err(err).
		Str("widget", w.def.Code).
		Str("invocation_id", meta.InvocationID).
		Str("kind", string(kind)).
		Msg("widget refresh failed")
	w.write(ctx, meta, FailedState(err))
	w.telemetry.Record(ctx, "dashboard.widget.failed", map[string]any{
		"widget":   w.def.Code,
		"kind":     string(kind),
		"error":    err.Error(),
		"duration": time.Since(started),
	})
}
