package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

func TestMetricsCountsOutcomes(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	m.Record(ctx, "dashboard.widget.loaded", map[string]any{"widget": "dog", "duration": 40 * time.Millisecond})
	m.Record(ctx, "dashboard.widget.loaded", map[string]any{"widget": "dog"})
	m.Record(ctx, "dashboard.widget.failed", map[string]any{"widget": "weather", "kind": "input"})
	m.Record(ctx, "dashboard.widget.failed", map[string]any{"widget": "weather"})
	m.Record(ctx, "dashboard.widget.prompt", map[string]any{"widget": "movies"})
	m.Record(ctx, "dashboard.trigger.fired", map[string]any{"trigger": "refresh-dog"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("dog", "loaded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("weather", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("movies", "prompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("weather", "input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("weather", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("dashboard.trigger.fired")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.durations))
}

func TestMetricsHandlerExposesSubscribers(t *testing.T) {
	m := NewMetrics()
	hook := dashboard.NewBroadcastHook()
	defer hook.Close()
	m.TrackSubscribers(hook)
	_, cancel := hook.Subscribe()
	defer cancel()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "apidash_stream_subscribers 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMetricsSeeRealRefreshes(t *testing.T) {
	m := NewMetrics()
	reg := dashboard.NewRegistry()
	require.NoError(t, reg.RegisterProvider(dashboard.WidgetJoke, dashboard.ProviderFunc(func(context.Context, dashboard.WidgetContext) (dashboard.Fragment, error) {
		return dashboard.Fragment{Lines: []string{"ha"}}, nil
	})))
	svc := dashboard.NewService(dashboard.Options{Providers: reg, Telemetry: m})

	require.NoError(t, svc.Refresh(context.Background(), dashboard.WidgetJoke, ""))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("joke", "loaded")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.durations))
}

func TestLogTelemetryLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogTelemetry(zerolog.New(&buf).Level(zerolog.DebugLevel))

	sink.Record(context.Background(), "dashboard.widget.loaded", map[string]any{"widget": "cat"})
	sink.Record(context.Background(), "dashboard.widget.failed", map[string]any{"widget": "cat", "kind": "transport"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var loaded, failed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &loaded))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.Equal(t, "debug", loaded["level"])
	assert.Equal(t, "dashboard.widget.loaded", loaded["event"])
	assert.Equal(t, "telemetry", loaded["component"])
	assert.Equal(t, "warn", failed["level"])
	assert.Equal(t, "transport", failed["kind"])
}

func TestLogHookTracesRegionWrites(t *testing.T) {
	var buf bytes.Buffer
	broadcast := dashboard.NewBroadcastHook()
	defer broadcast.Close()
	events, cancel := broadcast.Subscribe()
	defer cancel()

	hooks := dashboard.RefreshHooks{NewLogHook(zerolog.New(&buf).Level(zerolog.TraceLevel)), nil, broadcast}
	region := dashboard.NewRegion(dashboard.WidgetCat, hooks)
	region.Set(context.Background(), dashboard.LoadingState("Fetching a cat…"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "trace", entry["level"])
	assert.Equal(t, "regions", entry["component"])
	assert.Equal(t, "cat-content", entry["region"])
	assert.Equal(t, "loading", entry["state"])
	assert.Equal(t, 1.0, entry["seq"])

	select {
	case event := <-events:
		assert.Equal(t, dashboard.StateLoading, event.State.Kind)
	default:
		t.Fatal("broadcast did not receive the write")
	}

	buf.Reset()
	quiet := NewLogHook(zerolog.New(&buf).Level(zerolog.DebugLevel))
	require.NoError(t, quiet.WidgetUpdated(context.Background(), dashboard.WidgetEvent{Widget: dashboard.WidgetCat}))
	assert.Empty(t, buf.String())
}

type countingSink struct{ n int }

func (c *countingSink) Record(context.Context, string, map[string]any) { c.n++ }

func TestMultiSkipsNil(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	Multi{a, nil, b}.Record(context.Background(), "x", nil)
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}
