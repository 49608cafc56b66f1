package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshWritesLoadingThenLoaded(t *testing.T) {
	hook := &recordingHook{}
	telemetry := &recordingTelemetry{}
	svc := newTestService(t, defaultStubGetter(), func(o *Options) {
		o.RefreshHook = hook
		o.Telemetry = telemetry
	})

	state := refreshState(t, svc, WidgetDog, "")

	assert.Equal(t, []StateKind{StateLoading, StateLoaded}, hook.Kinds(WidgetDog))
	require.Equal(t, StateLoaded, state.Kind)
	require.NotNil(t, state.Fragment)
	require.NotNil(t, state.Fragment.Image)
	assert.Equal(t, "https://images.dog.ceo/breeds/hound/1.jpg", state.Fragment.Image.URL)
	assert.Equal(t, "Source: dog.ceo", state.Fragment.Attribution)
	assert.NotEmpty(t, state.InvocationID)
	assert.Equal(t, uint64(2), state.Seq)
	assert.Equal(t, 1, telemetry.Count("dashboard.widget.loaded"))
}

func TestRefreshLoadingMessageCarriesInput(t *testing.T) {
	hook := &recordingHook{}
	svc := newTestService(t, defaultStubGetter(), func(o *Options) { o.RefreshHook = hook })

	refreshState(t, svc, WidgetWeather, "Denver")

	require.NotEmpty(t, hook.events)
	first := hook.events[0]
	assert.Equal(t, StateLoading, first.State.Kind)
	assert.Equal(t, `Fetching weather for "Denver"…`, first.State.Message)
	assert.Equal(t, "weather-content", first.Region)
	assert.Equal(t, "loading", first.Reason)
}

func TestEveryWidgetSettlesInTerminalState(t *testing.T) {
	getters := map[string]*stubGetter{
		"healthy":     defaultStubGetter(),
		"unreachable": newStubGetter().withError("https://", errors.New("dial tcp: connection refused")),
		"server":      newStubGetter().withStatus("https://", http.StatusInternalServerError),
		"malformed":   newStubGetter().with("https://", `{}`),
	}
	for name, getter := range getters {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(t, getter, func(o *Options) {
				o.Credentials = NewInMemoryCredentialStore()
				require.NoError(t, o.Credentials.Save(context.Background(), "key"))
			})
			for _, w := range svc.Widgets() {
				state := refreshState(t, svc, w.Code(), "")
				assert.Truef(t, state.Kind.Terminal(), "%s ended in %s", w.Code(), state.Kind)
				if state.Kind == StateFailed {
					assert.NotEmptyf(t, state.Message, "%s failed without a message", w.Code())
				}
			}
		})
	}
}

func TestTransportFailureIsContainedToItsRegion(t *testing.T) {
	getter := defaultStubGetter().withError(DefaultEndpoints().Dog, errors.New("connection reset"))
	svc := newTestService(t, getter)

	dog := refreshState(t, svc, WidgetDog, "")
	cat := refreshState(t, svc, WidgetCat, "")

	assert.Equal(t, StateFailed, dog.Kind)
	assert.Equal(t, "Dog API is unreachable.", dog.Message)
	assert.Contains(t, dog.Diagnostic, "connection reset")
	assert.Contains(t, dog.Diagnostic, "dashboard: dog")
	assert.Equal(t, StateLoaded, cat.Kind)
}

func TestForeignProviderErrorFallsBackToItsText(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterProvider(WidgetJoke, ProviderFunc(func(context.Context, WidgetContext) (Fragment, error) {
		return Fragment{}, errors.New("boom")
	})))
	svc := NewService(Options{Providers: reg})

	state := refreshState(t, svc, WidgetJoke, "")

	assert.Equal(t, StateFailed, state.Kind)
	assert.Equal(t, "boom", state.Message)
}

func TestRefreshIsIdempotentForSameUpstream(t *testing.T) {
	svc := newTestService(t, defaultStubGetter())

	first := refreshState(t, svc, WidgetGitHubUser, "octocat")
	second := refreshState(t, svc, WidgetGitHubUser, "octocat")

	assert.Equal(t, first.Kind, second.Kind)
	assert.Equal(t, first.Fragment, second.Fragment)
	assert.Greater(t, second.Seq, first.Seq)
	assert.NotEqual(t, first.InvocationID, second.InvocationID)
}

func TestInvalidInputFailsWithoutFetching(t *testing.T) {
	getter := defaultStubGetter()
	svc := newTestService(t, getter)

	state := refreshState(t, svc, WidgetGitHubUser, strings.Repeat("x", 101))

	assert.Equal(t, StateFailed, state.Kind)
	assert.Contains(t, state.Message, "is not a valid GitHub User input.")
	assert.Empty(t, getter.CallsTo(DefaultEndpoints().GitHub))
}

func TestBlankInputUsesDefault(t *testing.T) {
	getter := defaultStubGetter()
	svc := newTestService(t, getter)

	refreshState(t, svc, WidgetGitHubUser, "   ")

	calls := getter.CallsTo(DefaultEndpoints().GitHub)
	require.Len(t, calls, 1)
	assert.Equal(t, DefaultEndpoints().GitHub+"/octocat", calls[0])
}

func TestCanceledContextStillSettles(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterProvider(WidgetCat, ProviderFunc(func(ctx context.Context, _ WidgetContext) (Fragment, error) {
		return Fragment{}, ctx.Err()
	})))
	svc := NewService(Options{Providers: reg})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.Refresh(ctx, WidgetCat, ""))
	state, err := svc.State(WidgetCat)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, state.Kind)
	assert.NotEmpty(t, state.Message)
}
