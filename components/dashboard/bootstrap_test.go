package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapStartLoadsEveryWidgetButMovies(t *testing.T) {
	getter := defaultStubGetter()
	svc := newTestService(t, getter)
	boot := NewBootstrap(svc)

	loads, err := boot.Start(context.Background())
	require.NoError(t, err)
	loads.Wait()

	assert.NotContains(t, loads.Widgets, WidgetMovies)
	assert.Len(t, loads.Widgets, 7)
	for _, snap := range svc.Snapshot() {
		if snap.Widget == WidgetMovies {
			assert.Equal(t, StateIdle, snap.State.Kind)
			continue
		}
		assert.Equalf(t, StateLoaded, snap.State.Kind, "%s: %s", snap.Widget, snap.State.Message)
	}
	assert.Empty(t, getter.CallsTo(DefaultEndpoints().Movies))
	assert.Equal(t, []string{DefaultEndpoints().GitHub + "/octocat"}, getter.CallsTo(DefaultEndpoints().GitHub))
}

func TestBootstrapStartLoadsMoviesWithStoredKey(t *testing.T) {
	getter := defaultStubGetter()
	store := NewInMemoryCredentialStore()
	require.NoError(t, store.Save(context.Background(), "k"))
	svc := newTestService(t, getter, func(o *Options) { o.Credentials = store })

	loads, err := NewBootstrap(svc).Start(context.Background())
	require.NoError(t, err)
	loads.Wait()

	assert.Contains(t, loads.Widgets, WidgetMovies)
	state, err := svc.State(WidgetMovies)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, state.Kind)
}

func TestBootstrapEnterAliasFiresPrimary(t *testing.T) {
	getter := defaultStubGetter()
	svc := newTestService(t, getter)
	boot := NewBootstrap(svc)
	_, err := boot.Start(context.Background())
	require.NoError(t, err)

	for _, id := range []string{"go-weather", "weather-city:enter"} {
		result, err := boot.FireSync(context.Background(), id, "Denver")
		require.NoError(t, err)
		assert.Equal(t, WidgetWeather, result.Widget)
		assert.Equal(t, id, result.Trigger)
	}

	result, err := boot.FireSync(context.Background(), "gh-user:enter", "octocat")
	require.NoError(t, err)
	assert.Equal(t, "gh-user:enter", result.Trigger)
	assert.Equal(t, WidgetGitHubUser, result.Widget)

	state, err := svc.State(WidgetWeather)
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, state.Kind)
}

func TestBootstrapSaveTriggerStoresKey(t *testing.T) {
	getter := defaultStubGetter()
	svc := newTestService(t, getter)
	boot := NewBootstrap(svc)
	_, err := boot.Start(context.Background())
	require.NoError(t, err)

	_, err = boot.FireSync(context.Background(), "save-tmdb", " ")
	require.Error(t, err)
	assert.True(t, IsEmptyCredential(err))

	result, err := boot.FireSync(context.Background(), "save-tmdb", "secret")
	require.NoError(t, err)
	assert.Equal(t, "TMDB key saved! Click Refresh to load trending.", result.Message)
	assert.Empty(t, getter.CallsTo(DefaultEndpoints().Movies), "saving never refreshes")

	_, err = boot.FireSync(context.Background(), "refresh-movies", "")
	require.NoError(t, err)
	calls := getter.CallsTo(DefaultEndpoints().Movies)
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "api_key=secret")
}

func TestBootstrapUnknownTrigger(t *testing.T) {
	boot := NewBootstrap(newTestService(t, defaultStubGetter()))
	_, err := boot.Start(context.Background())
	require.NoError(t, err)

	_, err = boot.Fire(context.Background(), "refresh-everything", "")
	require.Error(t, err)
	assert.True(t, IsUnknownTrigger(err))
}

func TestBootstrapSkipsTriggersOfUnmountedWidgets(t *testing.T) {
	svc := newTestService(t, defaultStubGetter(), func(o *Options) { o.Widgets = []string{WidgetDog} })
	boot := NewBootstrap(svc)
	_, err := boot.Start(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, trig := range boot.Triggers() {
		ids = append(ids, trig.ID)
	}
	assert.Equal(t, []string{"refresh-dog"}, ids)
	_, ok := boot.EnterTrigger(WidgetWeather)
	assert.False(t, ok)
}

func TestBootstrapWidgetTriggers(t *testing.T) {
	boot := NewBootstrap(newTestService(t, defaultStubGetter()))
	_, err := boot.Start(context.Background())
	require.NoError(t, err)

	movies := boot.WidgetTriggers(WidgetMovies)
	require.Len(t, movies, 2)
	assert.Equal(t, "save-tmdb", movies[0].ID)
	assert.Equal(t, "refresh-movies", movies[1].ID)

	enter, ok := boot.EnterTrigger(WidgetGitHubUser)
	require.True(t, ok)
	assert.Equal(t, "gh-user:enter", enter.ID)
	assert.Equal(t, "go-gh", enter.AliasOf)
}

func TestBootstrapRequiresTriggerIDs(t *testing.T) {
	boot := NewBootstrap(newTestService(t, defaultStubGetter()), Trigger{Widget: WidgetDog})
	_, err := boot.Start(context.Background())
	require.Error(t, err)

	_, err = NewBootstrap(nil).Start(context.Background())
	require.Error(t, err)
}

func TestBootstrapFireAsyncSettles(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()
	svc := newTestService(t, defaultStubGetter(), func(o *Options) {
		o.RefreshHook = hook
		o.Widgets = []string{WidgetCat}
	})
	boot := NewBootstrap(svc)
	loads, err := boot.Start(context.Background())
	require.NoError(t, err)
	loads.Wait()
	for len(events) > 0 {
		<-events
	}

	_, err = boot.Fire(context.Background(), "refresh-cat", "")
	require.NoError(t, err)

	for {
		event := <-events
		if event.State.Kind.Terminal() {
			assert.Equal(t, StateLoaded, event.State.Kind)
			return
		}
	}
}
