package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
)

const (
	dogFixture      = `{"status":"success","message":"https://images.dog.ceo/breeds/hound/1.jpg"}`
	catFixture      = `[{"url":"https://cdn2.thecatapi.com/images/abc.jpg"}]`
	geocodeFixture  = `{"results":[{"name":"Denver","country":"US","latitude":39.74,"longitude":-104.98}]}`
	forecastFixture = `{"current":{"temperature_2m":21.4,"wind_speed_10m":3.2,"relative_humidity_2m":40}}`
	currencyFixture = `{"date":"2024-05-01","rates":{"EUR":0.92134}}`
	moviesFixture   = `{"results":[{"title":"Dune","poster_path":"/dune.jpg","vote_average":7.8,"release_date":"2024-03-01"},{"title":"Untitled","poster_path":"","vote_average":null,"release_date":""}]}`
	githubFixture   = `{"login":"octocat","name":"The Octocat","avatar_url":"https://avatars.githubusercontent.com/u/583231","bio":"","public_repos":8,"followers":9000,"html_url":"https://github.com/octocat"}`
	jokeFixture     = `{"joke":"I would tell you a UDP joke, but you might not get it."}`
	publicFixture   = `{"entries":[{"API":"Cat Facts","Description":"Daily cat facts","Auth":"","HTTPS":true,"Cors":"no","Link":"https://alexwohlbruck.github.io/cat-facts/","Category":"Animals"},{"API":"Dogs","Description":"Dog pictures","Auth":"apiKey","HTTPS":false,"Cors":"yes","Link":"https://dog.ceo/dog-api/","Category":"Animals"}]}`
)

type stubResponse struct {
	body   string
	status int
	err    error
}

// stubGetter serves canned JSON by longest matching URL prefix and records
// every requested URL.
type stubGetter struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	calls     []string
}

func newStubGetter() *stubGetter {
	return &stubGetter{responses: map[string]stubResponse{}}
}

// defaultStubGetter answers every production endpoint with a healthy fixture.
func defaultStubGetter() *stubGetter {
	e := DefaultEndpoints()
	return newStubGetter().
		with(e.Dog, dogFixture).
		with(e.Cat, catFixture).
		with(e.Geocoding, geocodeFixture).
		with(e.Forecast, forecastFixture).
		with(e.Currency, currencyFixture).
		with(e.Movies, moviesFixture).
		with(e.GitHub, githubFixture).
		with(e.Joke, jokeFixture).
		with(e.PublicAPIs, publicFixture)
}

func (s *stubGetter) with(prefix, body string) *stubGetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[prefix] = stubResponse{body: body}
	return s
}

func (s *stubGetter) withStatus(prefix string, status int) *stubGetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[prefix] = stubResponse{status: status}
	return s
}

func (s *stubGetter) withError(prefix string, err error) *stubGetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[prefix] = stubResponse{err: err}
	return s
}

func (s *stubGetter) GetJSON(_ context.Context, url string, target any) error {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	var (
		match string
		resp  stubResponse
		found bool
	)
	for prefix, candidate := range s.responses {
		if strings.HasPrefix(url, prefix) && len(prefix) > len(match) {
			match, resp, found = prefix, candidate, true
		}
	}
	s.mu.Unlock()

	switch {
	case !found:
		return TransportError("", http.StatusNotFound, fmt.Errorf("no stub for %s", url))
	case resp.err != nil:
		return resp.err
	case resp.status != 0:
		return TransportError("", resp.status, fmt.Errorf("remote error %d", resp.status))
	}
	if err := json.Unmarshal([]byte(resp.body), target); err != nil {
		return &WidgetError{Kind: KindShape, Err: err}
	}
	return nil
}

func (s *stubGetter) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubGetter) CallsTo(prefix string) []string {
	var out []string
	for _, call := range s.Calls() {
		if strings.HasPrefix(call, prefix) {
			out = append(out, call)
		}
	}
	return out
}

type recordingHook struct {
	mu     sync.Mutex
	events []WidgetEvent
}

func (h *recordingHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) Kinds(widget string) []StateKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []StateKind
	for _, event := range h.events {
		if event.Widget == widget {
			out = append(out, event.State.Kind)
		}
	}
	return out
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTelemetry) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

func newTestService(t *testing.T, getter JSONGetter, configure ...func(*Options)) *Service {
	t.Helper()
	opts := Options{HTTPClient: getter}
	for _, fn := range configure {
		fn(&opts)
	}
	return NewService(opts)
}

func refreshState(t *testing.T, svc *Service, code, input string) WidgetState {
	t.Helper()
	if err := svc.Refresh(context.Background(), code, input); err != nil {
		t.Fatalf("refresh %s: %v", code, err)
	}
	state, err := svc.State(code)
	if err != nil {
		t.Fatalf("state %s: %v", code, err)
	}
	return state
}
