// Package dashboardtest serves canned upstream API responses for tests that
// exercise the dashboard over real HTTP.
package dashboardtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

// ValidMovieKey is the only TMDB key the fake upstream accepts.
const ValidMovieKey = "good-key"

// Upstream is a fake of every public API the default widgets call.
type Upstream struct {
	Server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

// NewUpstream starts the fake and closes it when the test ends.
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()
	u := &Upstream{hits: map[string]int{}}
	mux := http.NewServeMux()
	u.handle(mux, "/dog", `{"status":"success","message":"https://images.dog.ceo/breeds/hound/1.jpg"}`)
	u.handle(mux, "/cat", `[{"url":"https://cdn2.thecatapi.com/images/abc.jpg"}]`)
	u.handle(mux, "/geocoding", `{"results":[{"name":"Denver","country":"US","latitude":39.74,"longitude":-104.98}]}`)
	u.handle(mux, "/forecast", `{"current":{"temperature_2m":21.4,"wind_speed_10m":3.2,"relative_humidity_2m":40}}`)
	u.handle(mux, "/currency", `{"date":"2024-05-01","rates":{"EUR":0.92134}}`)
	u.handle(mux, "/joke", `{"joke":"I would tell you a UDP joke, but you might not get it."}`)
	u.handle(mux, "/entries", `{"entries":[{"API":"Cat Facts","Description":"Daily cat facts","Auth":"","HTTPS":true,"Cors":"no","Link":"https://alexwohlbruck.github.io/cat-facts/"}]}`)
	mux.HandleFunc("/movies", func(w http.ResponseWriter, r *http.Request) {
		u.hit("/movies")
		if r.URL.Query().Get("api_key") != ValidMovieKey {
			http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		writeJSON(w, `{"results":[{"title":"Dune","poster_path":"/dune.jpg","vote_average":7.8,"release_date":"2024-03-01"}]}`)
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		u.hit("/users")
		login := strings.TrimPrefix(r.URL.Path, "/users/")
		if login != "octocat" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, `{"login":"octocat","name":"The Octocat","avatar_url":"https://avatars.githubusercontent.com/u/583231","public_repos":8,"followers":9000,"html_url":"https://github.com/octocat"}`)
	})
	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Server.Close)
	return u
}

// Endpoints points every widget at the fake.
func (u *Upstream) Endpoints() dashboard.Endpoints {
	base := u.Server.URL
	return dashboard.Endpoints{
		Dog:        base + "/dog",
		Cat:        base + "/cat",
		Geocoding:  base + "/geocoding",
		Forecast:   base + "/forecast",
		Currency:   base + "/currency",
		Movies:     base + "/movies",
		Posters:    "https://image.tmdb.org/t/p/w200",
		GitHub:     base + "/users",
		Joke:       base + "/joke",
		PublicAPIs: base + "/entries",
	}
}

// Hits returns how many requests reached path.
func (u *Upstream) Hits(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *Upstream) hit(path string) {
	u.mu.Lock()
	u.hits[path]++
	u.mu.Unlock()
}

func (u *Upstream) handle(mux *http.ServeMux, path, body string) {
	mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
		u.hit(path)
		writeJSON(w, body)
	})
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprint(w, body)
}
