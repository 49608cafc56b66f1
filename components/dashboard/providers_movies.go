package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const maxTrendingMovies = 8

type tmdbResponse struct {
	Results []tmdbMovie `json:"results"`
}

type tmdbMovie struct {
	Title       string   `json:"title"`
	PosterPath  string   `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
	ReleaseDate string   `json:"release_date"`
}

// MoviesProvider lists trending movies from TMDB. It needs an API key taken
// from the refresh input or, failing that, from the credential store.
type MoviesProvider struct {
	*JSONSource[tmdbResponse]
	credentials CredentialStore
}

// NewMoviesProvider builds the TMDB backed provider.
func NewMoviesProvider(client JSONGetter, endpoint, posterBase string, credentials CredentialStore) *MoviesProvider {
	source := &JSONSource[tmdbResponse]{
		Name:   "TMDB",
		Client: client,
		Loading: func(WidgetContext) string {
			return "Fetching trending movies…"
		},
		Endpoint: func(meta WidgetContext) (string, error) {
			return withQuery(endpoint, url.Values{"api_key": {meta.Credential}})
		},
		Validate: func(_ WidgetContext, payload tmdbResponse) error {
			if len(payload.Results) == 0 {
				return ShapeError("No results.")
			}
			return nil
		},
		Render: func(_ WidgetContext, payload tmdbResponse) (Fragment, error) {
			return renderMovies(payload.Results, posterBase), nil
		},
		StatusMessage: func(WidgetContext, int) string {
			return "TMDB request failed (check your key)."
		},
	}
	return &MoviesProvider{JSONSource: source, credentials: credentials}
}

// Preflight resolves the API key, returning a configuration error when none is available.
func (p *MoviesProvider) Preflight(ctx context.Context, meta *WidgetContext) error {
	key, err := resolveCredential(ctx, p.credentials, meta.Input)
	if err != nil {
		return &WidgetError{Kind: KindTransport, Message: "Could not read the saved TMDB key.", Err: fmt.Errorf("load credential: %w", err)}
	}
	if key == "" {
		return ConfigurationError(credentialPromptMessage)
	}
	meta.Credential = key
	// The key must not leak into region state or logs as widget input.
	meta.Input = ""
	return nil
}

func renderMovies(movies []tmdbMovie, posterBase string) Fragment {
	if len(movies) > maxTrendingMovies {
		movies = movies[:maxTrendingMovies]
	}
	items := make([]FragmentItem, 0, len(movies))
	for _, m := range movies {
		item := FragmentItem{Title: m.Title}
		if m.PosterPath != "" {
			item.ImageURL = strings.TrimRight(posterBase, "/") + m.PosterPath
		}
		rating := "N/A"
		if m.VoteAverage != nil {
			rating = fmt.Sprintf("%.1f", *m.VoteAverage)
		}
		released := m.ReleaseDate
		if released == "" {
			released = "—"
		}
		item.Meta = "⭐ " + rating + " · " + released
		items = append(items, item)
	}
	return Fragment{
		Items:       items,
		Attribution: attribution("themoviedb.org"),
	}
}
