package dashboard

import (
	"net/url"
	"strings"
)

type jokeResponse struct {
	Joke string `json:"joke"`
}

// NewJokeProvider fetches a single-line, safe-mode joke.
func NewJokeProvider(client JSONGetter, endpoint string) Provider {
	return &JSONSource[jokeResponse]{
		Name:   "JokeAPI",
		Client: client,
		Loading: func(WidgetContext) string {
			return "Fetching a joke…"
		},
		Endpoint: func(WidgetContext) (string, error) {
			u, err := withQuery(endpoint, url.Values{"type": {"single"}})
			if err != nil {
				return "", err
			}
			// safe-mode is a bare flag; url.Values would render it as "safe-mode=".
			return u + "&safe-mode", nil
		},
		Validate: func(_ WidgetContext, payload jokeResponse) error {
			if strings.TrimSpace(payload.Joke) == "" {
				return ShapeError("No joke found.")
			}
			return nil
		},
		Render: func(_ WidgetContext, payload jokeResponse) (Fragment, error) {
			return Fragment{
				Lines:       []string{payload.Joke},
				Attribution: attribution("jokeapi.dev"),
			}, nil
		},
	}
}
