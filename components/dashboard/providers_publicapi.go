package dashboard

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

type publicAPIsResponse struct {
	Entries []PublicAPIEntry `json:"entries"`
}

// PublicAPIEntry is one listing of the public APIs directory.
type PublicAPIEntry struct {
	API         string `json:"API"`
	Description string `json:"Description"`
	Auth        string `json:"Auth"`
	HTTPS       bool   `json:"HTTPS"`
	Cors        string `json:"Cors"`
	Link        string `json:"Link"`
	Category    string `json:"Category"`
}

// NewPublicAPIProvider renders one uniformly random entry of the directory.
func NewPublicAPIProvider(client JSONGetter, endpoint string, pick func(n int) int) Provider {
	if pick == nil {
		pick = rand.IntN
	}
	return &JSONSource[publicAPIsResponse]{
		Name:   "Public APIs directory",
		Client: client,
		Loading: func(WidgetContext) string {
			return "Finding a cool public API…"
		},
		Endpoint: func(WidgetContext) (string, error) { return endpoint, nil },
		Validate: func(_ WidgetContext, payload publicAPIsResponse) error {
			if len(payload.Entries) == 0 {
				return ShapeError("No entries.")
			}
			return nil
		},
		Render: func(_ WidgetContext, payload publicAPIsResponse) (Fragment, error) {
			idx := pick(len(payload.Entries))
			if idx < 0 || idx >= len(payload.Entries) {
				return Fragment{}, fmt.Errorf("dashboard: pick %d out of range [0, %d)", idx, len(payload.Entries))
			}
			return renderPublicAPI(payload.Entries[idx])
		},
	}
}

func renderPublicAPI(entry PublicAPIEntry) (Fragment, error) {
	if strings.TrimSpace(entry.API) == "" || strings.TrimSpace(entry.Link) == "" {
		return Fragment{}, ShapeError("Public API entry is incomplete.")
	}
	auth := entry.Auth
	if auth == "" {
		auth = "None"
	}
	return Fragment{
		Title:       entry.API,
		Subtitle:    entry.Description,
		Lines:       []string{fmt.Sprintf("Auth: %s · HTTPS: %t · CORS: %s", auth, entry.HTTPS, entry.Cors)},
		Link:        &Link{URL: entry.Link, Label: "Open docs"},
		Attribution: attribution("publicapis.org"),
	}, nil
}
