package dashboard

import (
	"fmt"
	"strings"
)

type githubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Bio         string `json:"bio"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	HTMLURL     string `json:"html_url"`
}

// NewGitHubUserProvider fetches a public GitHub profile.
func NewGitHubUserProvider(client JSONGetter, endpoint string) Provider {
	return &JSONSource[githubUser]{
		Name:   "GitHub",
		Client: client,
		Loading: func(meta WidgetContext) string {
			return "Loading " + meta.Input + "…"
		},
		Endpoint: func(meta WidgetContext) (string, error) {
			return withPath(endpoint, meta.Input), nil
		},
		Validate: func(_ WidgetContext, user githubUser) error {
			if strings.TrimSpace(user.Login) == "" || strings.TrimSpace(user.AvatarURL) == "" {
				return ShapeError("GitHub returned an incomplete profile.")
			}
			return nil
		},
		Render: func(_ WidgetContext, user githubUser) (Fragment, error) {
			title := user.Name
			if title == "" {
				title = user.Login
			}
			var lines []string
			if bio := strings.TrimSpace(user.Bio); bio != "" {
				lines = append(lines, bio)
			}
			lines = append(lines, fmt.Sprintf("Repos: %d · Followers: %d", user.PublicRepos, user.Followers))
			fragment := Fragment{
				Title:    title,
				Subtitle: "@" + user.Login,
				Lines:    lines,
				Image:    &Image{URL: user.AvatarURL, Alt: user.Login},
			}
			if user.HTMLURL != "" {
				fragment.Link = &Link{URL: user.HTMLURL, Label: "Open Profile"}
			}
			return fragment, nil
		},
		StatusMessage: func(meta WidgetContext, _ int) string {
			return fmt.Sprintf("GitHub user %q not found.", meta.Input)
		},
	}
}
