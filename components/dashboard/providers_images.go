package dashboard

import "strings"

type dogResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewDogProvider fetches a random dog picture from dog.ceo.
func NewDogProvider(client JSONGetter, endpoint string) Provider {
	const apiError = "Dog API error."
	return &JSONSource[dogResponse]{
		Name:   "Dog API",
		Client: client,
		Loading: func(WidgetContext) string {
			return "Fetching a random doggo…"
		},
		Endpoint: func(WidgetContext) (string, error) { return endpoint, nil },
		Validate: func(_ WidgetContext, payload dogResponse) error {
			if payload.Status != "success" || strings.TrimSpace(payload.Message) == "" {
				return ShapeError(apiError)
			}
			return nil
		},
		Render: func(_ WidgetContext, payload dogResponse) (Fragment, error) {
			return Fragment{
				Image:       &Image{URL: payload.Message, Alt: "Random dog"},
				Attribution: attribution("dog.ceo"),
			}, nil
		},
		StatusMessage: func(WidgetContext, int) string { return apiError },
	}
}

type catImage struct {
	URL string `json:"url"`
}

// NewCatProvider fetches a random cat picture from TheCatAPI.
func NewCatProvider(client JSONGetter, endpoint string) Provider {
	return &JSONSource[[]catImage]{
		Name:   "Cat API",
		Client: client,
		Loading: func(WidgetContext) string {
			return "Fetching a random cat…"
		},
		Endpoint: func(WidgetContext) (string, error) { return endpoint, nil },
		Validate: func(_ WidgetContext, payload []catImage) error {
			if len(payload) == 0 || strings.TrimSpace(payload[0].URL) == "" {
				return ShapeError("Cat API returned no image.")
			}
			return nil
		},
		Render: func(_ WidgetContext, payload []catImage) (Fragment, error) {
			return Fragment{
				Image:       &Image{URL: payload[0].URL, Alt: "Random cat"},
				Attribution: attribution("thecatapi.com"),
			}, nil
		},
	}
}
