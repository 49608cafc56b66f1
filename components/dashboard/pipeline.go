package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// JSONSource is the generic fetch-validate-render pipeline shared by the
// single-request widgets.
type JSONSource[T any] struct {
	// Name labels the upstream API in default failure messages.
	Name     string
	Client   JSONGetter
	Loading  func(meta WidgetContext) string
	Endpoint func(meta WidgetContext) (string, error)
	Validate func(meta WidgetContext, payload T) error
	Render   func(meta WidgetContext, payload T) (Fragment, error)
	// StatusMessage overrides the message for non-success responses.
	StatusMessage func(meta WidgetContext, status int) string
}

// Fetch runs the pipeline once.
func (s *JSONSource[T]) Fetch(ctx context.Context, meta WidgetContext) (Fragment, error) {
	if s.Endpoint == nil || s.Render == nil {
		return Fragment{}, fmt.Errorf("dashboard: source %s is missing endpoint or renderer", s.Name)
	}
	url, err := s.Endpoint(meta)
	if err != nil {
		return Fragment{}, err
	}
	var statusMessage func(int) string
	if s.StatusMessage != nil {
		statusMessage = func(status int) string { return s.StatusMessage(meta, status) }
	}
	payload, err := FetchJSON[T](ctx, s.Client, s.Name, url, statusMessage)
	if err != nil {
		return Fragment{}, err
	}
	if s.Validate != nil {
		if err := s.Validate(meta, payload); err != nil {
			return Fragment{}, err
		}
	}
	return s.Render(meta, payload)
}

// LoadingMessage satisfies LoadingMessager.
func (s *JSONSource[T]) LoadingMessage(meta WidgetContext) string {
	if s.Loading == nil {
		return ""
	}
	return s.Loading(meta)
}

// FetchJSON performs one GET and decodes the response into T, filling in a
// user message derived from name when the failure has none.
func FetchJSON[T any](ctx context.Context, client JSONGetter, name, url string, statusMessage func(int) string) (T, error) {
	var payload T
	if client == nil {
		return payload, errMissingClient
	}
	if err := client.GetJSON(ctx, url, &payload); err != nil {
		return payload, describeFailure(name, err, statusMessage)
	}
	return payload, nil
}

func describeFailure(name string, err error, statusMessage func(int) string) error {
	var werr *WidgetError
	if !errors.As(err, &werr) {
		return TransportError(fmt.Sprintf("%s is unreachable.", name), 0, err)
	}
	if werr.Message != "" {
		return err
	}
	switch {
	case werr.Kind == KindTransport && werr.Status != 0:
		if statusMessage != nil {
			werr.Message = statusMessage(werr.Status)
		}
		if werr.Message == "" {
			werr.Message = fmt.Sprintf("%s request failed (status %d).", name, werr.Status)
		}
	case werr.Kind == KindTransport:
		werr.Message = fmt.Sprintf("%s is unreachable.", name)
	case werr.Kind == KindShape:
		werr.Message = fmt.Sprintf("%s returned a malformed response.", name)
	}
	return werr
}
