package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultErrorMessage is shown when a failure carries no readable message.
const DefaultErrorMessage = "Something went wrong."

// ErrorKind classifies widget failures.
type ErrorKind string

const (
	KindTransport     ErrorKind = "transport"
	KindShape         ErrorKind = "shape"
	KindInput         ErrorKind = "input"
	KindConfiguration ErrorKind = "configuration"
)

var (
	errUnknownWidget  = errors.New("dashboard: unknown widget")
	errUnknownTrigger = errors.New("dashboard: unknown trigger")
	errMissingClient  = errors.New("dashboard: http client not configured")
)

// WidgetError carries the user-facing message of a failure together with the
// underlying cause.
type WidgetError struct {
	Kind    ErrorKind
	Widget  string
	Message string
	Status  int
	Err     error
}

func (e *WidgetError) Error() string {
	var b strings.Builder
	b.WriteString("dashboard: ")
	if e.Widget != "" {
		b.WriteString(e.Widget)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *WidgetError) Unwrap() error { return e.Err }

// TransportError reports an unreachable endpoint or a non-success status.
func TransportError(message string, status int, err error) *WidgetError {
	return &WidgetError{Kind: KindTransport, Message: message, Status: status, Err: err}
}

// ShapeError reports a body that decoded but lacks a required field.
func ShapeError(message string) *WidgetError {
	return &WidgetError{Kind: KindShape, Message: message}
}

// InputError reports a user value that produced no usable result.
func InputError(message string, err error) *WidgetError {
	return &WidgetError{Kind: KindInput, Message: message, Err: err}
}

// ConfigurationError reports a widget that cannot run until it is configured.
func ConfigurationError(message string) *WidgetError {
	return &WidgetError{Kind: KindConfiguration, Message: message}
}

// KindOf returns the failure kind, or an empty kind for foreign errors.
func KindOf(err error) ErrorKind {
	var werr *WidgetError
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return ""
}

// UserMessage extracts the human-readable message of err.
func UserMessage(err error) string {
	if err == nil {
		return DefaultErrorMessage
	}
	var werr *WidgetError
	if errors.As(err, &werr) && werr.Message != "" {
		return werr.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

func withWidget(err error, code string) error {
	var werr *WidgetError
	if errors.As(err, &werr) && werr.Widget == "" {
		werr.Widget = code
	}
	return err
}
