package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// CredentialKey names the single persisted credential (the movie API key).
const CredentialKey = "tmdb_api_key"

const (
	credentialPromptMessage = "Please enter your TMDB API key, click “Save Key”, then “Refresh”."
	credentialSavedMessage  = "TMDB key saved! Click Refresh to load trending."
)

// ErrEmptyCredential is returned when saving a blank credential.
var ErrEmptyCredential = &WidgetError{Kind: KindInput, Widget: WidgetMovies, Message: "Enter your TMDB API key first."}

// CredentialStore persists one string value across sessions.
type CredentialStore interface {
	Save(ctx context.Context, value string) error
	Load(ctx context.Context) (string, bool, error)
}

// InMemoryCredentialStore keeps the credential for the lifetime of the process.
type InMemoryCredentialStore struct {
	mu    sync.RWMutex
	value string
	set   bool
}

// NewInMemoryCredentialStore builds an empty store.
func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{}
}

// Save stores value, overwriting any prior credential.
func (s *InMemoryCredentialStore) Save(_ context.Context, value string) error {
	value, err := NormalizeCredential(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.set = true
	return nil
}

// Load returns the stored credential, if any.
func (s *InMemoryCredentialStore) Load(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set, nil
}

// NormalizeCredential trims value and rejects blanks.
func NormalizeCredential(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrEmptyCredential
	}
	return value, nil
}

// IsEmptyCredential reports whether err is the blank-credential warning.
func IsEmptyCredential(err error) bool {
	return errors.Is(err, ErrEmptyCredential)
}

func resolveCredential(ctx context.Context, store CredentialStore, input string) (string, error) {
	if key := strings.TrimSpace(input); key != "" {
		return key, nil
	}
	if store == nil {
		return "", nil
	}
	key, ok, err := store.Load(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(key), nil
}
