// Package store defines the durable key-value storage used by proboost.
// It mirrors a browser's local storage: string keys mapped to string
// values, with every write applied immediately.
package store

import (
	"errors"
)

// ErrNotFound is returned (wrapped) by Get and Delete for missing keys.
var ErrNotFound = errors.New("key not found")

// KV is a durable string key-value store.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get retrieves a value by key.
	// Returns an error wrapping ErrNotFound if the key does not exist.
	Get(key string) (string, error)

	// Set stores a value. If the key already exists, its value is replaced.
	Set(key, value string) error

	// Delete removes a key.
	// Returns an error wrapping ErrNotFound if the key does not exist.
	Delete(key string) error

	// List returns a copy of all key-value pairs.
	List() (map[string]string, error)

	// Close releases any resources (DB connections, clients, etc.).
	Close() error
}

// Keys of the durable storage layout.
const (
	KeyHistory              = "history-collection"
	KeyNewsletterSubscribed = "newsletter-subscribed-flag"
	KeyJobAlertActive       = "job-alert-active-flag"
	KeyProfileDraft         = "profile-creator-draft"
	KeyAPIKey               = "user-provided-api-key"
	KeyTheme                = "theme-preference"
	KeyLanguage             = "language-preference"
)

// IsNotFound reports whether err signals a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
