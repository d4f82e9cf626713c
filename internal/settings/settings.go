// Package settings holds user preferences and feature flags, written
// through to the durable store on every change.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/yiblet/proboost/internal/store"
	"github.com/yiblet/proboost/internal/zlog"
)

var (
	// ErrClosed is returned by setters after Close.
	ErrClosed = errors.New("settings closed")
	// ErrInvalidValue is returned when a value fails validation.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnknownSetting is returned by Get and Set for unknown names.
	ErrUnknownSetting = errors.New("unknown setting")
)

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Setting names accepted by Get and Set.
const (
	NameTheme        = "theme"
	NameLanguage     = "language"
	NameAPIKey       = "api-key"
	NameNewsletter   = "newsletter"
	NameJobAlert     = "job-alert"
	NameProfileDraft = "profile-draft"
)

// Names lists every setting name in display order.
var Names = []string{NameTheme, NameLanguage, NameAPIKey, NameNewsletter, NameJobAlert, NameProfileDraft}

// DefaultLanguage is used until a language preference is stored.
var DefaultLanguage = language.English

// Settings is the explicit application context: opened over a KV store,
// passed to whoever needs it, and torn down with Close.
type Settings struct {
	mu     sync.RWMutex
	kv     store.KV
	closed bool

	theme      Theme
	lang       language.Tag
	apiKey     string
	newsletter bool
	jobAlert   bool
	draft      json.RawMessage
}

// Open reads every stored preference. Missing or unreadable values fall
// back to defaults; failures are logged.
func Open(kv store.KV) *Settings {
	s := &Settings{
		kv:    kv,
		theme: ThemeSystem,
		lang:  DefaultLanguage,
	}

	if v, ok := s.load(store.KeyTheme); ok {
		if t, err := ParseTheme(v); err == nil {
			s.theme = t
		} else {
			logger().Warnw("ignore stored theme", "value", v, "err", err)
		}
	}
	if v, ok := s.load(store.KeyLanguage); ok {
		if tag, err := language.Parse(v); err == nil {
			s.lang = tag
		} else {
			logger().Warnw("ignore stored language", "value", v, "err", err)
		}
	}
	if v, ok := s.load(store.KeyAPIKey); ok {
		s.apiKey = v
	}
	if v, ok := s.load(store.KeyNewsletterSubscribed); ok {
		s.newsletter = cast.ToBool(v)
	}
	if v, ok := s.load(store.KeyJobAlertActive); ok {
		s.jobAlert = cast.ToBool(v)
	}
	if v, ok := s.load(store.KeyProfileDraft); ok {
		if json.Valid([]byte(v)) {
			s.draft = json.RawMessage(v)
		} else {
			logger().Warnw("ignore stored profile draft", "len", len(v))
		}
	}
	return s
}

func (s *Settings) load(key string) (string, bool) {
	v, err := s.kv.Get(key)
	if err != nil {
		if !store.IsNotFound(err) {
			logger().Warnw("load setting fail", "key", key, "err", err)
		}
		return "", false
	}
	return v, true
}

// Close detaches the settings from the store. The store itself is owned by
// the caller and stays open. Reads keep returning the last values.
func (s *Settings) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ParseTheme validates a theme name.
func ParseTheme(v string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(v))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("%w: theme %q (must be light, dark or system)", ErrInvalidValue, v)
	}
}

// write stores value under key, or deletes key when value is empty.
// Caller holds s.mu. Storage failures are logged only.
func (s *Settings) write(key, value string) {
	var err error
	if value == "" {
		err = s.kv.Delete(key)
		if store.IsNotFound(err) {
			err = nil
		}
	} else {
		err = s.kv.Set(key, value)
	}
	if err != nil {
		logger().Warnw("persist setting fail", "key", key, "err", err)
	}
}

func (s *Settings) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Settings) SetTheme(v string) error {
	t, err := ParseTheme(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.theme = t
	s.write(store.KeyTheme, string(t))
	return nil
}

func (s *Settings) Language() language.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// SetLanguage accepts any well-formed BCP 47 tag and stores its canonical form.
func (s *Settings) SetLanguage(v string) error {
	tag, err := language.Parse(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%w: language %q: %v", ErrInvalidValue, v, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.lang = tag
	s.write(store.KeyLanguage, tag.String())
	return nil
}

func (s *Settings) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// SetAPIKey stores the user's own API key. An empty key clears it.
func (s *Settings) SetAPIKey(v string) error {
	v = strings.TrimSpace(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.apiKey = v
	s.write(store.KeyAPIKey, v)
	return nil
}

// EffectiveAPIKey prefers the user-provided key over platformDefault.
func (s *Settings) EffectiveAPIKey(platformDefault string) string {
	if k := s.APIKey(); k != "" {
		return k
	}
	return platformDefault
}

func (s *Settings) NewsletterSubscribed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newsletter
}

func (s *Settings) SetNewsletterSubscribed(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.newsletter = on
	s.write(store.KeyNewsletterSubscribed, strconv.FormatBool(on))
	return nil
}

func (s *Settings) JobAlertActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobAlert
}

func (s *Settings) SetJobAlertActive(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.jobAlert = on
	s.write(store.KeyJobAlertActive, strconv.FormatBool(on))
	return nil
}

// ProfileDraft returns the last autosaved profile form, or nil.
func (s *Settings) ProfileDraft() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.draft)
}

// SetProfileDraft stores a JSON object. Empty input clears the draft.
func (s *Settings) SetProfileDraft(raw json.RawMessage) error {
	var compact bytes.Buffer
	if len(bytes.TrimSpace(raw)) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return fmt.Errorf("%w: profile draft must be a JSON object", ErrInvalidValue)
		}
		if err := json.Compact(&compact, raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if compact.Len() == 0 {
		s.draft = nil
	} else {
		s.draft = compact.Bytes()
	}
	s.write(store.KeyProfileDraft, compact.String())
	return nil
}

// Get returns a setting by name, formatted as a string. The API key is masked.
func (s *Settings) Get(name string) (string, error) {
	switch name {
	case NameTheme:
		return string(s.Theme()), nil
	case NameLanguage:
		return s.Language().String(), nil
	case NameAPIKey:
		return MaskKey(s.APIKey()), nil
	case NameNewsletter:
		return strconv.FormatBool(s.NewsletterSubscribed()), nil
	case NameJobAlert:
		return strconv.FormatBool(s.JobAlertActive()), nil
	case NameProfileDraft:
		return string(s.ProfileDraft()), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
}

// Set updates a setting by name from its string form.
func (s *Settings) Set(name, value string) error {
	switch name {
	case NameTheme:
		return s.SetTheme(value)
	case NameLanguage:
		return s.SetLanguage(value)
	case NameAPIKey:
		return s.SetAPIKey(value)
	case NameNewsletter, NameJobAlert:
		on, err := cast.ToBoolE(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, name)
		}
		if name == NameNewsletter {
			return s.SetNewsletterSubscribed(on)
		}
		return s.SetJobAlertActive(on)
	case NameProfileDraft:
		return s.SetProfileDraft(json.RawMessage(value))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
}

// List returns every setting by name.
func (s *Settings) List() map[string]string {
	out := make(map[string]string, len(Names))
	for _, name := range Names {
		v, _ := s.Get(name)
		out[name] = v
	}
	return out
}

// MaskKey hides all but the last four characters of an API key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
