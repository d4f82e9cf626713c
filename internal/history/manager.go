// Package history keeps the capped, newest-first record of past
// generations and writes it through to durable storage on every change.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yiblet/proboost/internal/store"
	"github.com/yiblet/proboost/internal/zlog"
)

const (
	// DefaultLimit is the number of items kept before the oldest is evicted.
	DefaultLimit = 50
)

func logger() *zap.SugaredLogger {
	return zlog.Get()
}

// Manager owns the in-memory history collection and its durable copy
// under store.KeyHistory. In-memory state is authoritative for the
// session: a failed write is logged and never rolled back.
type Manager struct {
	mu    sync.Mutex
	kv    store.KV
	limit int
	items []HistoryItem // newest first

	now   func() time.Time
	newID func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit overrides DefaultLimit. Non-positive values are ignored.
func WithLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the id source.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager creates an empty manager over kv. Call Load to read the
// persisted collection.
func NewManager(kv store.KV, opts ...Option) *Manager {
	m := &Manager{
		kv:    kv,
		limit: DefaultLimit,
		now:   time.Now,
		newID: newID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates a manager and loads the persisted collection.
func Open(kv store.KV, opts ...Option) *Manager {
	m := NewManager(kv, opts...)
	m.Load()
	return m
}

// newID returns a UUIDv7: a millisecond time component plus random bits.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the in-memory collection with the persisted one.
// A missing or unreadable record yields an empty collection; failures are
// logged, never returned.
func (m *Manager) Load() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil

	raw, err := m.kv.Get(store.KeyHistory)
	if err != nil {
		if !store.IsNotFound(err) {
			logger().Warnw("load history fail", "err", err)
		}
		return
	}

	var items []HistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger().Warnw("decode history fail", "err", err)
		return
	}
	if len(items) > m.limit {
		logger().Infow("history over limit, trimming", "count", len(items), "limit", m.limit)
		items = items[:m.limit]
	}
	m.items = items
	logger().Debugw("history loaded", "count", len(items))
}

// Add records a new item. An empty title is derived from the entry.
// The item is prepended and the oldest item is evicted past the limit.
func (m *Manager) Add(e Entry, title string) HistoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	title = TruncateTitle(SanitizeTitle(title), MaxTitleLength)
	if title == "" {
		title = DeriveTitle(e)
	}

	ts := m.now().UnixMilli()
	if len(m.items) > 0 && ts < m.items[0].Timestamp {
		// Keep display order and timestamps in agreement when the clock steps back.
		ts = m.items[0].Timestamp
	}

	item := HistoryItem{
		ID:          m.uniqueID(),
		Title:       title,
		Timestamp:   ts,
		FeatureType: e.FeatureType,
		Input:       normalizeRaw(e.Input),
		Output:      normalizeRaw(e.Output),
	}

	m.items = append([]HistoryItem{item}, m.items...)
	if len(m.items) > m.limit {
		evicted := m.items[m.limit:]
		logger().Debugw("history evict", "count", len(evicted), "oldest", evicted[len(evicted)-1].ID)
		m.items = m.items[:m.limit:m.limit]
	}

	m.persist()
	return item.clone()
}

func (m *Manager) uniqueID() string {
	for {
		id := m.newID()
		if m.indexOf(id) < 0 {
			return id
		}
		logger().Warnw("history id collision", "id", id)
	}
}

// Update merges p into the item with the given id. A blank title is
// replaced by the derived one. Unknown ids are a no-op and nothing is
// written. Reports whether the item was found.
func (m *Manager) Update(id string, p Patch) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false
	}

	item := &m.items[i]
	if p.Input != nil {
		item.Input = normalizeRaw(p.Input)
	}
	if p.Output != nil {
		item.Output = normalizeRaw(p.Output)
	}
	if p.Title != nil {
		// A blank title is derived again, as in Add.
		title := TruncateTitle(SanitizeTitle(*p.Title), MaxTitleLength)
		if title == "" {
			title = DeriveTitle(Entry{FeatureType: item.FeatureType, Input: item.Input})
		}
		item.Title = title
	}

	m.persist()
	return true
}

// Rename is Update with only a title.
func (m *Manager) Rename(id, title string) bool {
	return m.Update(id, Patch{Title: &title})
}

// Delete removes the item with the given id. Reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.items = append(m.items[:i:i], m.items[i+1:]...)

	m.persist()
	return true
}

// Clear empties the collection and removes the durable record.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	if err := m.kv.Delete(store.KeyHistory); err != nil && !store.IsNotFound(err) {
		logger().Warnw("clear history fail", "err", err)
	}
}

// List returns a copy of all items, newest first.
func (m *Manager) List() []HistoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]HistoryItem, len(m.items))
	for i, item := range m.items {
		items[i] = item.clone()
	}
	return items
}

// Get returns the item with the given id.
func (m *Manager) Get(id string) (HistoryItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return HistoryItem{}, false
	}
	return m.items[i].clone(), true
}

// At returns the item at index (0 = newest).
func (m *Manager) At(index int) (HistoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.items) {
		return HistoryItem{}, fmt.Errorf("index %d out of range (0-%d)", index, len(m.items)-1)
	}
	return m.items[index].clone(), nil
}

// Len returns the number of items.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Limit returns the configured capacity.
func (m *Manager) Limit() int {
	return m.limit
}

// Search returns items whose title, input or output matches pattern
// (a case-insensitive regular expression), newest first. A limit of 0
// means no limit.
func (m *Manager) Search(pattern string, limit int) ([]HistoryItem, error) {
	if pattern == "" {
		return []HistoryItem{}, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	results := []HistoryItem{}
	for _, item := range m.items {
		if re.MatchString(item.Title) || re.Match(item.Input) || re.Match(item.Output) {
			results = append(results, item.clone())
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// Encode returns the durable encoding of the current collection.
func (m *Manager) Encode() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return encodeItems(m.items)
}

func (m *Manager) indexOf(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole collection. Caller holds m.mu.
func (m *Manager) persist() {
	data, err := encodeItems(m.items)
	if err != nil {
		logger().Errorw("encode history fail", "err", err)
		return
	}
	if err := m.kv.Set(store.KeyHistory, string(data)); err != nil {
		logger().Warnw("persist history fail", "count", len(m.items), "err", err)
	}
}

func encodeItems(items []HistoryItem) ([]byte, error) {
	if items == nil {
		items = []HistoryItem{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
