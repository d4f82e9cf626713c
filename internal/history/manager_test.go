package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiblet/proboost/internal/store"
	"github.com/yiblet/proboost/internal/store/memstore"
)

// setupManager returns a manager with deterministic ids and a clock that
// advances one second per call.
func setupManager(t *testing.T, opts ...Option) (*Manager, *memstore.MemoryStore) {
	t.Helper()

	kv := memstore.NewMemoryStore()
	var (
		mu  sync.Mutex
		seq int
		now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	)
	base := []Option{
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(time.Second)
			return now
		}),
	}
	return Open(kv, append(base, opts...)...), kv
}

func postEntry(t *testing.T, text string) Entry {
	t.Helper()
	e, err := NewEntry(ContentGenerationInput{Text: text}, PostsOutput{})
	require.NoError(t, err)
	return e
}

func persisted(t *testing.T, kv store.KV) string {
	t.Helper()
	raw, err := kv.Get(store.KeyHistory)
	require.NoError(t, err)
	return raw
}

func ids(items []HistoryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestManager_AddNeverExceedsLimit(t *testing.T) {
	m, _ := setupManager(t)

	for n := 1; n <= 120; n++ {
		m.Add(postEntry(t, fmt.Sprintf("post %d", n)), "")
		require.Equal(t, min(DefaultLimit, n), m.Len(), "after %d adds", n)
	}
}

func TestManager_EvictsOldest(t *testing.T) {
	m, kv := setupManager(t)

	var added []string
	for n := 1; n <= 51; n++ {
		item := m.Add(postEntry(t, fmt.Sprintf("post %d", n)), "")
		added = append(added, item.ID)
	}

	items := m.List()
	require.Len(t, items, DefaultLimit)

	_, found := m.Get(added[0])
	assert.False(t, found, "first item should be evicted")

	want := make([]string, 0, DefaultLimit)
	for i := len(added) - 1; i >= 1; i-- {
		want = append(want, added[i])
	}
	assert.Equal(t, want, ids(items))

	var stored []HistoryItem
	require.NoError(t, json.Unmarshal([]byte(persisted(t, kv)), &stored))
	assert.Equal(t, want, ids(stored))
}

func TestManager_WithLimit(t *testing.T) {
	m, _ := setupManager(t, WithLimit(3))
	for n := 0; n < 5; n++ {
		m.Add(postEntry(t, "x"), "")
	}
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 3, m.Limit())
	assert.Equal(t, []string{"id-005", "id-004", "id-003"}, ids(m.List()))
}

func TestManager_AddAssignsFields(t *testing.T) {
	m, _ := setupManager(t)

	e, err := NewEntry(JobApplicationInput{Email: "jane.doe@example.com"}, TextOutput{Text: "Dear hiring manager"})
	require.NoError(t, err)

	item := m.Add(e, "")
	assert.Equal(t, "id-001", item.ID)
	assert.Equal(t, "Application: jane.doe", item.Title)
	assert.Equal(t, JobApplication, item.FeatureType)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 1, 0, time.UTC).UnixMilli(), item.Timestamp)
	assert.JSONEq(t, `{"text":"Dear hiring manager"}`, string(item.Output))

	named := m.Add(e, "  My\tcover letter ")
	assert.Equal(t, "My cover letter", named.Title)
}

func TestManager_DefaultIDsAreUnique(t *testing.T) {
	m := Open(memstore.NewMemoryStore())
	seen := map[string]bool{}
	for n := 0; n < 50; n++ {
		item := m.Add(postEntry(t, "x"), "")
		require.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestManager_IDCollisionRegenerates(t *testing.T) {
	gen := []string{"a", "a", "a", "b"}
	i := 0
	m := Open(memstore.NewMemoryStore(), WithIDGenerator(func() string {
		id := gen[i]
		i++
		return id
	}))

	assert.Equal(t, "a", m.Add(postEntry(t, "one"), "").ID)
	assert.Equal(t, "b", m.Add(postEntry(t, "two"), "").ID)
}

func TestManager_TimestampsNeverGoBackwards(t *testing.T) {
	times := []time.Time{
		time.UnixMilli(2_000),
		time.UnixMilli(1_000),
	}
	i := 0
	m := Open(memstore.NewMemoryStore(), WithClock(func() time.Time {
		tm := times[i]
		i++
		return tm
	}))

	first := m.Add(postEntry(t, "one"), "")
	second := m.Add(postEntry(t, "two"), "")
	assert.Equal(t, int64(2_000), first.Timestamp)
	assert.Equal(t, int64(2_000), second.Timestamp)
}

func TestManager_Update(t *testing.T) {
	m, kv := setupManager(t)
	a := m.Add(postEntry(t, "alpha"), "")
	b := m.Add(postEntry(t, "beta"), "")

	title := "X"
	require.True(t, m.Update(a.ID, Patch{Title: &title}))

	got, ok := m.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.Timestamp, got.Timestamp)
	assert.Equal(t, a.FeatureType, got.FeatureType)
	assert.Equal(t, a.Input, got.Input)
	assert.Equal(t, a.Output, got.Output)

	other, _ := m.Get(b.ID)
	assert.Equal(t, b, other)

	require.True(t, m.Update(b.ID, Patch{Output: json.RawMessage(`{ "posts" : [] }`)}))
	other, _ = m.Get(b.ID)
	assert.Equal(t, `{"posts":[]}`, string(other.Output))

	encoded, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(encoded), persisted(t, kv))
}

func TestManager_RenameBlankDerivesTitle(t *testing.T) {
	m, kv := setupManager(t)
	a := m.Add(postEntry(t, "alpha"), "Custom")
	require.Equal(t, "Custom", a.Title)

	for _, blank := range []string{"", "   ", "\t\n"} {
		require.True(t, m.Rename(a.ID, blank))
		got, _ := m.Get(a.ID)
		assert.Equal(t, "alpha", got.Title, "rename to %q", blank)
	}

	// The derived title follows a patched input.
	title := ""
	require.True(t, m.Update(a.ID, Patch{Title: &title, Input: json.RawMessage(`{"text":"beta"}`)}))
	got, _ := m.Get(a.ID)
	assert.Equal(t, "beta", got.Title)

	encoded, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(encoded), persisted(t, kv))
}

func TestManager_UpdateUnknownIsNoop(t *testing.T) {
	m, kv := setupManager(t)
	m.Add(postEntry(t, "alpha"), "")
	before := persisted(t, kv)
	listBefore := m.List()

	kv.FailWrites(errors.New("must not write"))
	title := "X"
	assert.False(t, m.Update("missing", Patch{Title: &title}))
	assert.False(t, m.Rename("missing", "Y"))

	kv.FailWrites(nil)
	assert.Equal(t, before, persisted(t, kv))
	assert.Equal(t, listBefore, m.List())
}

func TestManager_Delete(t *testing.T) {
	m, kv := setupManager(t)
	for _, s := range []string{"a", "b", "c", "d"} {
		m.Add(postEntry(t, s), "")
	}
	before := ids(m.List())

	require.True(t, m.Delete("id-002"))
	assert.Equal(t, []string{"id-004", "id-003", "id-001"}, ids(m.List()))
	assert.Len(t, before, 4)

	assert.False(t, m.Delete("id-002"))
	assert.Equal(t, 3, m.Len())

	var stored []HistoryItem
	require.NoError(t, json.Unmarshal([]byte(persisted(t, kv)), &stored))
	assert.Equal(t, []string{"id-004", "id-003", "id-001"}, ids(stored))
}

func TestManager_Clear(t *testing.T) {
	m, kv := setupManager(t)
	m.Add(postEntry(t, "a"), "")
	m.Add(postEntry(t, "b"), "")

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.List())

	_, err := kv.Get(store.KeyHistory)
	assert.True(t, store.IsNotFound(err))

	// Clearing twice is harmless.
	m.Clear()
	assert.Equal(t, 0, m.Len())
}

func TestManager_RoundTrip(t *testing.T) {
	m, kv := setupManager(t)
	m.Add(postEntry(t, "a"), "")
	b := m.Add(postEntry(t, "b"), "")
	c := m.Add(postEntry(t, "c <b>&</b>"), "")
	m.Rename(b.ID, "renamed")
	m.Delete(c.ID)
	m.Add(postEntry(t, "d"), "")

	reloaded := Open(kv)
	assert.Equal(t, m.List(), reloaded.List())

	m.Clear()
	assert.Empty(t, Open(kv).List())
}

func TestManager_PersistedBytesMatchMemory(t *testing.T) {
	m, kv := setupManager(t)

	e := Entry{
		FeatureType: NewsToPost,
		Input:       json.RawMessage("{\n  \"headline\": \"Rates <cut> & markets\"\n}"),
		Output:      json.RawMessage("not json at all"),
	}
	item := m.Add(e, "")
	assert.Equal(t, `{"headline":"Rates <cut> & markets"}`, string(item.Input))
	assert.Equal(t, `"not json at all"`, string(item.Output))

	encoded, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(encoded), persisted(t, kv))

	reloaded := Open(kv)
	reencoded, err := reloaded.Encode()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestManager_PersistFailureKeepsMemory(t *testing.T) {
	m, kv := setupManager(t)
	kv.FailWrites(errors.New("quota exceeded"))

	item := m.Add(postEntry(t, "a"), "")
	assert.Equal(t, 1, m.Len())
	got, ok := m.Get(item.ID)
	assert.True(t, ok)
	assert.Equal(t, item, got)

	assert.True(t, m.Delete(item.ID))
	assert.Equal(t, 0, m.Len())
	m.Clear()
}

func TestManager_LoadFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"corrupt", "{not json"},
		{"wrong shape", `{"id":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memstore.NewMemoryStore()
			require.NoError(t, kv.Set(store.KeyHistory, tt.raw))

			m := Open(kv)
			assert.Equal(t, 0, m.Len())

			m.Add(postEntry(t, "fresh"), "")
			assert.Equal(t, 1, m.Len())
		})
	}

	t.Run("absent", func(t *testing.T) {
		assert.Equal(t, 0, Open(memstore.NewMemoryStore()).Len())
	})
}

func TestManager_LoadTrimsOverLimit(t *testing.T) {
	m, kv := setupManager(t)
	for n := 0; n < 10; n++ {
		m.Add(postEntry(t, "x"), "")
	}

	small := Open(kv, WithLimit(4))
	assert.Equal(t, ids(m.List())[:4], ids(small.List()))
}

func TestManager_ListReturnsCopies(t *testing.T) {
	m, _ := setupManager(t)
	m.Add(postEntry(t, "a"), "")

	items := m.List()
	items[0].Title = "mutated"
	items[0].Output[0] = 'X'

	again := m.List()
	assert.NotEqual(t, "mutated", again[0].Title)
	assert.Equal(t, byte('{'), again[0].Output[0])
}

func TestManager_At(t *testing.T) {
	m, _ := setupManager(t)
	m.Add(postEntry(t, "a"), "")
	m.Add(postEntry(t, "b"), "")

	item, err := m.At(0)
	require.NoError(t, err)
	assert.Equal(t, "id-002", item.ID)

	_, err = m.At(2)
	assert.Error(t, err)
	_, err = m.At(-1)
	assert.Error(t, err)
}

func TestManager_Search(t *testing.T) {
	m, _ := setupManager(t)
	m.Add(postEntry(t, "Kubernetes migration"), "")
	e, err := NewEntry(JobSearchInput{Query: "golang", Location: "Berlin"}, JobsOutput{})
	require.NoError(t, err)
	m.Add(e, "")
	m.Add(postEntry(t, "kubernetes tips"), "")

	results, err := m.Search("KUBERNETES", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-003", "id-001"}, ids(results))

	results, err = m.Search("kubernetes", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-003"}, ids(results))

	results, err = m.Search("berlin", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-002"}, ids(results))

	results, err = m.Search("", 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = m.Search("[unclosed", 0)
	assert.Error(t, err)
}

func TestManager_ConcurrentAdds(t *testing.T) {
	m, kv := setupManager(t)

	e := postEntry(t, "x")
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 20; n++ {
				m.Add(e, "")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, DefaultLimit, m.Len())
	encoded, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(encoded), persisted(t, kv))
}
