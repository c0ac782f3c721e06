package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err, "new memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "habitr.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "k", "v"))
	s.Close()

	// Reopen: data survives and the migration is not re-run.
	s2, err := New(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, "habitr.db", filepath.Base(path))
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.migrate())
}

// ============================================================
// Key-value access
// ============================================================

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	v, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "trackers", "[]"))
	require.NoError(t, s.Put(ctx, "trackers", `[{"id":"1"}]`))

	v, _, err := s.Get(ctx, "trackers")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, v)
}

func TestDeleteAndKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "b", "2"))
	require.NoError(t, s.Put(ctx, "a", "1"))
	require.NoError(t, s.Delete(ctx, "b"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, "a")
	assert.NotContains(t, keys, "b")
}

// ============================================================
// Settings
// ============================================================

func TestSettingsSeeded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetSetting(ctx, SettingDashboardPeriod)
	require.NoError(t, err)
	assert.Equal(t, "week", v)

	all, err := s.AllSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, st := range all {
		assert.NotContains(t, st.Key, settingPrefix)
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SetSetting(ctx, SettingWeekStart, "sunday"))

	v, err := s.GetSetting(ctx, SettingWeekStart)
	require.NoError(t, err)
	assert.Equal(t, "sunday", v)
}

func TestGetSettingMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNoSetting)
}

// ============================================================
// Value
// ============================================================

type item struct {
	Name string `json:"name"`
}

func newTestValue(t *testing.T, b Backend) *Value[[]item] {
	t.Helper()
	return NewValue[[]item](b, "items", []item{}, zerolog.Nop())
}

func TestValueLoadMissingUsesDefault(t *testing.T) {
	v := newTestValue(t, newTestStore(t))
	require.NoError(t, v.Load(context.Background()))
	assert.True(t, v.Loaded())
	assert.Equal(t, []item{}, v.Get())
}

func TestValueLoadMalformedUsesDefault(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(context.Background(), "items", "{not json"))

	v := newTestValue(t, s)
	require.NoError(t, v.Load(context.Background()))
	assert.True(t, v.Loaded())
	assert.Equal(t, []item{}, v.Get())
}

func TestValueLoadReadsStoredData(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(context.Background(), "items", `[{"name":"a"}]`))

	v := newTestValue(t, s)
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, []item{{Name: "a"}}, v.Get())
}

func TestValueSetBeforeLoadDoesNotPersist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "items", `[{"name":"stored"}]`))

	v := newTestValue(t, s)
	require.NoError(t, v.Set([]item{}))

	raw, _, err := s.Get(ctx, "items")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"stored"}]`, raw, "pre-load set must not overwrite stored data")

	require.NoError(t, v.Load(ctx))
	assert.Equal(t, []item{{Name: "stored"}}, v.Get())

	require.NoError(t, v.Update(func(cur []item) []item {
		return append(append([]item{}, cur...), item{Name: "new"})
	}))
	raw, _, err = s.Get(ctx, "items")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"stored"},{"name":"new"}]`, raw)
}

func TestValueTryUpdateBeforeLoad(t *testing.T) {
	v := newTestValue(t, newTestStore(t))
	applied, err := v.TryUpdate(func(cur []item) []item { return append(cur, item{Name: "x"}) })
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, v.Get())
}

func TestValueUpdatesQueueOnLatest(t *testing.T) {
	v := newTestValue(t, newTestStore(t))
	require.NoError(t, v.Load(context.Background()))

	for _, n := range []string{"a", "b", "c"} {
		name := n
		require.NoError(t, v.Update(func(cur []item) []item {
			return append(append([]item{}, cur...), item{Name: name})
		}))
	}
	assert.Equal(t, []item{{"a"}, {"b"}, {"c"}}, v.Get())
}

func TestValueSubscribe(t *testing.T) {
	v := newTestValue(t, newTestStore(t))
	var seen [][]item
	cancel := v.Subscribe(func(cur []item) { seen = append(seen, cur) })

	require.NoError(t, v.Load(context.Background()))
	require.NoError(t, v.Set([]item{{Name: "a"}}))
	cancel()
	require.NoError(t, v.Set([]item{{Name: "b"}}))

	require.Len(t, seen, 2)
	assert.Equal(t, []item{{Name: "a"}}, seen[1])
}

// gatedBackend blocks reads until release is closed and records writes.
type gatedBackend struct {
	release chan struct{}
	mu      sync.Mutex
	stored  string
	puts    int
}

func (g *gatedBackend) Get(ctx context.Context, key string) (string, bool, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stored, g.stored != "", nil
}

func (g *gatedBackend) Put(_ context.Context, _ string, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stored = value
	g.puts++
	return nil
}

func TestValueWriteDuringSlowLoadIsSuppressed(t *testing.T) {
	b := &gatedBackend{release: make(chan struct{}), stored: `[{"name":"stored"}]`}
	v := newTestValue(t, b)

	done := make(chan error)
	go func() { done <- v.Load(context.Background()) }()

	require.NoError(t, v.Set([]item{{Name: "default"}}))
	close(b.release)
	require.NoError(t, <-done)

	assert.Equal(t, 0, b.puts)
	assert.Equal(t, []item{{Name: "stored"}}, v.Get())
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingBackend) Put(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func TestValueReadErrorFallsBack(t *testing.T) {
	v := newTestValue(t, failingBackend{})
	require.NoError(t, v.Load(context.Background()))
	assert.True(t, v.Loaded())

	err := v.Set([]item{{Name: "a"}})
	require.Error(t, err)
	assert.Equal(t, []item{{Name: "a"}}, v.Get(), "memory stays authoritative on write failure")
}

func TestValueLoadCancelled(t *testing.T) {
	b := &gatedBackend{release: make(chan struct{})}
	v := newTestValue(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, v.Load(ctx))
	assert.False(t, v.Loaded())
}
