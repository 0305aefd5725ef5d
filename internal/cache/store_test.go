package cache_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/cache"
)

type tweet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// fakeClock is a settable clock for the store.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newStore(t *testing.T, opts ...cache.Option) (*cache.FileStore, *fakeClock, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".cache")
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	store, err := cache.NewFileStore(dir, append([]cache.Option{cache.WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	return store, clock, dir
}

func TestNewFileStore(t *testing.T) {
	store, err := cache.NewFileStore("")
	require.ErrorIs(t, err, cache.ErrEmptyDirectory)
	assert.Nil(t, store)

	dir := filepath.Join(t.TempDir(), "never-created")
	store, err = cache.NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Directory())
	assert.NoDirExists(t, dir, "directory is only created on write")
}

func TestFileStore_RoundTrip(t *testing.T) {
	store, _, dir := newStore(t)
	want := []tweet{{ID: "1", Text: "hello"}, {ID: "2", Text: "world"}}

	require.NoError(t, store.Put("twitter_AnasAboreeda_5", want, time.Hour))
	assert.DirExists(t, dir)

	got, ok := cache.Get[[]tweet](store, "twitter_AnasAboreeda_5")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFileStore_EnvelopeFormat(t *testing.T) {
	store, clock, dir := newStore(t)
	store.Set("k", map[string]int{"n": 1}, 90*time.Second)

	raw, err := os.ReadFile(filepath.Join(dir, "k.json"))
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.JSONEq(t, `{"n":1}`, string(envelope["data"]))

	var entry cache.Entry
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, clock.now.UnixMilli(), entry.Timestamp)
	assert.Equal(t, int64(90_000), entry.ExpiresAt-entry.Timestamp)
}

func TestFileStore_Expiry(t *testing.T) {
	store, clock, dir := newStore(t)
	store.Set("k", "v", time.Minute)

	clock.Advance(time.Minute)
	got, ok := cache.Get[string](store, "k")
	require.True(t, ok, "entry is valid at exactly its expiry instant")
	assert.Equal(t, "v", got)

	clock.Advance(time.Millisecond)
	entry, status := store.Lookup("k")
	assert.Nil(t, entry)
	assert.Equal(t, cache.StatusExpired, status)
	assert.NoFileExists(t, filepath.Join(dir, "k.json"), "expired entries are removed on read")

	_, status = store.Lookup("k")
	assert.Equal(t, cache.StatusMiss, status)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store, _, dir := newStore(t)

	_, ok := cache.Get[string](store, "anything")
	assert.False(t, ok)
	assert.Equal(t, cache.Stats{}, store.Stats())
	assert.Equal(t, 0, store.Clear())
	assert.Equal(t, 0, store.CleanupExpired())
	assert.NoDirExists(t, dir)
}

func TestFileStore_CorruptEntry(t *testing.T) {
	var buf bytes.Buffer
	store, _, dir := newStore(t, cache.WithLogger(zerolog.New(&buf)))

	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0600))

	_, status := store.Lookup("broken")
	assert.Equal(t, cache.StatusCorrupt, status)
	_, ok := cache.Get[string](store, "broken")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.FileExists(t, filepath.Join(dir, "broken.json"), "corrupt entries are not deleted on read")
}

func TestFileStore_TypeMismatchIsMiss(t *testing.T) {
	store, _, _ := newStore(t)
	store.Set("k", "a string", time.Hour)

	_, ok := cache.Get[[]tweet](store, "k")
	assert.False(t, ok)
}

func TestFileStore_KeySanitization(t *testing.T) {
	store, _, dir := newStore(t)

	tests := []struct {
		key      string
		wantFile string
	}{
		{"twitter/user name:5", "twitter_user_name_5.json"},
		{"../../etc/passwd", "______etc_passwd.json"},
		{"ÄÖ", "__.json"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store.Set(tt.key, 1, time.Hour)
			assert.FileExists(t, filepath.Join(dir, tt.wantFile))
			assert.Equal(t, filepath.Join(dir, tt.wantFile), store.Path(tt.key))

			got, ok := cache.Get[int](store, tt.key)
			require.True(t, ok)
			assert.Equal(t, 1, got)
		})
	}
}

func TestFileStore_CollidingKeysShareFile(t *testing.T) {
	store, _, dir := newStore(t)

	store.Set("a-b", "first", time.Hour)
	store.Set("a_b", "second", time.Hour)

	got, ok := cache.Get[string](store, "a-b")
	require.True(t, ok)
	assert.Equal(t, "second", got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_OverwriteLeavesNoTempFiles(t *testing.T) {
	store, _, dir := newStore(t)

	for i := range 5 {
		require.NoError(t, store.Put("k", i, time.Hour))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k.json", entries[0].Name())

	got, ok := cache.Get[int](store, "k")
	require.True(t, ok)
	assert.Equal(t, 4, got)
}

func TestFileStore_EmptyKey(t *testing.T) {
	store, _, _ := newStore(t)

	require.ErrorIs(t, store.Put("", 1, time.Hour), cache.ErrInvalidCacheKey)
	require.ErrorIs(t, store.Delete(""), cache.ErrInvalidCacheKey)
	_, status := store.Lookup("")
	assert.Equal(t, cache.StatusMiss, status)
}

func TestFileStore_Delete(t *testing.T) {
	store, _, _ := newStore(t)
	store.Set("k", 1, time.Hour)

	require.NoError(t, store.Delete("k"))
	_, ok := cache.Get[int](store, "k")
	assert.False(t, ok)
	require.NoError(t, store.Delete("k"), "deleting a missing key is not an error")
}

func TestFileStore_Clear(t *testing.T) {
	store, _, dir := newStore(t)
	store.Set("a", 1, time.Hour)
	store.Set("b", 2, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0750))

	assert.Equal(t, 3, store.Clear())
	assert.DirExists(t, filepath.Join(dir, "subdir"), "directories are left alone")

	_, ok := cache.Get[int](store, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Clear())
}

func TestFileStore_Stats(t *testing.T) {
	store, clock, dir := newStore(t)

	store.Set("old", "x", 24*time.Hour)
	clock.Advance(30 * time.Minute)
	store.Set("new", "y", 24*time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("nope"), 0600))
	clock.Advance(59*time.Minute + 40*time.Second)

	stats := store.Stats()
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 90, stats.OldestAge, "age is rounded to whole minutes from the oldest stored timestamp")

	var total int64
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		info, infoErr := e.Info()
		require.NoError(t, infoErr)
		total += info.Size()
	}
	assert.Equal(t, total, stats.TotalSize)
}

func TestFileStore_StatsOnlyCorrupt(t *testing.T) {
	store, _, dir := newStore(t)
	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("[]x"), 0600))

	stats := store.Stats()
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 0, stats.OldestAge)
}

func TestFileStore_CleanupExpired(t *testing.T) {
	store, clock, dir := newStore(t)
	store.Set("short", 1, time.Minute)
	store.Set("long", 2, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("{"), 0600))

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, store.CleanupExpired())

	_, ok := cache.Get[int](store, "long")
	assert.True(t, ok)
	assert.FileExists(t, filepath.Join(dir, "corrupt.json"))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "hit", cache.StatusHit.String())
	assert.Equal(t, "miss", cache.StatusMiss.String())
	assert.Equal(t, "expired", cache.StatusExpired.String())
	assert.Equal(t, "corrupt", cache.StatusCorrupt.String())
}
