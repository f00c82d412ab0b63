package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/repriest/quicklink/internal/storage/file"
	"github.com/repriest/quicklink/internal/storage/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testBaseURL = "http://short.ly/"

type MockStorage struct {
	LoadFunc  func() ([]types.Mapping, error)
	SaveFunc  func(entries []types.Mapping) error
	SaveCount int
	LastSaved []types.Mapping
}

func (m *MockStorage) Load() ([]types.Mapping, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return nil, types.ErrNoData
}

func (m *MockStorage) Save(entries []types.Mapping) error {
	m.SaveCount++
	m.LastSaved = entries
	if m.SaveFunc != nil {
		return m.SaveFunc(entries)
	}
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestRegistry_ShortenResolveRoundTrip(t *testing.T) {
	urls := []string{
		"https://example.com/page",
		"http://example.com/search?q=go&lang=en#top",
		"ftp://files.example.com/pub/file.tar.gz",
		"mailto:someone@example.com",
	}
	st := &MockStorage{}
	r := New(st, testBaseURL, nil)

	for _, u := range urls {
		t.Run(u, func(t *testing.T) {
			short, err := r.Shorten(u)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(short, testBaseURL))
			assert.Len(t, strings.TrimPrefix(short, testBaseURL), 8)

			got, found := r.Resolve(short)
			assert.True(t, found)
			assert.Equal(t, u, got)
		})
	}
	assert.Equal(t, len(urls), r.Len())
	assert.Equal(t, len(urls), st.SaveCount)
	assert.Len(t, st.LastSaved, len(urls))
}

func TestRegistry_ShortenIsIdempotent(t *testing.T) {
	st := &MockStorage{}
	r := New(st, testBaseURL, nil)

	first, err := r.Shorten("https://example.com/page")
	require.NoError(t, err)
	second, err := r.Shorten("https://example.com/page")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, st.SaveCount)
}

func TestRegistry_ShortenInvalidURL(t *testing.T) {
	tests := []string{"not a url", "", "example.com", "/relative/path", "http://"}
	st := &MockStorage{}
	r := New(st, testBaseURL, nil)

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			short, err := r.Shorten(in)
			require.Error(t, err)
			assert.Empty(t, short)

			invalid, ok := IsInvalidURL(err)
			require.True(t, ok)
			assert.Equal(t, in, invalid.URL)
			assert.NotNil(t, errors.Unwrap(err))
		})
	}
	assert.Zero(t, r.Len())
	assert.Zero(t, st.SaveCount)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := New(&MockStorage{}, testBaseURL, nil)
	_, err := r.Shorten("https://example.com")
	require.NoError(t, err)

	got, found := r.Resolve("http://short.ly/00000000")
	assert.False(t, found)
	assert.Empty(t, got)

	_, found = r.Resolve("https://example.com")
	assert.False(t, found)
}

func TestRegistry_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "url_mappings.dat")
	st, err := file.NewFileStorage(path)
	require.NoError(t, err)

	short, err := New(st, testBaseURL, nil).Shorten("https://example.com/page")
	require.NoError(t, err)

	// simulated restart
	st, err = file.NewFileStorage(path)
	require.NoError(t, err)
	r := New(st, testBaseURL, nil)

	got, found := r.Resolve(short)
	require.True(t, found)
	assert.Equal(t, "https://example.com/page", got)

	again, err := r.Shorten("https://example.com/page")
	require.NoError(t, err)
	assert.Equal(t, short, again)
}

func TestRegistry_LoadEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.dat")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	for name, path := range map[string]string{
		"missing file": filepath.Join(dir, "missing.dat"),
		"empty file":   empty,
	} {
		t.Run(name, func(t *testing.T) {
			st, err := file.NewFileStorage(path)
			require.NoError(t, err)
			log, logs := newObserved()

			r := New(st, testBaseURL, log)
			assert.Zero(t, r.Len())
			assert.Equal(t, 1, logs.FilterMessage("no previous mappings found, starting fresh").Len())
		})
	}
}

func TestRegistry_LoadFailureStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "url_mappings.dat")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0644))
	st, err := file.NewFileStorage(path)
	require.NoError(t, err)
	log, logs := newObserved()

	r := New(st, testBaseURL, log)
	assert.Zero(t, r.Len())

	warned := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warned, 1)
	errField, ok := warned[0].ContextMap()["error"]
	require.True(t, ok)
	assert.Contains(t, errField, "error loading mappings")

	// the next successful shorten overwrites the unreadable file
	short, err := r.Shorten("https://example.com")
	require.NoError(t, err)
	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, []types.Mapping{{OriginalURL: "https://example.com", ShortURL: short}}, loaded)
}

func TestRegistry_LoadSkipsDuplicates(t *testing.T) {
	st := &MockStorage{
		LoadFunc: func() ([]types.Mapping, error) {
			return []types.Mapping{
				{OriginalURL: "https://a.example", ShortURL: "http://short.ly/aaaaaaaa"},
				{OriginalURL: "https://a.example", ShortURL: "http://short.ly/bbbbbbbb"},
				{OriginalURL: "https://c.example", ShortURL: "http://short.ly/aaaaaaaa"},
				{OriginalURL: "https://d.example", ShortURL: "http://short.ly/dddddddd"},
			}, nil
		},
	}
	r := New(st, testBaseURL, nil)

	assert.Equal(t, 2, r.Len())
	got, found := r.Resolve("http://short.ly/aaaaaaaa")
	assert.True(t, found)
	assert.Equal(t, "https://a.example", got)
	_, found = r.Resolve("http://short.ly/bbbbbbbb")
	assert.False(t, found)
}

func TestRegistry_SaveFailureKeepsMapping(t *testing.T) {
	st := &MockStorage{
		SaveFunc: func(entries []types.Mapping) error {
			return errors.New("disk full")
		},
	}
	log, logs := newObserved()
	r := New(st, testBaseURL, log)

	short, err := r.Shorten("https://example.com")
	require.NoError(t, err)

	got, found := r.Resolve(short)
	assert.True(t, found)
	assert.Equal(t, "https://example.com", got)

	var writeErr *StorageWriteError
	require.ErrorAs(t, r.LastSaveError(), &writeErr)
	assert.EqualError(t, writeErr.Err, "disk full")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())

	// recovers once the storage accepts writes again
	st.SaveFunc = nil
	_, err = r.Shorten("https://example.org")
	require.NoError(t, err)
	assert.NoError(t, r.LastSaveError())
	assert.Len(t, st.LastSaved, 2)
}

func TestRegistry_CollisionRetry(t *testing.T) {
	r := New(&MockStorage{}, testBaseURL, nil)
	draws := []string{testBaseURL + "aaaaaaaa", testBaseURL + "aaaaaaaa", testBaseURL + "aaaaaaaa", testBaseURL + "bbbbbbbb"}
	r.generate = func(base string) (string, error) {
		next := draws[0]
		draws = draws[1:]
		return next, nil
	}

	first, err := r.Shorten("https://a.example")
	require.NoError(t, err)
	second, err := r.Shorten("https://b.example")
	require.NoError(t, err)

	assert.Equal(t, testBaseURL+"aaaaaaaa", first)
	assert.Equal(t, testBaseURL+"bbbbbbbb", second)
	assert.Empty(t, draws)
}

func TestRegistry_CollisionExhausted(t *testing.T) {
	st := &MockStorage{}
	r := New(st, testBaseURL, nil)
	r.generate = func(base string) (string, error) {
		return base + "aaaaaaaa", nil
	}

	_, err := r.Shorten("https://a.example")
	require.NoError(t, err)
	_, err = r.Shorten("https://b.example")
	assert.ErrorIs(t, err, ErrShortURLExhausted)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, st.SaveCount)
}

func TestRegistry_GeneratorError(t *testing.T) {
	r := New(&MockStorage{}, testBaseURL, nil)
	r.generate = func(base string) (string, error) {
		return "", errors.New("entropy unavailable")
	}

	_, err := r.Shorten("https://a.example")
	assert.EqualError(t, err, "entropy unavailable")
	assert.Zero(t, r.Len())
}

func TestRegistry_BaseURLNormalized(t *testing.T) {
	r := New(&MockStorage{}, "https://q.ln", nil)
	short, err := r.Shorten("https://example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(short, "https://q.ln/"))
}

func BenchmarkRegistry_Shorten(b *testing.B) {
	r := New(&MockStorage{}, testBaseURL, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Shorten("https://example.com/page")
	}
}
