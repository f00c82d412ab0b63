// Package registry holds the mapping between original URLs and the short URLs
// issued for them, and keeps it in sync with a storage backend.
package registry

import (
	"errors"

	baseurl "github.com/repriest/quicklink/internal/app/url"
	t "github.com/repriest/quicklink/internal/storage/types"
	"go.uber.org/zap"
)

// maxGenerateAttempts bounds the redraws when a new short URL is already issued.
const maxGenerateAttempts = 5

// Registry is not safe for concurrent use.
type Registry struct {
	storage t.Storage
	baseURL string
	log     *zap.Logger

	entries    []t.Mapping
	byOriginal map[string]int
	byShort    map[string]int

	lastSaveErr error
	generate    func(base string) (string, error)
}

// New builds a registry over st and loads whatever st holds. Load failures
// are logged and leave the registry empty. A nil log disables logging.
func New(st t.Storage, baseURL string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		storage:    st,
		baseURL:    baseurl.Normalize(baseURL),
		log:        log,
		byOriginal: make(map[string]int),
		byShort:    make(map[string]int),
		generate:   baseurl.NewShortURL,
	}
	r.load()
	return r
}

func (r *Registry) load() {
	entries, err := r.storage.Load()
	if err != nil {
		if errors.Is(err, t.ErrNoData) {
			r.log.Info("no previous mappings found, starting fresh")
			return
		}
		r.log.Warn("starting with an empty registry", zap.Error(&StorageReadError{Err: err}))
		return
	}

	for _, e := range entries {
		if _, ok := r.byOriginal[e.OriginalURL]; ok {
			r.log.Warn("skipping duplicate original url", zap.String("original_url", e.OriginalURL))
			continue
		}
		if _, ok := r.byShort[e.ShortURL]; ok {
			r.log.Warn("skipping duplicate short url", zap.String("short_url", e.ShortURL))
			continue
		}
		r.insert(e)
	}
	r.log.Info("mappings loaded", zap.Int("count", len(r.entries)))
}

func (r *Registry) insert(e t.Mapping) {
	r.entries = append(r.entries, e)
	r.byOriginal[e.OriginalURL] = len(r.entries) - 1
	r.byShort[e.ShortURL] = len(r.entries) - 1
}

// Shorten returns the short URL for originalURL, issuing and persisting a new
// one if originalURL was not seen before. A failed save is logged and kept in
// LastSaveError; the new mapping stays in memory and is still returned.
func (r *Registry) Shorten(originalURL string) (string, error) {
	if err := baseurl.Validate(originalURL); err != nil {
		return "", &InvalidURLError{URL: originalURL, Err: err}
	}
	if i, ok := r.byOriginal[originalURL]; ok {
		return r.entries[i].ShortURL, nil
	}

	shortURL, err := r.newShortURL()
	if err != nil {
		return "", err
	}

	r.insert(t.Mapping{OriginalURL: originalURL, ShortURL: shortURL})
	r.log.Debug("url shortened", zap.String("original_url", originalURL), zap.String("short_url", shortURL))
	r.save()
	return shortURL, nil
}

func (r *Registry) newShortURL() (string, error) {
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		shortURL, err := r.generate(r.baseURL)
		if err != nil {
			return "", err
		}
		if _, taken := r.byShort[shortURL]; !taken {
			return shortURL, nil
		}
		r.log.Debug("short url collision", zap.String("short_url", shortURL), zap.Int("attempt", attempt))
	}
	return "", ErrShortURLExhausted
}

func (r *Registry) save() {
	if err := r.storage.Save(r.Mappings()); err != nil {
		r.lastSaveErr = &StorageWriteError{Err: err}
		r.log.Error("mappings not persisted", zap.Error(r.lastSaveErr))
		return
	}
	r.lastSaveErr = nil
}

// Resolve returns the original URL behind shortURL. found is false when
// shortURL was never issued.
func (r *Registry) Resolve(shortURL string) (originalURL string, found bool) {
	i, ok := r.byShort[shortURL]
	if !ok {
		return "", false
	}
	return r.entries[i].OriginalURL, true
}

// Len returns the number of mappings.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Mappings returns a copy of all mappings in insertion order.
func (r *Registry) Mappings() []t.Mapping {
	out := make([]t.Mapping, len(r.entries))
	copy(out, r.entries)
	return out
}

// LastSaveError returns the error of the most recent save, or nil if it succeeded.
func (r *Registry) LastSaveError() error {
	return r.lastSaveErr
}
