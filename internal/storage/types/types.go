package types

import "errors"

// Mapping pairs an original URL with the short URL issued for it.
type Mapping struct {
	OriginalURL string `json:"original_url"`
	ShortURL    string `json:"short_url"`
}

// Storage is the durable home of the registry. Save always replaces the whole
// stored set with entries.
type Storage interface {
	Load() ([]Mapping, error)
	Save(entries []Mapping) error
	Close() error
}

var (
	// ErrNoData is returned by Load when nothing was ever stored.
	ErrNoData = errors.New("no stored mappings")
	// ErrShortURLTaken is returned by Save when a short URL is already bound to another original URL.
	ErrShortURLTaken = errors.New("short url already taken")
)
