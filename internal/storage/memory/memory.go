package memory

import (
	t "github.com/repriest/quicklink/internal/storage/types"
)

// MemoryStorage keeps the last saved set in process memory only.
type MemoryStorage struct {
	entries []t.Mapping
	saves   int
}

func NewMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{}, nil
}

func (s *MemoryStorage) Load() ([]t.Mapping, error) {
	if len(s.entries) == 0 {
		return nil, t.ErrNoData
	}
	out := make([]t.Mapping, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStorage) Save(entries []t.Mapping) error {
	s.entries = make([]t.Mapping, len(entries))
	copy(s.entries, entries)
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStorage) Saves() int {
	return s.saves
}

func (s *MemoryStorage) Close() error {
	return nil
}
