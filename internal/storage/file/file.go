package file

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	t "github.com/repriest/quicklink/internal/storage/types"
)

const (
	formatName    = "quicklink"
	formatVersion = 1
)

type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// FileStorage keeps mappings in a single line-delimited JSON file. The first
// line is a header carrying the format version, every following line is one mapping.
type FileStorage struct {
	filePath string
}

func NewFileStorage(filePath string) (*FileStorage, error) {
	if filePath == "" {
		return nil, errors.New("empty file storage path")
	}
	return &FileStorage{filePath: filePath}, nil
}

func (s *FileStorage) Path() string {
	return s.filePath
}

func (s *FileStorage) Load() ([]t.Mapping, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, t.ErrNoData
		}
		return nil, fmt.Errorf("failed to read file %s: %w", s.filePath, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, t.ErrNoData
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	// header
	if !sc.Scan() {
		return nil, fmt.Errorf("failed to read header of %s: %w", s.filePath, sc.Err())
	}
	var h header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return nil, fmt.Errorf("failed to parse header of %s: %w", s.filePath, err)
	}
	if h.Format != formatName {
		return nil, fmt.Errorf("unknown format %q in %s", h.Format, s.filePath)
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d in %s", h.Version, s.filePath)
	}

	// parse remaining lines to []Mapping
	entries := []t.Mapping{}
	line := 1
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var entry t.Mapping
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse line %d of %s: %w", line, s.filePath, err)
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.filePath, err)
	}
	return entries, nil
}

// Save writes entries to a temporary file next to the target and renames it
// into place, so readers never observe a half-written file.
func (s *FileStorage) Save(entries []t.Mapping) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(header{Format: formatName, Version: formatVersion}); err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
	}

	dir := filepath.Dir(s.filePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		return fmt.Errorf("failed to replace file %s: %w", s.filePath, err)
	}
	return nil
}

func (s *FileStorage) Close() error {
	return nil
}
