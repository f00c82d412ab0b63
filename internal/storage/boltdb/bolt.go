package boltdb

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/boltdb/bolt"
	t "github.com/repriest/quicklink/internal/storage/types"
)

const (
	MappingsBucketKey = "mappings"
	MetaBucketKey     = "meta"
	versionKey        = "version"
	formatVersion     = 1
)

// OpenTimeout bounds how long Open waits for the file lock held by another process.
var OpenTimeout = time.Second

// BoltStorage keeps mappings in a bolt database file, keyed by original URL.
type BoltStorage struct {
	db *bolt.DB
}

var _ t.Storage = (*BoltStorage)(nil)

// NewBoltStorage fails when dbPath holds something other than a bolt database;
// the file is left untouched.
func NewBoltStorage(dbPath string) (*BoltStorage, error) {
	db, err := bolt.Open(dbPath, 0644, &bolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("unable to open database %s: %w", dbPath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(MetaBucketKey))
		if err != nil {
			return err
		}
		if v := meta.Get([]byte(versionKey)); v != nil {
			n, err := strconv.Atoi(string(v))
			if err != nil || n != formatVersion {
				return fmt.Errorf("unsupported format version %q", v)
			}
			return nil
		}
		return meta.Put([]byte(versionKey), []byte(strconv.Itoa(formatVersion)))
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to initialize database %s: %w", dbPath, err)
	}
	return &BoltStorage{db: db}, nil
}

func (s *BoltStorage) Load() ([]t.Mapping, error) {
	var entries []t.Mapping
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(MappingsBucketKey))
		if b == nil {
			return t.ErrNoData
		}
		return b.ForEach(func(k, v []byte) error {
			entries = append(entries, t.Mapping{OriginalURL: string(k), ShortURL: string(v)})
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, t.ErrNoData) {
			return nil, err
		}
		return nil, fmt.Errorf("unable to read mappings from database: %w", err)
	}
	if len(entries) == 0 {
		return nil, t.ErrNoData
	}
	return entries, nil
}

func (s *BoltStorage) Save(entries []t.Mapping) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(MappingsBucketKey)) != nil {
			if err := tx.DeleteBucket([]byte(MappingsBucketKey)); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket([]byte(MappingsBucketKey))
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := b.Put([]byte(e.OriginalURL), []byte(e.ShortURL)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to write mappings to database: %w", err)
	}
	return nil
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}
