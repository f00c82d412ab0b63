package storage

import (
	"fmt"

	"github.com/repriest/quicklink/internal/config"
	"github.com/repriest/quicklink/internal/storage/boltdb"
	"github.com/repriest/quicklink/internal/storage/file"
	"github.com/repriest/quicklink/internal/storage/memory"
	"github.com/repriest/quicklink/internal/storage/postgres"
	t "github.com/repriest/quicklink/internal/storage/types"
)

// New opens the storage backend selected by cfg.StorageKind.
func New(cfg *config.Config) (t.Storage, error) {
	switch cfg.StorageKind {
	case config.StorageFile:
		return file.NewFileStorage(cfg.FileStoragePath)
	case config.StorageBolt:
		return boltdb.NewBoltStorage(cfg.FileStoragePath)
	case config.StoragePostgres:
		return postgres.NewPgStorage(cfg.DatabaseDSN)
	case config.StorageMemory:
		return memory.NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unknown storage kind: %s", cfg.StorageKind)
	}
}
