package main

import (
	"io"
	"log"
	"os"

	"github.com/repriest/quicklink/internal/config"
	"github.com/repriest/quicklink/internal/logger"
	"github.com/repriest/quicklink/internal/registry"
	"github.com/repriest/quicklink/internal/shell"
	"github.com/repriest/quicklink/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	cfg, err := config.NewConfig(args)
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()

	st, err := storage.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Log.Error("failed to close storage", zap.Error(err))
		}
	}()
	logger.Log.Debug("storage opened",
		zap.String("kind", cfg.StorageKind),
		zap.String("path", cfg.FileStoragePath),
	)

	reg := registry.New(st, cfg.BaseURL, logger.Log)
	return shell.New(reg, in, out).Run()
}
