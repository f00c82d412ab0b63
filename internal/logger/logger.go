package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide logger. Only Initialize modifies it; until then it
// is a no-op logger.
var Log *zap.Logger = zap.NewNop()

// Initialize builds a production logger at the given level. Output goes to
// stderr so stdout stays free for the interactive menu.
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl
	return nil
}

// Sync flushes buffered log entries; errors from syncing a terminal are ignored.
func Sync() {
	_ = Log.Sync()
}
