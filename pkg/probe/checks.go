package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"

	"uivox/pkg/db"
	"uivox/pkg/sink"
)

// Database verifies the settings store answers. Critical: without it the
// replacement table and persisted settings are gone.
func Database(database *db.DB) Probe {
	return Probe{
		Name:     "database",
		Critical: true,
		Check: func(ctx context.Context) error {
			return database.PingContext(ctx)
		},
	}
}

// DataDir verifies the data directory is writable.
func DataDir(dir string) Probe {
	return Probe{
		Name:     "data-dir",
		Critical: true,
		Check: func(ctx context.Context) error {
			path := filepath.Join(dir, ".probe")
			if err := os.WriteFile(path, []byte("ok"), 0o644); err != nil {
				return fmt.Errorf("write test file: %w", err)
			}
			return os.Remove(path)
		},
	}
}

// Clipboard verifies the system clipboard is reachable. Non-critical: the
// speech channel still works without it.
func Clipboard() Probe {
	return Probe{
		Name: "clipboard",
		Check: func(ctx context.Context) error {
			if clipboard.Unsupported {
				return fmt.Errorf("clipboard not supported on this platform")
			}
			_, err := clipboard.ReadAll()
			return err
		},
	}
}

// Speech exercises the speech engine with an empty utterance. Non-critical:
// a failed engine degrades to the logging stub.
func Speech(s sink.Sink) Probe {
	return Probe{
		Name: "speech",
		Check: func(ctx context.Context) error {
			// Empty text initializes the engine without audible output.
			return s.Deliver("")
		},
	}
}
