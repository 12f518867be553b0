package debug

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	file    *os.File
	out     io.Writer
	mu      sync.Mutex
	enabled bool

	root = log.NewWithOptions(sink{}, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           log.DebugLevel,
	})
)

// sink forwards writes to the current debug file, or drops them while
// logging is disabled. Loggers built before Enable pick up the file too.
type sink struct{}

func (sink) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || out == nil {
		return len(p), nil
	}
	n, err := out.Write(p)
	if file != nil {
		file.Sync() // flush immediately so we see logs even on crash
	}
	return n, err
}

// DefaultPath returns ~/.config/go-midimix/debug.log
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midimix", "debug.log"), nil
}

// Enable starts debug logging to path (truncated). An empty path uses
// DefaultPath.
func Enable(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	mu.Lock()
	if enabled {
		mu.Unlock()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		mu.Unlock()
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		mu.Unlock()
		return err
	}

	file = f
	out = f
	enabled = true
	mu.Unlock()

	root.Info("=== Debug logging started ===")
	return nil
}

// EnableWriter routes debug logging to w. Used by tests and by the
// miditest tool, which logs to stderr.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	out = w
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	out = nil
	enabled = false
}

// Logger returns a logger tagged with category
func Logger(category string) *log.Logger {
	return root.WithPrefix(category)
}
