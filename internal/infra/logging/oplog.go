package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rustysweeper/internal/domain/model"
)

// Logger records destructive actions so a user can audit what was
// deleted and when.
type Logger interface {
	Log(ctx context.Context, entry model.OperationLogEntry) error
}

type noopLogger struct{}

func (n noopLogger) Log(context.Context, model.OperationLogEntry) error { return nil }

func NewNoopLogger() Logger { return noopLogger{} }

// operationLogger appends one JSON record per line to the state file.
// The file is opened on the first record, not at construction, so a
// run that deletes nothing leaves no trace on disk.
type operationLogger struct {
	path string
	now  func() time.Time

	mu  sync.Mutex
	enc *json.Encoder
	f   *os.File
}

// NewOperationLogger logs to $XDG_STATE_HOME/rusty-sweeper/operations.log.
// With disabled set it returns a logger that discards everything.
func NewOperationLogger(_ context.Context, disabled bool) (Logger, error) {
	if disabled {
		return noopLogger{}, nil
	}
	path, err := statePath()
	if err != nil {
		return nil, err
	}
	return &operationLogger{path: path, now: time.Now}, nil
}

// statePath resolves the log location per the XDG base directory spec,
// falling back to ~/.local/state when XDG_STATE_HOME is unset.
func statePath() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "rusty-sweeper", "operations.log"), nil
}

func (l *operationLogger) Log(ctx context.Context, entry model.OperationLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := l.stamp(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.enc == nil {
		if err := l.open(); err != nil {
			return err
		}
	}
	return l.enc.Encode(rec)
}

// stamp fills in the fields the call sites leave to the logger.
func (l *operationLogger) stamp(entry model.OperationLogEntry) model.OperationLogEntry {
	if entry.Timestamp == "" {
		entry.Timestamp = l.now().UTC().Format(time.RFC3339)
	}
	if entry.Result == "" {
		entry.Result = "success"
	}
	return entry
}

func (l *operationLogger) open() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	l.f = f
	l.enc = json.NewEncoder(f)
	return nil
}

// Close releases the log file. Safe to call on a logger that never
// wrote anything.
func (l *operationLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f, l.enc = nil, nil
	return err
}
