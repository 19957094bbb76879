package daemon

import (
	"os"
	"path/filepath"
)

// Paths holds the runtime files a background monitor needs.
type Paths struct {
	PIDFile string
	LogFile string
}

// ResolvePaths places the PID file in $XDG_RUNTIME_DIR (falling back to
// /tmp) and the log under $XDG_STATE_HOME/rusty-sweeper. The log
// directory is created if missing.
func ResolvePaths() (Paths, error) {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/tmp"
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		stateHome = filepath.Join(home, ".local", "state")
	}

	logDir := filepath.Join(stateHome, "rusty-sweeper")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return Paths{}, err
	}

	return Paths{
		PIDFile: filepath.Join(runtimeDir, "rusty-sweeper.pid"),
		LogFile: filepath.Join(logDir, "monitor.log"),
	}, nil
}
