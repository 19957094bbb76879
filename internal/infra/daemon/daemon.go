package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	godaemon "github.com/sevlyar/go-daemon"
)

// ErrAlreadyRunning is returned when a live monitor already owns the
// PID file.
var ErrAlreadyRunning = errors.New("monitor daemon already running")

// Daemonize forks the process into the background. In the parent it
// returns (pid, false, nil, nil) with the child's PID; in the child it
// returns (0, true, release, nil) and the caller must invoke release
// when done.
// A stale PID file left by a dead process is reclaimed.
func Daemonize(paths Paths) (pid int, child bool, release func(), err error) {
	if pid, alive := readPIDFile(paths.PIDFile); alive {
		return pid, false, nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	}
	_ = os.Remove(paths.PIDFile)

	ctx := &godaemon.Context{
		PidFileName: paths.PIDFile,
		PidFilePerm: 0o644,
		LogFileName: paths.LogFile,
		LogFilePerm: 0o640,
		WorkDir:     "/",
		Umask:       0o27,
	}

	proc, err := ctx.Reborn()
	if err != nil {
		if errors.Is(err, godaemon.ErrWouldBlock) {
			return 0, false, nil, ErrAlreadyRunning
		}
		return 0, false, nil, fmt.Errorf("daemonize: %w", err)
	}
	if proc != nil {
		return proc.Pid, false, nil, nil
	}
	return 0, true, func() { _ = ctx.Release() }, nil
}

// Status reports the running daemon's PID, or 0 if none is alive.
func Status(paths Paths) int {
	if pid, alive := readPIDFile(paths.PIDFile); alive {
		return pid
	}
	return 0
}

// Stop terminates a running daemon. SIGTERM first; if the process has
// not exited after a grace period it is killed. Returns true if a
// daemon was found and stopped.
func Stop(paths Paths) (bool, error) {
	pid, alive := readPIDFile(paths.PIDFile)
	if !alive {
		_ = os.Remove(paths.PIDFile)
		return false, nil
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return false, fmt.Errorf("signal pid %d: %w", pid, err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(paths.PIDFile)
			return true, nil
		}
		time.Sleep(50 * time.Millisecond)
	}

	_ = syscall.Kill(pid, syscall.SIGKILL)
	_ = os.Remove(paths.PIDFile)
	return true, nil
}

func readPIDFile(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, processAlive(pid)
}

func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
