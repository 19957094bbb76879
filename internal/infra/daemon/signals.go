package daemon

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Flags carries the loop-control state flipped by signals. The monitor
// loop samples Running each tick and Reload at the top of each cycle.
type Flags struct {
	Running atomic.Bool
	Reload  atomic.Bool
}

func NewFlags() *Flags {
	f := &Flags{}
	f.Running.Store(true)
	return f
}

// HandleSignal applies one signal to the flags. SIGTERM and SIGINT stop
// the loop; SIGHUP requests a configuration reload.
func HandleSignal(sig os.Signal, flags *Flags) {
	switch sig {
	case syscall.SIGTERM, syscall.SIGINT:
		flags.Running.Store(false)
	case syscall.SIGHUP:
		flags.Reload.Store(true)
	}
}

// Watch installs the signal handlers and dispatches them to flags until
// stop is closed.
func Watch(flags *Flags, stop <-chan struct{}) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case sig := <-ch:
				HandleSignal(sig, flags)
			case <-stop:
				return
			}
		}
	}()
}
