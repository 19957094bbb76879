package notify

import (
	"fmt"
	"os"
	"os/exec"

	"rustysweeper/internal/domain/model"
)

// startNagbarCommand is swapped out in tests. The nagbar blocks until
// dismissed, so it is started and never waited on.
var startNagbarCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// I3Nagbar shows a persistent bar via i3-nagbar for critical and
// emergency alerts on i3 and sway sessions. It is a secondary channel
// layered on top of the primary notifier, never a replacement.
type I3Nagbar struct{}

func NewI3Nagbar() I3Nagbar { return I3Nagbar{} }

func (I3Nagbar) Name() string { return "i3-nagbar" }

func (I3Nagbar) Available() bool {
	if os.Getenv("I3SOCK") == "" && os.Getenv("SWAYSOCK") == "" {
		return false
	}
	_, err := exec.LookPath("i3-nagbar")
	return err == nil
}

func (I3Nagbar) Send(title, body string, urgency model.Urgency) error {
	if urgency != model.UrgencyCritical {
		return nil
	}
	return startNagbar("error", title, body)
}

// SendLevel distinguishes critical (warning bar) from emergency (error
// bar). Levels below critical are ignored.
func (I3Nagbar) SendLevel(level model.AlertLevel, s model.DiskStatus) error {
	if level < model.AlertCritical {
		return nil
	}
	nagType := "warning"
	if level == model.AlertEmergency {
		nagType = "error"
	}
	return startNagbar(nagType, AlertTitle(level), AlertBody(s))
}

func startNagbar(nagType, title, body string) error {
	msg := fmt.Sprintf("%s: %s", title, flattenBody(body))
	return startNagbarCommand("i3-nagbar",
		"-t", nagType,
		"-m", msg,
		"-b", "Open TUI", "rusty-sweeper tui",
		"-b", "Dismiss", "true")
}
