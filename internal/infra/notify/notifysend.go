package notify

import (
	"os"
	"os/exec"

	"rustysweeper/internal/domain/model"
)

// runNotifyCommand is swapped out in tests.
var runNotifyCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

type notifySendNotifier struct{}

// NewNotifySendNotifier shells out to the notify-send binary.
func NewNotifySendNotifier() Notifier { return notifySendNotifier{} }

func (notifySendNotifier) Name() string { return "notify-send" }

func (notifySendNotifier) Available() bool {
	return findNotifySend() != ""
}

func findNotifySend() string {
	for _, p := range []string{"/usr/bin/notify-send", "/bin/notify-send"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p, err := exec.LookPath("notify-send"); err == nil {
		return p
	}
	return ""
}

func (notifySendNotifier) Send(title, body string, urgency model.Urgency) error {
	bin := findNotifySend()
	if bin == "" {
		bin = "notify-send"
	}

	level := "low"
	switch urgency {
	case model.UrgencyNormal:
		level = "normal"
	case model.UrgencyCritical:
		level = "critical"
	}

	args := []string{
		"--urgency", level,
		"--app-name", notifyAppName,
		"--icon", notifyAppIcon,
	}
	if urgency == model.UrgencyCritical {
		args = append(args, "--expire-time=0")
	}
	args = append(args, title, body)

	return runNotifyCommand(bin, args...)
}
