package notify

import (
	"fmt"
	"strings"

	"rustysweeper/internal/domain/model"
)

// Notifier delivers desktop or terminal alerts about disk usage.
type Notifier interface {
	Name() string
	Available() bool
	Send(title, body string, urgency model.Urgency) error
}

// AlertTitle returns the notification title for an alert level.
func AlertTitle(level model.AlertLevel) string {
	switch level {
	case model.AlertWarning:
		return "⚠️ Disk Usage Warning"
	case model.AlertCritical:
		return "🔴 Disk Usage Critical"
	case model.AlertEmergency:
		return "🚨 DISK SPACE EMERGENCY"
	default:
		return "Disk Usage Normal"
	}
}

// AlertBody formats the three-line notification body for a disk status.
func AlertBody(s model.DiskStatus) string {
	return fmt.Sprintf("%s is %.0f%% full\nUsed: %s of %s\nAvailable: %s",
		s.MountPoint, s.Percent, s.UsedHuman(), s.TotalHuman(), s.AvailableHuman())
}

// SendAlert formats and delivers an alert for the given level and status.
func SendAlert(n Notifier, level model.AlertLevel, s model.DiskStatus) error {
	return n.Send(AlertTitle(level), AlertBody(s), level.Urgency())
}

// Select picks the notification backend. "auto" walks the chain in
// order of preference and falls back to stderr, which is always
// available.
func Select(preference string) (Notifier, error) {
	switch preference {
	case "dbus":
		return NewDBusNotifier(), nil
	case "notify-send":
		return NewNotifySendNotifier(), nil
	case "i3-nagbar":
		return NewI3Nagbar(), nil
	case "stderr":
		return NewStderrNotifier(), nil
	case "", "auto":
		for _, n := range []Notifier{NewDBusNotifier(), NewNotifySendNotifier()} {
			if n.Available() {
				return n, nil
			}
		}
		return NewStderrNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", preference)
	}
}

func flattenBody(body string) string {
	return strings.ReplaceAll(body, "\n", " | ")
}
