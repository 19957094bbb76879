package notify

import (
	"github.com/godbus/dbus/v5"

	"rustysweeper/internal/domain/model"
)

const (
	notifyObject   = "org.freedesktop.Notifications"
	notifyPath     = "/org/freedesktop/Notifications"
	notifyMethod   = "org.freedesktop.Notifications.Notify"
	notifyAppName  = "Rusty Sweeper"
	notifyAppIcon  = "drive-harddisk"
	expireNever    = int32(0)
	expireNormalMS = int32(10000)
	expireLowMS    = int32(5000)
)

// sessionBusFn is swapped out in tests.
var sessionBusFn = dbus.SessionBus

type dbusNotifier struct{}

// NewDBusNotifier talks to org.freedesktop.Notifications on the session
// bus.
func NewDBusNotifier() Notifier { return dbusNotifier{} }

func (dbusNotifier) Name() string { return "dbus" }

func (dbusNotifier) Available() bool {
	conn, err := sessionBusFn()
	if err != nil {
		return false
	}
	var names []string
	err = conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == notifyObject {
			return true
		}
	}
	return false
}

func (dbusNotifier) Send(title, body string, urgency model.Urgency) error {
	conn, err := sessionBusFn()
	if err != nil {
		return err
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(urgency)),
	}

	timeout := expireLowMS
	switch urgency {
	case model.UrgencyCritical:
		timeout = expireNever
	case model.UrgencyNormal:
		timeout = expireNormalMS
	}

	obj := conn.Object(notifyObject, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyMethod, 0,
		notifyAppName, uint32(0), notifyAppIcon, title, body,
		[]string{}, hints, timeout)
	return call.Err
}
