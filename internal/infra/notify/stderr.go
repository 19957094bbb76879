package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rustysweeper/internal/domain/model"
)

type stderrNotifier struct {
	w io.Writer
}

// NewStderrNotifier writes alerts to standard error. It is the terminal
// fallback when no desktop notification service is reachable.
func NewStderrNotifier() Notifier { return &stderrNotifier{w: os.Stderr} }

func (*stderrNotifier) Name() string    { return "stderr" }
func (*stderrNotifier) Available() bool { return true }

func (n *stderrNotifier) Send(title, body string, urgency model.Urgency) error {
	tag := "[INFO]"
	switch urgency {
	case model.UrgencyNormal:
		tag = "[WARNING]"
	case model.UrgencyCritical:
		tag = "[CRITICAL]"
	}

	fmt.Fprintf(n.w, "\n%s %s\n", tag, title)
	fmt.Fprintf(n.w, "%s\n", strings.Repeat("-", 60))
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(n.w, "  %s\n", line)
	}
	fmt.Fprintln(n.w)
	return nil
}
