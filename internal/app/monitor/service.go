package monitor

import (
	"log"
	"time"

	"rustysweeper/internal/domain/model"
	"rustysweeper/internal/infra/daemon"
	"rustysweeper/internal/infra/notify"
	"rustysweeper/internal/infra/system"
)

type Options struct {
	Interval    time.Duration
	Warn        int
	Critical    int
	MountPoints []string // empty means every real mount
	Backend     string
	Once        bool
}

// Service polls mounted filesystems and raises alerts when usage
// crosses the configured thresholds. Alerts are suppressed while the
// severity stays flat or drops; an emergency fires on every tick.
type Service struct {
	opts       Options
	primary    notify.Notifier
	secondary  *notify.I3Nagbar
	flags      *daemon.Flags
	lastAlerts map[string]model.AlertLevel

	// reloadFn re-reads configuration on SIGHUP; seams below are
	// swapped out in tests.
	reloadFn   func() (Options, error)
	checkSome  func([]string) ([]model.DiskStatus, error)
	checkAll   func() ([]model.DiskStatus, error)
	sleepChunk time.Duration
	logf       func(format string, v ...any)
}

func NewService(opts Options, flags *daemon.Flags, reload func() (Options, error)) (*Service, error) {
	primary, err := notify.Select(opts.Backend)
	if err != nil {
		return nil, err
	}

	s := &Service{
		opts:       opts,
		primary:    primary,
		flags:      flags,
		lastAlerts: make(map[string]model.AlertLevel),
		reloadFn:   reload,
		checkSome:  system.CheckMounts,
		checkAll:   system.CheckAll,
		sleepChunk: time.Second,
		logf:       log.Printf,
	}

	if nag := notify.NewI3Nagbar(); nag.Available() {
		s.secondary = &nag
	}
	return s, nil
}

// Run executes the poll loop until the running flag is cleared. With
// Once set a single tick is performed.
func (s *Service) Run() error {
	s.logf("monitor started: interval=%s warn=%d%% critical=%d%% backend=%s",
		s.opts.Interval, s.opts.Warn, s.opts.Critical, s.primary.Name())

	for s.flags.Running.Load() {
		if s.flags.Reload.Swap(false) {
			s.reload()
		}

		start := time.Now()
		s.Tick()

		if s.opts.Once {
			return nil
		}
		s.sleep(s.opts.Interval - time.Since(start))
	}

	s.logf("monitor stopped")
	return nil
}

// Tick checks every configured mount once and dispatches alerts.
func (s *Service) Tick() {
	statuses, err := s.statuses()
	if err != nil {
		s.logf("disk check failed: %v", err)
		return
	}

	for _, st := range statuses {
		level := model.ClassifyPercent(st.Percent, s.opts.Warn, s.opts.Critical)
		if s.shouldNotify(st.MountPoint, level) {
			s.dispatch(level, st)
		}
		s.lastAlerts[st.MountPoint] = level
	}
}

func (s *Service) statuses() ([]model.DiskStatus, error) {
	if len(s.opts.MountPoints) > 0 {
		return s.checkSome(s.opts.MountPoints)
	}
	return s.checkAll()
}

// shouldNotify implements the alert hysteresis: notify on escalation
// only, except an emergency which always fires.
func (s *Service) shouldNotify(mount string, level model.AlertLevel) bool {
	if level == model.AlertEmergency {
		return true
	}
	return level > s.lastAlerts[mount]
}

func (s *Service) dispatch(level model.AlertLevel, st model.DiskStatus) {
	s.logf("alert: %s at %.1f%% (%s)", st.MountPoint, st.Percent, level)

	if err := notify.SendAlert(s.primary, level, st); err != nil {
		s.logf("notifier %s failed: %v", s.primary.Name(), err)
	}
	if level >= model.AlertCritical && s.secondary != nil {
		if err := s.secondary.SendLevel(level, st); err != nil {
			s.logf("notifier %s failed: %v", s.secondary.Name(), err)
		}
	}
}

func (s *Service) reload() {
	if s.reloadFn == nil {
		return
	}
	opts, err := s.reloadFn()
	if err != nil {
		s.logf("reload failed, keeping previous configuration: %v", err)
		return
	}

	primary, err := notify.Select(opts.Backend)
	if err != nil {
		s.logf("reload failed, keeping previous backend: %v", err)
	} else {
		s.primary = primary
	}
	s.opts = opts
	s.logf("configuration reloaded: interval=%s warn=%d%% critical=%d%%",
		s.opts.Interval, s.opts.Warn, s.opts.Critical)
}

// sleep waits for the remainder of the interval in one-second chunks
// so a shutdown signal is observed within a second.
func (s *Service) sleep(d time.Duration) {
	deadline := time.Now().Add(d)
	for s.flags.Running.Load() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		if remaining > s.sleepChunk {
			remaining = s.sleepChunk
		}
		time.Sleep(remaining)
	}
}
