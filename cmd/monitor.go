package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rustysweeper/internal/app/common"
	"rustysweeper/internal/app/monitor"
	"rustysweeper/internal/infra/config"
	"rustysweeper/internal/infra/daemon"
)

var monitorFlags struct {
	background bool
	interval   int
	warn       int
	critical   int
	mounts     []string
	once       bool
	backend    string
	stop       bool
	status     bool
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch filesystem usage and alert on thresholds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		paths, err := daemon.ResolvePaths()
		if err != nil {
			return err
		}

		switch {
		case monitorFlags.stop:
			return stopMonitor(paths)
		case monitorFlags.status:
			return monitorStatus(paths)
		}

		monOpts := monitorOptions(cmd, app.Config)
		if monOpts.Warn >= monOpts.Critical {
			return fmt.Errorf("%w: warn threshold %d%% must be below critical %d%%",
				config.ErrInvalid, monOpts.Warn, monOpts.Critical)
		}

		if monitorFlags.background {
			pid, child, release, err := daemon.Daemonize(paths)
			if err != nil {
				return err
			}
			if !child {
				fmt.Printf("Monitor started in background (pid %d), log at %s\n", pid, paths.LogFile)
				return nil
			}
			defer release()
		}

		flags := daemon.NewFlags()
		stop := make(chan struct{})
		defer close(stop)
		daemon.Watch(flags, stop)

		svc, err := monitor.NewService(monOpts, flags, func() (monitor.Options, error) {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return monitor.Options{}, err
			}
			reloaded := monitorOptions(cmd, cfg)
			reloaded.Once = monOpts.Once
			return reloaded, nil
		})
		if err != nil {
			return err
		}
		return svc.Run()
	},
}

func init() {
	monitorCmd.Flags().BoolVarP(&monitorFlags.background, "daemon", "d", false, "Run in the background")
	monitorCmd.Flags().IntVarP(&monitorFlags.interval, "interval", "i", 300, "Seconds between checks")
	monitorCmd.Flags().IntVarP(&monitorFlags.warn, "warn", "w", 80, "Warning threshold percent")
	monitorCmd.Flags().IntVarP(&monitorFlags.critical, "critical", "C", 90, "Critical threshold percent")
	monitorCmd.Flags().StringSliceVarP(&monitorFlags.mounts, "mount", "m", nil, "Mount points to watch (default: all real mounts)")
	monitorCmd.Flags().BoolVar(&monitorFlags.once, "once", false, "Check once and exit")
	monitorCmd.Flags().StringVar(&monitorFlags.backend, "notify", "auto", "Notification backend: auto, dbus, notify-send, i3-nagbar or stderr")
	monitorCmd.Flags().BoolVar(&monitorFlags.stop, "stop", false, "Stop a running background monitor")
	monitorCmd.Flags().BoolVar(&monitorFlags.status, "status", false, "Report whether a background monitor is running")
}

// monitorOptions merges configuration and flags; an explicitly set flag
// wins over the config file.
func monitorOptions(cmd *cobra.Command, cfg *config.Config) monitor.Options {
	mon := cfg.Monitor

	interval := mon.Interval
	if cmd.Flags().Changed("interval") {
		interval = monitorFlags.interval
	}
	warn := mon.WarnThreshold
	if cmd.Flags().Changed("warn") {
		warn = monitorFlags.warn
	}
	critical := mon.CriticalThreshold
	if cmd.Flags().Changed("critical") {
		critical = monitorFlags.critical
	}
	mounts := mon.MountPoints
	if cmd.Flags().Changed("mount") {
		mounts = monitorFlags.mounts
	}
	backend := mon.NotificationBackend
	if cmd.Flags().Changed("notify") || backend == "" {
		backend = monitorFlags.backend
	}

	return monitor.Options{
		Interval:    time.Duration(interval) * time.Second,
		Warn:        warn,
		Critical:    critical,
		MountPoints: mounts,
		Backend:     backend,
		Once:        monitorFlags.once,
	}
}

func stopMonitor(paths daemon.Paths) error {
	stopped, err := daemon.Stop(paths)
	if err != nil {
		return err
	}
	if !stopped {
		fmt.Println("No monitor is running.")
		return nil
	}
	fmt.Println("Monitor stopped.")
	return nil
}

func monitorStatus(paths daemon.Paths) error {
	if pid := daemon.Status(paths); pid != 0 {
		fmt.Printf("Monitor running (pid %d)\n", pid)
		return nil
	}
	fmt.Println("Monitor is not running.")
	return nil
}
