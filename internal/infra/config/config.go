package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrInvalid marks configuration that parsed but fails validation. main
// maps it to the configuration-error exit code.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Monitor MonitorConfig `toml:"monitor"`
	Cleaner CleanerConfig `toml:"cleaner"`
	Scanner ScannerConfig `toml:"scanner"`
	TUI     TUIConfig     `toml:"tui"`
}

type MonitorConfig struct {
	Interval            int      `toml:"interval"`
	WarnThreshold       int      `toml:"warn_threshold"`
	CriticalThreshold   int      `toml:"critical_threshold"`
	MountPoints         []string `toml:"mount_points"`
	NotificationBackend string   `toml:"notification_backend"`
}

type CleanerConfig struct {
	ProjectTypes    []string `toml:"project_types"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	MinAgeDays      int      `toml:"min_age_days"`
	MaxDepth        int      `toml:"max_depth"`
	ParallelJobs    int      `toml:"parallel_jobs"`
}

type ScannerConfig struct {
	ParallelThreads  int  `toml:"parallel_threads"`
	CrossFilesystems bool `toml:"cross_filesystems"`
	UseCache         bool `toml:"use_cache"`
	CacheTTL         int  `toml:"cache_ttl"`
}

type TUIConfig struct {
	ColorScheme       string `toml:"color_scheme"`
	ShowHidden        bool   `toml:"show_hidden"`
	DefaultSort       string `toml:"default_sort"`
	LargeDirThreshold int64  `toml:"large_dir_threshold"`
}

func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Interval:            300,
			WarnThreshold:       80,
			CriticalThreshold:   90,
			NotificationBackend: "auto",
		},
		Cleaner: CleanerConfig{
			ProjectTypes:    nil,
			ExcludePatterns: []string{".git"},
			MinAgeDays:      0,
			MaxDepth:        10,
			ParallelJobs:    4,
		},
		Scanner: ScannerConfig{
			ParallelThreads:  0,
			CrossFilesystems: false,
			UseCache:         false,
			CacheTTL:         3600,
		},
		TUI: TUIConfig{
			ColorScheme:       "auto",
			ShowHidden:        false,
			DefaultSort:       "size",
			LargeDirThreshold: 1 << 30,
		},
	}
}

// Load resolves the configuration in precedence order: an explicit path
// (which must exist), $XDG_CONFIG_HOME/rusty-sweeper/config.toml,
// /etc/rusty-sweeper/config.toml, then built-in defaults.
func Load(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return loadFile(explicitPath)
	}
	if path := findConfigFile(); path != "" {
		return loadFile(path)
	}
	return Default(), nil
}

func findConfigFile() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		p := filepath.Join(configHome, "rusty-sweeper", "config.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := "/etc/rusty-sweeper/config.toml"
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func loadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w: %v", path, ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Monitor.WarnThreshold < 0 || c.Monitor.WarnThreshold > 100 {
		return fmt.Errorf("%w: warn_threshold must be 0-100", ErrInvalid)
	}
	if c.Monitor.CriticalThreshold < 0 || c.Monitor.CriticalThreshold > 100 {
		return fmt.Errorf("%w: critical_threshold must be 0-100", ErrInvalid)
	}
	if c.Monitor.WarnThreshold >= c.Monitor.CriticalThreshold {
		return fmt.Errorf("%w: warn_threshold must be less than critical_threshold", ErrInvalid)
	}
	if c.Monitor.Interval < 1 {
		return fmt.Errorf("%w: interval must be at least 1 second", ErrInvalid)
	}
	return nil
}
