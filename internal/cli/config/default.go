package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultAPIURL       = "http://localhost:8080/api"
	DefaultAPITimeout   = 30 * time.Second
	DefaultRateLimit    = 10
	DefaultRateBurst    = 5
	DefaultOutput       = "table"
	DefaultStoreBackend = "file"
	DefaultDirName      = ".complitracker"
	DefaultConfigName   = "cli.yaml"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultRoute        = "/dashboard"
	DefaultHistorySize  = 500
)

// DefaultDir returns ~/.complitracker, or a relative directory when the
// home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), DefaultConfigName)
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		API: APISection{
			URL:       DefaultAPIURL,
			Timeout:   DefaultAPITimeout,
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
		},
		Output: DefaultOutput,
		Store: StoreSection{
			Backend: DefaultStoreBackend,
			Dir:     DefaultDir(),
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Shell: ShellSection{
			DefaultRoute: DefaultRoute,
			HistorySize:  DefaultHistorySize,
		},
	}
}

func joinDir(dir, name string) string {
	if dir == "" {
		dir = DefaultDir()
	}
	return filepath.Join(dir, name)
}
