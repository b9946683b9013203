package config

import "time"

// CLIConfig is the configuration for complitracker-cli.
type CLIConfig struct {
	API     APISection     `koanf:"api" yaml:"api" json:"api"`
	Output  string         `koanf:"output" yaml:"output" json:"output"` // table, json, yaml
	Store   StoreSection   `koanf:"store" yaml:"store" json:"store"`
	Log     LogSection     `koanf:"log" yaml:"log" json:"log"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics" json:"metrics"`
	Shell   ShellSection   `koanf:"shell" yaml:"shell" json:"shell"`

	// Source is the file the configuration was read from, if any.
	Source string `koanf:"-" yaml:"-" json:"-"`
}

// APISection configures the backend connection.
type APISection struct {
	URL         string        `koanf:"url" yaml:"url" json:"url"`
	Timeout     time.Duration `koanf:"timeout" yaml:"timeout" json:"timeout"`
	CAFile      string        `koanf:"ca_file" yaml:"ca_file,omitempty" json:"ca_file,omitempty"`
	CertFile    string        `koanf:"cert_file" yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile     string        `koanf:"key_file" yaml:"key_file,omitempty" json:"key_file,omitempty"`
	Insecure    bool          `koanf:"insecure" yaml:"insecure,omitempty" json:"insecure,omitempty"`
	RateLimit   float64       `koanf:"rate_limit" yaml:"rate_limit" json:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst   int           `koanf:"rate_burst" yaml:"rate_burst" json:"rate_burst"`
	TokenLeeway time.Duration `koanf:"token_leeway" yaml:"token_leeway" json:"token_leeway"`
}

// StoreSection configures where the session token is kept.
type StoreSection struct {
	Backend       string `koanf:"backend" yaml:"backend" json:"backend"` // file, badger, redis, memory
	Dir           string `koanf:"dir" yaml:"dir" json:"dir"`
	Encrypt       bool   `koanf:"encrypt" yaml:"encrypt" json:"encrypt"`
	KeyFile       string `koanf:"key_file" yaml:"key_file,omitempty" json:"key_file,omitempty"`
	RedisAddr     string `koanf:"redis_addr" yaml:"redis_addr,omitempty" json:"redis_addr,omitempty"`
	RedisPassword string `koanf:"redis_password" yaml:"redis_password,omitempty" json:"redis_password,omitempty"`
	RedisDB       int    `koanf:"redis_db" yaml:"redis_db,omitempty" json:"redis_db,omitempty"`
	RedisPrefix   string `koanf:"redis_prefix" yaml:"redis_prefix,omitempty" json:"redis_prefix,omitempty"`
}

// LogSection configures diagnostics on stderr.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}

// MetricsSection configures the shell's /metrics endpoint.
type MetricsSection struct {
	Addr string `koanf:"addr" yaml:"addr,omitempty" json:"addr,omitempty"` // empty disables
}

// ShellSection configures the interactive shell.
type ShellSection struct {
	DefaultRoute string `koanf:"default_route" yaml:"default_route" json:"default_route"`
	HistoryFile  string `koanf:"history_file" yaml:"history_file,omitempty" json:"history_file,omitempty"`
	HistorySize  int    `koanf:"history_size" yaml:"history_size" json:"history_size"`
}

// StoreKeyFile returns the encryption key path, defaulting to a file in
// the store directory.
func (c *CLIConfig) StoreKeyFile() string {
	if c.Store.KeyFile != "" {
		return c.Store.KeyFile
	}
	return joinDir(c.Store.Dir, "store.key")
}

// HistoryPath returns the shell history path, defaulting to a file in the
// store directory.
func (c *CLIConfig) HistoryPath() string {
	if c.Shell.HistoryFile != "" {
		return c.Shell.HistoryFile
	}
	return joinDir(c.Store.Dir, "history")
}
