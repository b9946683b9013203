package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/complitracker/complitracker-go/internal/infra/confloader"
)

// Load builds the configuration from defaults, the YAML file, COMPLITRACKER_*
// environment variables and overrides, in increasing precedence. An empty
// path reads the default file if it exists; an explicit path must exist.
// overrides uses dotted keys such as "api.url".
func Load(path string, overrides map[string]any) (*CLIConfig, error) {
	cfg := Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if path == "" {
		opts = append(opts, confloader.WithOptionalConfigFile(DefaultConfigPath()))
	} else {
		opts = append(opts, confloader.WithConfigFile(expandHome(path)))
	}

	l := confloader.NewLoader(opts...)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}
	cfg.Source = l.File()
	cfg.expandPaths()
	return cfg, nil
}

// Save writes cfg as YAML with mode 0600, creating the directory.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	path = expandHome(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *CLIConfig) expandPaths() {
	c.Store.Dir = expandHome(c.Store.Dir)
	c.Store.KeyFile = expandHome(c.Store.KeyFile)
	c.API.CAFile = expandHome(c.API.CAFile)
	c.API.CertFile = expandHome(c.API.CertFile)
	c.API.KeyFile = expandHome(c.API.KeyFile)
	c.Shell.HistoryFile = expandHome(c.Shell.HistoryFile)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
