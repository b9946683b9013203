package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/complitracker/complitracker-go/internal/core/domain"
)

// LogLevels are the accepted log.level values.
var LogLevels = []string{"debug", "info", "warn", "warning", "error"}

var (
	validOutputs  = []string{"table", "json", "yaml"}
	validBackends = []string{"file", "badger", "redis", "memory"}
	validFormats  = []string{"text", "json", "console"}
)

// Validate checks the configuration and reports every problem found.
func (c *CLIConfig) Validate() error {
	var errs []error
	errs = append(errs, verifyAPI(&c.API)...)
	if !slices.Contains(validOutputs, c.Output) {
		errs = append(errs, fmt.Errorf("output must be one of %v, got %q", validOutputs, c.Output))
	}
	errs = append(errs, verifyStore(&c.Store)...)
	if !slices.Contains(LogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", LogLevels, c.Log.Level))
	}
	if !slices.Contains(validFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of %v, got %q", validFormats, c.Log.Format))
	}
	errs = append(errs, verifyShell(&c.Shell)...)
	return errors.Join(errs...)
}

func verifyAPI(a *APISection) []error {
	var errs []error
	u, err := url.Parse(a.URL)
	switch {
	case a.URL == "":
		errs = append(errs, errors.New("api.url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("api.url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("api.url must use http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("api.url has no host"))
	}
	if a.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if a.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if a.RateLimit > 0 && a.RateBurst < 1 {
		errs = append(errs, errors.New("api.rate_burst must be at least 1 when rate limiting"))
	}
	if (a.CertFile == "") != (a.KeyFile == "") {
		errs = append(errs, errors.New("api.cert_file and api.key_file must be set together"))
	}
	if a.TokenLeeway < 0 {
		errs = append(errs, errors.New("api.token_leeway must not be negative"))
	}
	return errs
}

func verifyStore(s *StoreSection) []error {
	var errs []error
	if !slices.Contains(validBackends, s.Backend) {
		return append(errs, fmt.Errorf("store.backend must be one of %v, got %q", validBackends, s.Backend))
	}
	switch s.Backend {
	case "file", "badger":
		if s.Dir == "" {
			errs = append(errs, fmt.Errorf("store.dir is required for the %s backend", s.Backend))
		}
	case "redis":
		if s.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis backend"))
		}
		if s.RedisDB < 0 {
			errs = append(errs, errors.New("store.redis_db must not be negative"))
		}
	}
	return errs
}

func verifyShell(s *ShellSection) []error {
	var errs []error
	r := domain.Route(s.DefaultRoute)
	if !strings.HasPrefix(s.DefaultRoute, "/") {
		errs = append(errs, fmt.Errorf("shell.default_route must start with /, got %q", s.DefaultRoute))
	} else if r.IsPublic() {
		errs = append(errs, fmt.Errorf("shell.default_route %q is a public route", s.DefaultRoute))
	}
	if s.HistorySize < 0 {
		errs = append(errs, errors.New("shell.history_size must not be negative"))
	}
	return errs
}
