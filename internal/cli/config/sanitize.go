package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for display.
func Sanitize(cfg *CLIConfig) *CLIConfig {
	sanitized := *cfg
	if sanitized.Store.RedisPassword != "" {
		sanitized.Store.RedisPassword = maskSecret(sanitized.Store.RedisPassword)
	}
	if u := sanitized.Store.RedisAddr; strings.Contains(u, "@") {
		sanitized.Store.RedisAddr = "****" + u[strings.LastIndex(u, "@"):]
	}
	return &sanitized
}

// maskSecret masks a secret value for safe display.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
