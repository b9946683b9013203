package logger

import (
	"log/slog"
	"strings"
)

// Keys whose string values are always redacted. Matching is on the
// lower-cased key with separators removed, so "Refresh-Token" and
// "refresh_token" both hit "refreshtoken".
var sensitiveKeys = map[string]bool{
	"token":         true,
	"accesstoken":   true,
	"refreshtoken":  true,
	"resettoken":    true,
	"password":      true,
	"newpassword":   true,
	"secret":        true,
	"authorization": true,
	"cookie":        true,
	"apikey":        true,
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// jwtPrefix starts every base64url-encoded JSON object header.
const jwtPrefix = "eyJ"

// redactSensitive masks credentials by key and JWT-shaped values by
// content, descending into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if strings.Contains(v, jwtPrefix) {
			return slog.String(a.Key, RedactString(v))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			msg := err.Error()
			if strings.Contains(msg, jwtPrefix) {
				return slog.String(a.Key, RedactString(msg))
			}
		}
	}
	return a
}

// RedactString masks every JWT-shaped token in s, keeping the first and
// last three characters of each.
func RedactString(s string) string {
	if !strings.Contains(s, jwtPrefix) {
		return s
	}
	words := strings.Fields(s)
	changed := false
	for i, w := range words {
		j := strings.Index(w, jwtPrefix)
		if j < 0 {
			continue
		}
		candidate := strings.TrimRight(w[j:], `"',;:()[]{}`)
		if IsSensitiveValue(candidate) {
			words[i] = w[:j] + maskValue(candidate) + w[j+len(candidate):]
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(words, " ")
}

// IsSensitiveKey reports whether values under key are always redacted.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	k = strings.NewReplacer("_", "", "-", "", ".", "").Replace(k)
	return sensitiveKeys[k]
}

// IsSensitiveValue reports whether v looks like a JWT.
func IsSensitiveValue(v string) bool {
	return strings.HasPrefix(v, jwtPrefix) && strings.Count(v, ".") == 2
}

func maskValue(v string) string {
	if len(v) <= 12 {
		return redactedValue
	}
	return v[:3] + "..." + v[len(v)-3:]
}
