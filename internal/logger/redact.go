package logger

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// Redactor scrubs credentials from log messages and fields.
type Redactor struct {
	sensitiveKeys []string
	patterns      []*regexp.Regexp
}

// DefaultRedactor redacts bearer tokens, JWTs and common secret field names.
func DefaultRedactor() *Redactor {
	return &Redactor{
		sensitiveKeys: []string{"password", "secret", "token", "authorization", "api_key", "cookie"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
			regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/-]+=*`),
		},
	}
}

// Redact replaces token-looking substrings in s.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.ReplaceAllString(s, redacted)
	}
	return s
}

// RedactFields returns a copy of fields with sensitive keys masked.
func (r *Redactor) RedactFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if r.isSensitive(k) {
			out[k] = redacted
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = r.Redact(s)
			continue
		}
		out[k] = v
	}
	return out
}

func (r *Redactor) isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range r.sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
