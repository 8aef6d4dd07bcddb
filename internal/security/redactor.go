// Package security scrubs credentials from log output and throttles
// repeated authentication attempts.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder is the replacement string for redacted secrets.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches map keys that likely contain secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(secret|token|password|key|credential)`)

// Redactor replaces secret values in strings and maps with RedactPlaceholder.
// It matches known credential formats by pattern and runtime-loaded values
// literally. All methods are safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor creates a Redactor pre-loaded with DefaultPatterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: DefaultPatterns(),
	}
}

// AddPattern adds a compiled regex pattern to the redactor.
func (r *Redactor) AddPattern(pattern *regexp.Regexp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
}

// AddLiteral adds secret values that should be redacted on sight.
// Empty strings are ignored.
func (r *Redactor) AddLiteral(secrets ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range secrets {
		if s != "" {
			r.literals = append(r.literals, s)
		}
	}
}

// Redact replaces all known secret patterns and literal values in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	// Literals first: a configured key may be longer than what a pattern
	// would match, and a partial pattern hit would leave its tail behind.
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	return s
}

// RedactMap walks a decoded config map and replaces string values whose
// keys look secret (secret, token, password, key, credential). Other
// string values still go through Redact.
func (r *Redactor) RedactMap(m map[string]any) {
	for k, v := range m {
		if secretKeyPattern.MatchString(k) {
			switch val := v.(type) {
			case string:
				if val != "" {
					m[k] = RedactPlaceholder
				}
				continue
			case []any:
				for i, item := range val {
					if s, ok := item.(string); ok && s != "" {
						val[i] = RedactPlaceholder
					}
				}
				continue
			}
		}
		switch val := v.(type) {
		case map[string]any:
			r.RedactMap(val)
		case []any:
			for i, item := range val {
				switch sub := item.(type) {
				case map[string]any:
					r.RedactMap(sub)
				case string:
					val[i] = r.Redact(sub)
				}
			}
		case string:
			if redacted := r.Redact(val); redacted != val {
				m[k] = redacted
			}
		}
	}
}

// DefaultPatterns returns compiled patterns for the credential formats the
// bot handles.
func DefaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Google AI Studio / Gemini API key.
		regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),
		// Telegram bot token, also as it appears in Bot API URLs.
		regexp.MustCompile(`[0-9]{6,12}:[A-Za-z0-9_\-]{30,}`),
		// Authorization header values.
		regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]{16,}`),
	}
}
