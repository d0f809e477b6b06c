// Package sanitizer guards incident payloads at the intake edge: size and
// emptiness checks, and credential masking for payload text echoed into logs.
// It never alters the payload handed to the normalizer.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sanitizer checks payload limits and builds log-safe previews.
type Sanitizer struct {
	patterns    []*regexp.Regexp
	maxSize     int
	previewSize int
}

// Credentials that appear in appliance logs. Each pattern keeps the key in
// group 1 so only the value is masked.
var defaultPatterns = []*regexp.Regexp{
	// key=value and key="value" credentials in FortiGate style logs
	regexp.MustCompile(`(?i)((?:password|passwd|pwd|passphrase|psk|secret)\s*=\s*)("[^"]*"|\S+)`),
	regexp.MustCompile(`(?i)((?:api[_-]?key|apikey|token|auth[_-]?token|access[_-]?key)\s*[:=]\s*)("[^"]*"|\S+)`),

	// HTTP authorization material captured by web filter logs
	regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-\.=]+`),
	regexp.MustCompile(`(?i)(authorization:\s*(?:basic|digest)\s+)[a-zA-Z0-9+/=]+`),

	// Credentials embedded in URLs
	regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*://[^:/\s@]+:)[^@\s]+(@)`),
}

// New creates a Sanitizer with the default credential patterns.
func New(maxSize, previewSize int) *Sanitizer {
	return NewWithPatterns(maxSize, previewSize, defaultPatterns)
}

// NewWithPatterns creates a Sanitizer with custom patterns.
func NewWithPatterns(maxSize, previewSize int, patterns []*regexp.Regexp) *Sanitizer {
	return &Sanitizer{
		patterns:    patterns,
		maxSize:     maxSize,
		previewSize: previewSize,
	}
}

// IsEmpty checks if the payload is empty or whitespace only.
func (s *Sanitizer) IsEmpty(payload string) bool {
	return strings.TrimSpace(payload) == ""
}

// IsTooLarge checks if the payload exceeds the maximum size.
func (s *Sanitizer) IsTooLarge(payload string) bool {
	return len(payload) > s.maxSize
}

// Preview returns the head of payload, truncated on a rune boundary, with
// credentials masked. Masking runs before truncation so a value cut in half
// by the limit is never exposed.
func (s *Sanitizer) Preview(payload string) string {
	masked := s.Mask(payload)
	if len(masked) <= s.previewSize {
		return masked
	}

	cut := s.previewSize
	for cut > 0 && !utf8.RuneStart(masked[cut]) {
		cut--
	}
	return masked[:cut] + "…"
}

// Mask replaces credential values in text with [REDACTED].
func (s *Sanitizer) Mask(text string) string {
	for _, pattern := range s.patterns {
		text = pattern.ReplaceAllString(text, maskTemplate(pattern))
	}
	return text
}

// maskTemplate keeps the leading key group and, for URL credentials, the
// trailing "@".
func maskTemplate(p *regexp.Regexp) string {
	switch p.NumSubexp() {
	case 0:
		return "[REDACTED]"
	case 1:
		return "${1}[REDACTED]"
	default:
		if strings.HasSuffix(p.String(), "(@)") {
			return "${1}[REDACTED]${2}"
		}
		return "${1}[REDACTED]"
	}
}
