package common

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
)

const maskedValue = "***MASKED***"

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string         // Pattern name (e.g., "password", "api_key")
	Regex       *regexp.Regexp // Matches the sensitive part inside free text
	Replacement string         // Replacement string
	Keys        []string       // Keys whose values are always masked (case-insensitive)
}

// DefaultSensitivePatterns covers credentials that show up in request bodies,
// login responses and auth headers.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)("?(?:password|passwd|pwd)"?\s*[:=]\s*)"?[^"',}\]\s]+"?`),
		Replacement: `${1}"` + maskedValue + `"`,
		Keys:        []string{"password", "passwd", "pwd"},
	},
	{
		Name:        "api_key",
		Regex:       regexp.MustCompile(`(?i)("?(?:x-)?api[_-]?key"?\s*[:=]\s*)"?[^"',}\]\s]+"?`),
		Replacement: `${1}"` + maskedValue + `"`,
		Keys:        []string{"api_key", "apikey", "api-key", "x-api-key"},
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)("?(?:access[_-]?|auth[_-]?)?token"?\s*[:=]\s*)"?[^"',}\]\s]+"?`),
		Replacement: `${1}"` + maskedValue + `"`,
		Keys:        []string{"token", "access_token", "auth_token", "authtoken"},
	},
	{
		Name:        "bearer",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + maskedValue,
	},
	{
		Name:        "basic",
		Regex:       regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
		Replacement: "Basic " + maskedValue,
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)("?(?:client[_-]?)?secret"?\s*[:=]\s*)"?[^"',}\]\s]+"?`),
		Replacement: `${1}"` + maskedValue + `"`,
		Keys:        []string{"secret", "client_secret", "client-secret"},
	},
	{
		Name: "authorization",
		Keys: []string{"authorization", "proxy-authorization"},
	},
}

// Masker handles masking of sensitive information in logs
type Masker struct {
	patterns []SensitivePattern
	enabled  atomic.Bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return NewMaskerWithPatterns(DefaultSensitivePatterns)
}

// NewMaskerWithPatterns creates a new masker with custom patterns
func NewMaskerWithPatterns(patterns []SensitivePattern) *Masker {
	m := &Masker{patterns: patterns}
	m.enabled.Store(true)
	return m
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	return m.enabled.Load()
}

// IsSensitiveKey reports whether values stored under key are always masked.
func (m *Masker) IsSensitiveKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, p := range m.patterns {
		for _, sk := range p.Keys {
			if k == sk {
				return true
			}
		}
	}
	return false
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	if !m.IsEnabled() {
		return input
	}
	result := input
	for _, p := range m.patterns {
		if p.Regex == nil {
			continue
		}
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return result
}

// MaskValue masks value when key is sensitive, otherwise masks inside string values.
// Non-string values under non-sensitive keys are returned unchanged.
func (m *Masker) MaskValue(key string, value any) any {
	if !m.IsEnabled() {
		return value
	}
	if m.IsSensitiveKey(key) {
		return maskedValue
	}
	switch v := value.(type) {
	case string:
		return m.MaskString(v)
	case []byte:
		return m.MaskString(string(v))
	default:
		return value
	}
}

// MaskHeaders returns a copy of h with credential-bearing headers masked.
func (m *Masker) MaskHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vals := range h {
		cp := make([]string, len(vals))
		for i, v := range vals {
			if m.IsEnabled() && m.IsSensitiveKey(k) {
				cp[i] = maskedValue
			} else {
				cp[i] = m.MaskString(v)
			}
		}
		out[k] = cp
	}
	return out
}

var globalMasker = NewMasker()

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}

// IsMaskingEnabled returns whether global masking is enabled
func IsMaskingEnabled() bool {
	return globalMasker.IsEnabled()
}

// MaskingHandler wraps a slog.Handler and masks attribute values before they are written.
type MaskingHandler struct {
	next   slog.Handler
	masker *Masker
}

// NewMaskingHandler wraps next with masker.
func NewMaskingHandler(next slog.Handler, masker *Masker) *MaskingHandler {
	return &MaskingHandler{next: next, masker: masker}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.masker == nil || !h.masker.IsEnabled() {
		return h.next.Handle(ctx, r)
	}
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(maskAttr(h.masker, a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(h.masker, a)
	}
	return &MaskingHandler{next: h.next.WithAttrs(masked), masker: h.masker}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name), masker: h.masker}
}

func maskAttr(m *Masker, a slog.Attr) slog.Attr {
	if m == nil || !m.IsEnabled() {
		return a
	}
	if m.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, maskedValue)
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, m.MaskString(a.Value.String()))
	}
	return a
}
