// Package redact masks sensitive substrings out of arbitrary values before
// the Call Logger (4.E) emits them, per spec.md §4.B. It never raises: a
// redaction failure falls back to the original value plus a debug log line,
// the same "never break the caller's call path" discipline the teacher
// applies to its adapter send paths (adapter/redis, adapter/webhook).
package redact

import (
	"fmt"
	"regexp"
)

// builtins are applied after any user patterns, case-insensitive, word
// bounded, terminated by whitespace/comma/quote per spec.md §4.B. Capture
// group 1 is the key prefix, kept verbatim in the replacement.
var builtins = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(password\s*=\s*)[^\s,"']+`),
	regexp.MustCompile(`(?i)\b(api[_-]?key\s*=\s*)[^\s,"']+`),
	regexp.MustCompile(`(?i)\b(token\s*=\s*)[^\s,"']+`),
	regexp.MustCompile(`(?i)\b(secret\s*=\s*)[^\s,"']+`),
}

// cardPattern matches a 16-digit card number, optionally grouped by
// dashes or spaces in 4s.
var cardPattern = regexp.MustCompile(`\b(?:\d[ -]?){15}\d\b`)

// ssnPattern matches the SSN-shaped NNN-NN-NNNN form.
var ssnPattern = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

const mask = "****"

// Logger receives the debug diagnostic on an internal redaction failure.
// Defaults to a no-op so the package has no hard dependency on logx; pass
// WithDiagnosticSink to New to route it through the real logger.
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

// Redactor masks sensitive substrings in arbitrary values. The zero value
// is usable: built-in patterns only, no user patterns, no diagnostics.
type Redactor struct {
	userPatterns []*regexp.Regexp
	log          Logger
}

// Option configures a Redactor at construction.
type Option func(*Redactor)

// WithPatterns adds user-supplied patterns, applied before built-ins, in
// the order given.
func WithPatterns(patterns ...*regexp.Regexp) Option {
	return func(r *Redactor) { r.userPatterns = append(r.userPatterns, patterns...) }
}

// WithDiagnosticSink routes the debug-level failure diagnostic somewhere
// other than /dev/null.
func WithDiagnosticSink(l Logger) Option {
	return func(r *Redactor) { r.log = l }
}

// New builds a Redactor. With no options, it applies only the built-in
// patterns.
func New(opts ...Option) *Redactor {
	r := &Redactor{log: noopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Redact returns a structurally-identical copy of v with sensitive
// substrings masked. It never returns an error; on internal failure it
// returns v unchanged and logs a diagnostic at debug level.
func (r *Redactor) Redact(v any) (result any) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Debugf("redact: recovered from panic, returning original value: %v", p)
			result = v
		}
	}()
	return r.redactValue(v)
}

func (r *Redactor) redactValue(v any) any {
	switch val := v.(type) {
	case string:
		return r.redactString(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = r.redactValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = r.redactValue(vv)
		}
		return out
	default:
		return v
	}
}

func (r *Redactor) redactString(s string) string {
	for _, p := range r.userPatterns {
		s = p.ReplaceAllString(s, "$1"+mask)
	}
	for _, p := range builtins {
		s = p.ReplaceAllString(s, "$1"+mask)
	}
	s = cardPattern.ReplaceAllString(s, mask)
	s = ssnPattern.ReplaceAllString(s, mask)
	return s
}

// defaultRedactor is the package-level Redactor behind RedactAny, with
// only built-in patterns, for callers that don't need user patterns.
var defaultRedactor = New()

// RedactAny masks v using only the built-in patterns.
func RedactAny(v any) any { return defaultRedactor.Redact(v) }

// String is a convenience formatter for log call sites that want a
// redacted %v-style rendering of an arbitrary value.
func String(v any) string {
	return fmt.Sprintf("%v", RedactAny(v))
}
