// Package diagnostics defines the shared diagnostic type used by the
// lexer, parser and compiler to report warnings and errors without ever
// throwing: core entry points never throw, they return booleans or
// options and leave diagnostics in a List. It is modeled on an
// Error/List pair.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nodable-lang/nodable/token"
)

// Severity distinguishes a call-failing error from an informational
// warning, such as the permissive-mode "undeclared identifier" notice.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single positioned message.
type Diagnostic struct {
	Severity Severity
	Message  string
	Offset   int // byte offset in the originating buffer, or -1 if unknown
	Cause    error
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	if d.Offset >= 0 {
		fmt.Fprintf(&b, " at byte %d", d.Offset)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Cause != nil {
		fmt.Fprintf(&b, ": %v", d.Cause)
	}
	return b.String()
}

func (d Diagnostic) Unwrap() error { return d.Cause }

// List accumulates diagnostics produced during a single lex/parse/compile
// call. A List with no Error-severity entries still satisfies error == nil
// semantics via List.Err.
type List struct {
	// RunID correlates every diagnostic emitted by one top-level call
	// (lex+parse, or compile) for host-side log correlation; the core
	// itself never interprets it.
	RunID uuid.UUID

	diags []Diagnostic
}

// NewList returns an empty List stamped with a fresh run id.
func NewList() *List {
	return &List{RunID: uuid.New()}
}

// Newf appends an Error-severity diagnostic.
func (l *List) Newf(offset int, format string, args ...interface{}) {
	l.diags = append(l.diags, Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Offset: offset})
}

// Warnf appends a Warning-severity diagnostic; warnings never fail the
// call they were raised from.
func (l *List) Warnf(offset int, format string, args ...interface{}) {
	l.diags = append(l.diags, Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Offset: offset})
}

// Wrapf appends an Error-severity diagnostic wrapping an existing error.
func (l *List) Wrapf(offset int, cause error, format string, args ...interface{}) {
	l.diags = append(l.diags, Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Offset: offset, Cause: cause})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every diagnostic recorded, in insertion order.
func (l *List) All() []Diagnostic {
	return append([]Diagnostic(nil), l.diags...)
}

// Sanitize sorts diagnostics by byte offset and removes exact duplicates.
func (l *List) Sanitize() {
	sort.SliceStable(l.diags, func(i, j int) bool { return l.diags[i].Offset < l.diags[j].Offset })
	out := l.diags[:0]
	seen := map[string]bool{}
	for _, d := range l.diags {
		key := fmt.Sprintf("%d:%d:%s", d.Severity, d.Offset, d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	l.diags = out
}

// Err returns l as an error if it contains at least one Error-severity
// diagnostic, or nil otherwise.
func (l *List) Err() error {
	if l == nil || !l.HasErrors() {
		return nil
	}
	return l
}

func (l *List) Error() string {
	parts := make([]string, len(l.diags))
	for i, d := range l.diags {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n")
}

// OffsetOf is a convenience for building a Diagnostic's Offset field from a
// token, using the token's body start when the token came from a buffer.
func OffsetOf(t token.Token) int {
	if t.IsNull() {
		return -1
	}
	return t.Offset()
}
