// Package diag carries the diagnostic taxonomy the chunk core raises:
// non-fatal warnings funneled through a Log sink, and the two fatal/internal
// error kinds that abort a build.
package diag

import "fmt"

// ID names one of the diagnostics named in spec.md §7.
type ID string

const (
	MissingGlobalName ID = "MISSING_GLOBAL_NAME"
	EmptyFacade       ID = "EMPTY_FACADE"
	EmptyBundle       ID = "EMPTY_BUNDLE"
	InvalidOption     ID = "INVALID_OPTION"
	InvalidTLAFormat  ID = "INVALID_TLA_FORMAT"
)

type Kind uint8

const (
	Warning Kind = iota
	Error
)

// Msg is one diagnostic instance, modeled on esbuild's logger.Msg.
type Msg struct {
	ID   ID
	Kind Kind
	Text string
}

func (m Msg) String() string {
	level := "warning"
	if m.Kind == Error {
		level = "error"
	}
	return fmt.Sprintf("%s: [%s] %s", level, m.ID, m.Text)
}

// Log is the warn sink the graph layer exposes (spec.md §6: "warn(diagnostic)").
// It accumulates messages rather than printing them directly, so that an
// embedding CLI (out of scope for this core) can format and print them itself.
type Log struct {
	Msgs []Msg
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) AddWarning(id ID, format string, args ...interface{}) {
	l.Msgs = append(l.Msgs, Msg{ID: id, Kind: Warning, Text: fmt.Sprintf(format, args...)})
}

func (l *Log) AddError(id ID, format string, args ...interface{}) {
	l.Msgs = append(l.Msgs, Msg{ID: id, Kind: Error, Text: fmt.Sprintf(format, args...)})
}

func (l *Log) HasErrors() bool {
	for _, m := range l.Msgs {
		if m.Kind == Error {
			return true
		}
	}
	return false
}

// FatalError is returned (not panicked) for conditions that must abort the
// pipeline per spec.md §7, e.g. INVALID_TLA_FORMAT.
type FatalError struct {
	ID   ID
	Text string
}

func (e *FatalError) Error() string { return fmt.Sprintf("[%s] %s", e.ID, e.Text) }

func NewFatalError(id ID, format string, args ...interface{}) *FatalError {
	return &FatalError{ID: id, Text: fmt.Sprintf(format, args...)}
}

// InternalError marks an internal-consistency bug (spec.md §7: "Missing
// export-name lookups... are considered internal-consistency bugs"). Callers
// at the API boundary are expected to recover() panics of this type and
// convert them into a returned error; everywhere else it is allowed to
// propagate as a programmer-error panic, same as esbuild's own
// `panic("Internal error")` call sites in linker.go.
type InternalError struct {
	Text string
}

func (e *InternalError) Error() string { return "internal error: " + e.Text }

func PanicInternal(format string, args ...interface{}) {
	panic(&InternalError{Text: fmt.Sprintf(format, args...)})
}
