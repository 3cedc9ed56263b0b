// Package diag implements the diagnostics collector that every emitter
// function in jbcgen reports through instead of returning an error or
// writing to stderr directly (spec.md §7, §9). A failed compile still
// produces a (possibly empty) byte sequence plus a non-empty diagnostic
// list; the collector is what lets a single pass surface every structural
// overflow, type error and warning instead of aborting on the first one.
package diag

import (
	"fmt"

	"github.com/7mind/jbcgen/internal/token"
)

// Severity classifies a Diagnostic.
type Severity uint8

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code identifies the kind of diagnostic. Names match the taxonomy of
// spec.md §7 and the structural-overflow list of §4.11.
type Code string

const (
	ConstantPoolOverflow   Code = "CONSTANT_POOL_OVERFLOW"
	TooManyFields          Code = "TOO_MANY_FIELDS"
	TooManyMethods         Code = "TOO_MANY_METHODS"
	TooManyInterfaces      Code = "TOO_MANY_INTERFACES"
	StringLiteralTooLong   Code = "STRING_LITERAL_TOO_LONG"
	CodeTooLarge           Code = "CODE_TOO_LARGE"
	TooManyLocals          Code = "TOO_MANY_LOCALS"
	StackTooDeep           Code = "STACK_TOO_DEEP"
	TooManyParameterWords  Code = "TOO_MANY_PARAMETER_WORDS"
	ArrayDimensionsTooDeep Code = "ARRAY_DIMENSIONS_TOO_DEEP"
	BranchOffsetOverflow   Code = "BRANCH_OFFSET_OVERFLOW"

	ConstantOverflow Code = "CONSTANT_OVERFLOW"
	ZeroDivideCaution Code = "ZERO_DIVIDE_CAUTION"
	ShiftCountOutOfRange Code = "SHIFT_COUNT_OUT_OF_RANGE"

	IncompatibleTypes Code = "INCOMPATIBLE_TYPES"
	BadCast           Code = "BAD_CAST"
	BadInstanceOf     Code = "BAD_INSTANCEOF"

	LibraryMethodNotFound Code = "LIBRARY_METHOD_NOT_FOUND"

	UnresolvedSymbolSkipped Code = "UNRESOLVED_SYMBOL_SKIPPED"
)

// Diagnostic is a single reported event: a code, a severity, an optional
// source position and the already-formatted message text.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Pos      token.Pos
	Message  string
}

func (d Diagnostic) String() string {
	if d.Pos.Unknown() {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Code, d.Message)
	}
	line, col := d.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s: %s: %s", line, col, d.Severity, d.Code, d.Message)
}

// Collector accumulates diagnostics produced during emission of one
// compilation unit. It is passed explicitly into every component that may
// fail, per spec.md §9's replacement for global mutable control.
type Collector struct {
	diags []Diagnostic
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a diagnostic built from code, severity, pos and a
// fmt.Sprintf-style message.
func (c *Collector) Add(code Code, sev Severity, pos token.Pos, format string, args ...interface{}) {
	c.diags = append(c.diags, Diagnostic{
		Code:     code,
		Severity: sev,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf records a Warning-severity diagnostic.
func (c *Collector) Warnf(code Code, pos token.Pos, format string, args ...interface{}) {
	c.Add(code, Warning, pos, format, args...)
}

// Errorf records an Error-severity diagnostic.
func (c *Collector) Errorf(code Code, pos token.Pos, format string, args ...interface{}) {
	c.Add(code, Error, pos, format, args...)
}

// Fatalf records a Fatal-severity diagnostic; Failed will report true once
// any Fatal or Error diagnostic has been recorded.
func (c *Collector) Fatalf(code Code, pos token.Pos, format string, args ...interface{}) {
	c.Add(code, Fatal, pos, format, args...)
}

// Diagnostics returns every diagnostic recorded so far, in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}

// Failed reports whether any Error or Fatal diagnostic was recorded. Per
// spec.md §7, a failed compile still emits whatever bytes were produced;
// Failed is what the writer boundary checks to decide whether to discard
// them by convention.
func (c *Collector) Failed() bool {
	for _, d := range c.diags {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}
