// Package errors implements spec §7's three-kind CheckerError and its
// rendering and exit-code selection rules (spec §6).
package errors

import "fmt"

// Kind classifies a CheckerError as spec §7 describes.
type Kind int

const (
	Syntax Kind = iota
	Semantic
	Type
)

func (k Kind) label() string {
	switch k {
	case Syntax:
		return "Syntax Error"
	case Semantic:
		return "Semantic Error"
	case Type:
		return "Type Error"
	default:
		return "Error"
	}
}

// Location is a source (line, column) pair. It is a plain struct rather
// than an alias of ast.Location so this package has no dependency on
// ast, matching the teacher's own errors package, which depends only on
// its own types package.
type Location struct {
	Line   int
	Column int
}

// Set reports whether the location has been assigned a real position.
func (l Location) Set() bool {
	return l != Location{}
}

// CheckerError is the sole error type the core front-end ever returns to
// a caller. Parse errors carry a Location from the moment they are
// raised; semantic/type errors are raised without one and decorated with
// the nearest enclosing IdentifiedStatement's location during
// propagation (spec §7) — see internal/semantic.
type CheckerError struct {
	CheckKind Kind
	Loc       Location
	Msg       string
}

func New(kind Kind, msg string) *CheckerError {
	return &CheckerError{CheckKind: kind, Msg: msg}
}

func NewAt(kind Kind, loc Location, msg string) *CheckerError {
	return &CheckerError{CheckKind: kind, Loc: loc, Msg: msg}
}

func (e *CheckerError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s in statement on line %d, column %d", e.CheckKind.label(), e.Loc.Line, e.Loc.Column)
	}
	return fmt.Sprintf("%s in statement on line %d, column %d: %s", e.CheckKind.label(), e.Loc.Line, e.Loc.Column, e.Msg)
}

// WithLocation returns a copy of e with Loc replaced, used by the
// semantic walker's propagate-and-decorate step. It never mutates e.
func (e *CheckerError) WithLocation(loc Location) *CheckerError {
	cp := *e
	cp.Loc = loc
	return &cp
}

// AsCheckerError extracts a *CheckerError from err if it is one,
// following the standard library's errors.As convention without
// importing it (this package is itself named errors).
func AsCheckerError(err error) (*CheckerError, bool) {
	ce, ok := err.(*CheckerError)
	return ce, ok
}

// ExitCodeFor selects the configured exit code matching err's kind, per
// spec §6: "a function taking the error and the three codes and
// returning the one corresponding to the kind." Host code (cmd/wacc)
// supplies the three codes from internal/config.
func ExitCodeFor(err *CheckerError, syntaxCode, semanticCode, typeCode int) int {
	switch err.CheckKind {
	case Syntax:
		return syntaxCode
	case Semantic:
		return semanticCode
	case Type:
		return typeCode
	default:
		return semanticCode
	}
}
