// Package diag defines the structured errors reported by every compiler pass.
package diag

import (
	"fmt"

	"github.com/pkg/errors"

	"olive/internal/token"
)

type Kind int

const (
	SyntaxError Kind = iota
	DeclarationError
	TypeError
	ArityError
	ControlFlowError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case DeclarationError:
		return "DeclarationError"
	case TypeError:
		return "TypeError"
	case ArityError:
		return "ArityError"
	case ControlFlowError:
		return "ControlFlowError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a single compiler diagnostic. Node is the offending tree node when
// one exists; it is kept as an opaque value so this package stays below ast.
type Error struct {
	Kind Kind
	Msg  string
	Pos  token.Position
	Node any
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s: %s", e.Pos.Line, e.Pos.Column, e.Kind, e.Msg)
}

func New(kind Kind, pos token.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func Syntax(pos token.Position, format string, args ...any) *Error {
	return New(SyntaxError, pos, format, args...)
}

func Declaration(pos token.Position, format string, args ...any) *Error {
	return New(DeclarationError, pos, format, args...)
}

func Type(pos token.Position, format string, args ...any) *Error {
	return New(TypeError, pos, format, args...)
}

func Arity(pos token.Position, format string, args ...any) *Error {
	return New(ArityError, pos, format, args...)
}

func ControlFlow(pos token.Position, format string, args ...any) *Error {
	return New(ControlFlowError, pos, format, args...)
}

// At fills in the position and node of err if it is a diagnostic without
// one. Other errors are returned unchanged.
func At(err error, pos token.Position, node any) error {
	var d *Error
	if !errors.As(err, &d) {
		return err
	}
	if d.Pos.Line == 0 {
		d.Pos = pos
	}
	if d.Node == nil {
		d.Node = node
	}
	return err
}

// KindOf reports the kind of the first diagnostic in err's chain.
func KindOf(err error) (Kind, bool) {
	var d *Error
	if errors.As(err, &d) {
		return d.Kind, true
	}
	return 0, false
}

// Is reports whether err carries a diagnostic of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
