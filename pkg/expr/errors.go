package expr

import (
	"errors"
	"fmt"
)

// Kind classifies an evaluation failure.
type Kind int

const (
	KindUnbalancedParens Kind = iota + 1
	KindInvalidInput
	KindDivideByZero
)

// Messages printed for each error kind.
const (
	MsgUnbalancedParens = "Syntax Error: Parentheses are unbalanced"
	MsgInvalidInput     = "Syntax Error: Invalid input"
	MsgDivideByZero     = "Computational Error: Divide by zero"
)

// Sentinels for errors.Is matching.
var (
	ErrUnbalancedParens = &Error{Kind: KindUnbalancedParens, Pos: -1}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput, Pos: -1}
	ErrDivideByZero     = &Error{Kind: KindDivideByZero, Pos: -1}
)

// String returns the stable identifier of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnbalancedParens:
		return "UnbalancedParens"
	case KindInvalidInput:
		return "InvalidInput"
	case KindDivideByZero:
		return "DivideByZero"
	default:
		return "Unknown"
	}
}

// Message returns the user-facing diagnostic for the kind.
func (k Kind) Message() string {
	switch k {
	case KindUnbalancedParens:
		return MsgUnbalancedParens
	case KindInvalidInput:
		return MsgInvalidInput
	case KindDivideByZero:
		return MsgDivideByZero
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is an evaluation failure. Pos is the byte offset of the token that
// triggered it, or -1 when the failure was detected at end of input.
type Error struct {
	Kind Kind
	Pos  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Kind.Message()
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDivideByZero)
// works regardless of position.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err, or 0 when err is not an evaluation error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newUnbalancedParensError(tok Token) *Error {
	return &Error{Kind: KindUnbalancedParens, Pos: tok.Pos}
}

func newInvalidInputError(tok Token) *Error {
	return &Error{Kind: KindInvalidInput, Pos: tok.Pos}
}

func newDivideByZeroError(tok Token) *Error {
	return &Error{Kind: KindDivideByZero, Pos: tok.Pos}
}
