package expr

import (
	"errors"
	"fmt"
)

// ErrParse is wrapped by every error returned from Parse.
var ErrParse = errors.New("parse error")

var (
	ErrUnexpectedToken = fmt.Errorf("%w: unexpected token", ErrParse)
	ErrUnmatchedParen  = fmt.Errorf("%w: unmatched parenthesis", ErrParse)
	ErrEmptyExpression = fmt.Errorf("%w: empty expression", ErrParse)
	ErrUnknownVariable = fmt.Errorf("%w: unknown variable", ErrParse)
	ErrUnknownFunction = fmt.Errorf("%w: unknown function", ErrParse)
	ErrArityMismatch   = fmt.Errorf("%w: arity mismatch", ErrParse)
)

// ErrorKind classifies a ParseError.
type ErrorKind uint8

const (
	UnexpectedToken ErrorKind = iota + 1
	UnmatchedParen
	EmptyExpression
	UnknownVariable
	UnknownFunction
	ArityMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnmatchedParen:
		return "UnmatchedParen"
	case EmptyExpression:
		return "EmptyExpression"
	case UnknownVariable:
		return "UnknownVariable"
	case UnknownFunction:
		return "UnknownFunction"
	case ArityMismatch:
		return "ArityMismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case UnexpectedToken:
		return ErrUnexpectedToken
	case UnmatchedParen:
		return ErrUnmatchedParen
	case EmptyExpression:
		return ErrEmptyExpression
	case UnknownVariable:
		return ErrUnknownVariable
	case UnknownFunction:
		return ErrUnknownFunction
	case ArityMismatch:
		return ErrArityMismatch
	default:
		return ErrParse
	}
}

// ParseError reports why an expression was rejected and where.
//
// Offset is the byte offset into the source text of the token that caused the failure; the UI uses
// it to place a caret under the input.
type ParseError struct {
	Kind   ErrorKind
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

// Unwrap lets callers match with errors.Is(err, ErrUnknownFunction) and friends.
func (e *ParseError) Unwrap() error { return e.Kind.sentinel() }

func errorf(kind ErrorKind, off int, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Offset: off, Msg: fmt.Sprintf(format, args...)}
}
