package interpreter

import (
	sterrors "errors"
	"fmt"

	"github.com/oarkflow/errors"
)

var (
	// ErrExit unwinds a run started by the exit built-in. It is not a failure.
	ErrExit = errors.New("exit requested")
	// ErrUnsupported is returned by Operate for operand/operator combinations it does not define.
	ErrUnsupported = errors.New("unsupported operation")
)

type ErrorKind string

const (
	ErrVarNotFound       ErrorKind = "VarNotFound"
	ErrFuncNotFound      ErrorKind = "FuncNotFound"
	ErrIncorrectArgs     ErrorKind = "IncorrectArgs"
	ErrNoOperation       ErrorKind = "NoOperation"
	ErrIncorrectType     ErrorKind = "IncorrectType"
	ErrDivisionByZero    ErrorKind = "DivisionByZero"
	ErrIndexOutOfRange   ErrorKind = "IndexOutOfRange"
	ErrInvalidConversion ErrorKind = "InvalidConversion"
	ErrIOFailure         ErrorKind = "IOFailure"
	ErrStackOverflow     ErrorKind = "StackOverflow"
	ErrDuplicateFunction ErrorKind = "DuplicateFunction"
	ErrInterrupted       ErrorKind = "Interrupted"
)

// RuntimeError is a fatal evaluation failure. Only the fields relevant to Kind are set.
type RuntimeError struct {
	Kind     ErrorKind
	Pos      Position
	Name     string
	Expected ObjectType
	Actual   ObjectType
	Left     ObjectType
	Right    ObjectType
	Op       Operator
	Detail   string
	Cause    error
}

func (e *RuntimeError) message() string {
	switch e.Kind {
	case ErrVarNotFound:
		return fmt.Sprintf("variable not found: %s", e.Name)
	case ErrFuncNotFound:
		return fmt.Sprintf("function not found: %s", e.Name)
	case ErrIncorrectArgs:
		if e.Detail != "" {
			return fmt.Sprintf("incorrect arguments to %s: %s", e.Name, e.Detail)
		}
		return fmt.Sprintf("incorrect arguments to %s", e.Name)
	case ErrNoOperation:
		return fmt.Sprintf("no operation %s for %s and %s", e.Op, e.Left, e.Right)
	case ErrIncorrectType:
		return fmt.Sprintf("incorrect type: expected %s, got %s", e.Expected, e.Actual)
	case ErrDuplicateFunction:
		return fmt.Sprintf("function %s is declared more than once", e.Name)
	case ErrStackOverflow:
		return fmt.Sprintf("stack overflow calling %s: %s", e.Name, e.Detail)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
		}
		return string(e.Kind)
	}
}

// Message is the error text without its position.
func (e *RuntimeError) Message() string {
	msg := e.message()
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Pos.Line == 0 {
		return e.Message()
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message())
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *RuntimeError) Position() Position {
	return e.Pos
}

// SyntaxError reports a lexing or parsing failure. File is filled in by LoadUnits.
type SyntaxError struct {
	Pos     Position
	File    string
	Message string
}

func (e *SyntaxError) Error() string {
	if e == nil {
		return ""
	}
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (e *SyntaxError) Position() Position {
	return e.Pos
}

func syntaxErrorf(pos Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func varNotFound(name string) *RuntimeError {
	return &RuntimeError{Kind: ErrVarNotFound, Name: name}
}

func funcNotFound(name string) *RuntimeError {
	return &RuntimeError{Kind: ErrFuncNotFound, Name: name}
}

func incorrectArgs(name string, want, got int) *RuntimeError {
	return &RuntimeError{Kind: ErrIncorrectArgs, Name: name, Detail: fmt.Sprintf("expected %d, got %d", want, got)}
}

func incorrectType(expected, actual ObjectType) *RuntimeError {
	return &RuntimeError{Kind: ErrIncorrectType, Expected: expected, Actual: actual}
}

func noOperation(left, right ObjectType, op Operator) *RuntimeError {
	return &RuntimeError{Kind: ErrNoOperation, Left: left, Right: right, Op: op}
}

func runtimeErrorf(kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func ioFailure(cause error, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: ErrIOFailure, Detail: fmt.Sprintf(format, args...), Cause: cause}
}

// at attaches pos to err when err is a RuntimeError that has no position yet.
func at(err error, pos Position) error {
	var rerr *RuntimeError
	if sterrors.As(err, &rerr) && rerr.Pos.Line == 0 {
		rerr.Pos = pos
	}
	return err
}

// IsExit reports whether err is the unwind produced by the exit built-in.
func IsExit(err error) bool {
	return sterrors.Is(err, ErrExit)
}
