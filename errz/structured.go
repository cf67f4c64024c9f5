// Package errz defines the typed errors produced while scanning, compiling and
// executing bytecode.
package errz

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrLex indicates a malformed character sequence or unterminated literal.
	ErrLex ErrorKind = iota
	// ErrCompile indicates a syntactic or semantic problem found while
	// building a chunk.
	ErrCompile
	// ErrRuntime indicates a fatal error raised by the virtual machine.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrLex:
		return "lex error"
	case ErrCompile:
		return "compile error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// Sentinel causes. Structured errors unwrap to one of these so callers can
// branch with errors.Is.
var (
	ErrTooManyConstants = errors.New("too many constants in one chunk")
	ErrConstantIndex    = errors.New("constant index out of range")
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrUnexpectedEnd    = errors.New("unexpected end of code")
	ErrOperandType      = errors.New("operand type mismatch")
	ErrHalted           = errors.New("execution halted by observer")
)

// FriendlyError is implemented by errors that have a human friendly message
// in addition to the default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// RuntimeError is a fatal error raised while executing a chunk. It records
// the offset of the instruction that failed and, through the chunk's line
// map, the source line it was compiled from.
type RuntimeError struct {
	Message string
	Opcode  string
	Offset  int
	Line    int
	Cause   error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (offset %d, line %d)", ErrRuntime, e.Message, e.Offset, e.Line)
	}
	return fmt.Sprintf("%s: %s (offset %d)", ErrRuntime, e.Message, e.Offset)
}

// Unwrap returns the underlying cause of the error.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Kind returns ErrRuntime.
func (e *RuntimeError) Kind() ErrorKind {
	return ErrRuntime
}

// FriendlyErrorMessage renders the error the way a REPL prints it.
func (e *RuntimeError) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Message)
	msg.WriteString("\n")
	if e.Line > 0 {
		fmt.Fprintf(&msg, "[line %d] in script", e.Line)
	} else {
		msg.WriteString("[line ?] in script")
	}
	if e.Opcode != "" {
		fmt.Fprintf(&msg, " at %04d %s", e.Offset, e.Opcode)
	}
	msg.WriteString("\n")
	return msg.String()
}

// NewRuntimeError creates a RuntimeError whose message is the cause's text
// followed by the formatted detail, if any.
func NewRuntimeError(cause error, offset, line int, opcode string, format string, args ...any) *RuntimeError {
	msg := cause.Error()
	if format != "" {
		msg = fmt.Sprintf("%s: %s", msg, fmt.Sprintf(format, args...))
	}
	return &RuntimeError{
		Message: msg,
		Opcode:  opcode,
		Offset:  offset,
		Line:    line,
		Cause:   cause,
	}
}
