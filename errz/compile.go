package errz

import (
	"fmt"
	"strings"
)

// LexError reports a malformed character sequence found by the scanner. The
// scanner itself never returns it; the compiler converts error tokens into
// LexErrors when it consumes them.
type LexError struct {
	Line    int
	Message string
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s (line %d)", ErrLex, e.Message, e.Line)
}

// Kind returns ErrLex.
func (e *LexError) Kind() ErrorKind {
	return ErrLex
}

// FriendlyErrorMessage returns the clox-style "[line N] Error: msg" form.
func (e *LexError) FriendlyErrorMessage() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// CompileError reports a syntactic or semantic problem detected while
// building a chunk.
type CompileError struct {
	Line int
	// Where is the offending lexeme, or "end" when the error is at the end
	// of input. Empty when no token is associated with the error.
	Where   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCompile.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	switch e.Where {
	case "":
	case "end":
		b.WriteString(" at end")
	default:
		fmt.Fprintf(&b, " at '%s'", e.Where)
	}
	fmt.Fprintf(&b, " (line %d)", e.Line)
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Kind returns ErrCompile.
func (e *CompileError) Kind() ErrorKind {
	return ErrCompile
}

// FriendlyErrorMessage returns the clox-style "[line N] Error at 'x': msg" form.
func (e *CompileError) FriendlyErrorMessage() string {
	switch e.Where {
	case "":
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	case "end":
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	default:
		return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Where, e.Message)
	}
}
