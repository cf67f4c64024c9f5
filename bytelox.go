// Package bytelox compiles arithmetic source text to bytecode and runs it on
// a stack-based virtual machine.
//
//	result, err := bytelox.Interpret("(1 + 2) * 3")
//
// Compilation and execution are also available separately, so one chunk can
// be compiled once and run many times:
//
//	chunk, err := bytelox.Compile(source)
//	...
//	result, err := bytelox.Run(chunk)
package bytelox

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/bytelox/bytecode"
	"github.com/deepnoodle-ai/bytelox/compiler"
	"github.com/deepnoodle-ai/bytelox/dis"
	"github.com/deepnoodle-ai/bytelox/errz"
	"github.com/deepnoodle-ai/bytelox/scanner"
	"github.com/deepnoodle-ai/bytelox/value"
	"github.com/deepnoodle-ai/bytelox/vm"
)

// ListingName is the header used for chunk listings.
const ListingName = "script"

// Exit codes for command line front ends.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitDataError   = 65 // lexical or compile errors
	ExitSoftwareErr = 70 // runtime errors
)

// Compile scans and compiles source into a chunk. On failure the error holds
// every diagnostic found; see compiler.Errors.
func Compile(source string, opts ...Option) (*bytecode.Chunk, error) {
	return compile(source, collectOptions(opts...))
}

// Run executes a compiled chunk on a new virtual machine and returns the
// value produced by its Return instruction.
func Run(chunk *bytecode.Chunk, opts ...Option) (value.Value, error) {
	o := collectOptions(opts...)
	if o.err != nil {
		return value.Value{}, o.err
	}
	return vm.Run(chunk, o.vmOpts()...)
}

// Interpret compiles and runs source. It returns the value produced by
// Return, or a typed error: compile failures hold *errz.LexError and
// *errz.CompileError values, runtime failures are *errz.RuntimeError.
func Interpret(source string, opts ...Option) (value.Value, error) {
	o := collectOptions(opts...)
	chunk, err := compile(source, o)
	if err != nil {
		return value.Value{}, err
	}
	return vm.Run(chunk, o.vmOpts()...)
}

func compile(source string, o *options) (*bytecode.Chunk, error) {
	if o.err != nil {
		return nil, o.err
	}
	if o.tokens != nil {
		if err := scanner.Dump(o.tokens, source); err != nil {
			return nil, fmt.Errorf("writing tokens: %w", err)
		}
	}
	chunk, err := compiler.Compile(source, o.compilerOpts()...)
	if err != nil {
		return nil, err
	}
	if o.listing != nil {
		if o.tableListing {
			err = dis.PrintChunk(chunk, ListingName, o.listing)
		} else {
			_, err = fmt.Fprint(o.listing, chunk.Disassemble(ListingName))
		}
		if err != nil {
			return nil, fmt.Errorf("writing listing: %w", err)
		}
	}
	return chunk, nil
}

// ExitCode maps an error returned by Interpret to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var kinded interface{ Kind() errz.ErrorKind }
	if !errors.As(err, &kinded) {
		return ExitFailure
	}
	switch kinded.Kind() {
	case errz.ErrLex, errz.ErrCompile:
		return ExitDataError
	case errz.ErrRuntime:
		return ExitSoftwareErr
	default:
		return ExitFailure
	}
}
