package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithObserver adds an observer for VM execution events. Observers receive
// callbacks in the order they were added.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast. Returning false from any observer method
// halts execution with errz.ErrHalted.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		if observer != nil {
			vm.observers = append(vm.observers, observer)
		}
	}
}

// WithTrace writes an execution trace to w: before each instruction, the
// stack contents and the disassembled instruction. A nil writer is ignored.
func WithTrace(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		if w != nil {
			vm.observers = append(vm.observers, NewTracer(w))
		}
	}
}

// WithLogger sets the logger used for debug output about each run.
// The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithMaxStackDepth limits the number of values the stack may hold. Values
// <= 0 select DefaultMaxStackDepth.
func WithMaxStackDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		if depth <= 0 {
			depth = DefaultMaxStackDepth
		}
		vm.maxStackDepth = depth
	}
}
