// Package vm provides a VirtualMachine that executes compiled chunks.
package vm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deepnoodle-ai/bytelox/bytecode"
	"github.com/deepnoodle-ai/bytelox/errz"
	"github.com/deepnoodle-ai/bytelox/op"
	"github.com/deepnoodle-ai/bytelox/value"
	"github.com/rs/zerolog"
)

// DefaultMaxStackDepth is the stack limit used unless WithMaxStackDepth is
// given.
const DefaultMaxStackDepth = 256

var ErrNilChunk = errors.New("no chunk to run")

type VirtualMachine struct {
	ip            int // offset of the next byte to read
	stack         []value.Value
	chunk         *bytecode.Chunk
	maxStackDepth int
	observers     []Observer
	watches       []watch
	logger        zerolog.Logger
	running       bool
	runMutex      sync.Mutex
}

// watch tracks the per-run step state of one observer.
type watch struct {
	observer Observer
	cfg      ObserverConfig
	count    int
	lastLine int
}

func (w *watch) wantsStep(line int) bool {
	switch w.cfg.StepMode {
	case StepAll:
		return true
	case StepSampled:
		w.count++
		return w.count%w.cfg.SampleInterval == 0
	case StepOnLine:
		changed := line != w.lastLine
		w.lastLine = line
		return changed
	default:
		return false
	}
}

// New creates a new Virtual Machine.
func New(options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		maxStackDepth: DefaultMaxStackDepth,
		logger:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

func (vm *VirtualMachine) start(chunk *bytecode.Chunk) error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("vm is already running")
	}
	vm.running = true
	vm.chunk = chunk
	vm.ip = 0
	capacity := vm.maxStackDepth
	if capacity > DefaultMaxStackDepth {
		capacity = DefaultMaxStackDepth
	}
	vm.stack = make([]value.Value, 0, capacity)
	vm.watches = vm.watches[:0]
	for _, o := range vm.observers {
		vm.watches = append(vm.watches, watch{
			observer: o,
			cfg:      NormalizeConfig(o.Config()),
			lastLine: -1,
		})
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

// Run executes the chunk from offset 0 until a Return instruction and
// returns the value it popped. Any other outcome is an error, usually an
// *errz.RuntimeError. The chunk is only read, so one chunk may be run by
// several machines. The VM keeps its final stack and instruction pointer
// for inspection until the next run.
func (vm *VirtualMachine) Run(chunk *bytecode.Chunk) (result value.Value, err error) {
	if chunk == nil {
		return value.Value{}, ErrNilChunk
	}
	// Set up some guarantees:
	// 1. It is an error to call Run on a VM that is already running
	// 2. The running flag will always be set to false when Run returns
	// 3. Any panics are translated to errors and the VM is stopped
	if err := vm.start(chunk); err != nil {
		return value.Value{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		vm.stop()
	}()

	vm.logger.Debug().
		Str("chunk", chunk.ID()).
		Int("bytes", chunk.Len()).
		Int("constants", chunk.ConstantCount()).
		Int("observers", len(vm.watches)).
		Msg("run started")

	result, err = vm.eval()
	if err != nil {
		vm.logger.Debug().
			Str("chunk", chunk.ID()).
			Int("ip", vm.ip).
			Int("stack_depth", len(vm.stack)).
			Err(err).
			Msg("run failed")
		return value.Value{}, err
	}
	vm.logger.Debug().
		Str("chunk", chunk.ID()).
		Stringer("result", result).
		Msg("run finished")
	return result, nil
}

// Evaluate the active chunk starting at vm.ip. Each opcode is validated
// before it is dispatched and every stack access is bounds checked, so a
// malformed chunk fails with an error instead of a panic.
func (vm *VirtualMachine) eval() (value.Value, error) {
	for {
		offset := vm.ip
		if offset >= vm.chunk.Len() {
			return value.Value{}, vm.runtimeError(errz.ErrUnexpectedEnd, offset, "no return instruction")
		}
		raw := vm.chunk.ByteAt(offset)

		if len(vm.watches) > 0 {
			if err := vm.notifyStep(offset, op.Code(raw)); err != nil {
				return value.Value{}, err
			}
		}

		// Advance past the opcode before decoding its operands
		vm.ip++

		opcode, err := op.Decode(raw)
		if err != nil {
			return value.Value{}, vm.runtimeError(err, offset, "")
		}

		switch opcode {
		case op.Constant:
			if vm.ip >= vm.chunk.Len() {
				return value.Value{}, vm.runtimeError(errz.ErrConstantIndex, offset, "missing operand")
			}
			index := int(vm.chunk.ByteAt(vm.ip))
			vm.ip++
			constant, ok := vm.chunk.ConstantAt(index)
			if !ok {
				return value.Value{}, vm.runtimeError(errz.ErrConstantIndex, offset,
					"index %d, pool size %d", index, vm.chunk.ConstantCount())
			}
			if err := vm.push(offset, constant); err != nil {
				return value.Value{}, err
			}
		case op.Add, op.Subtract, op.Multiply, op.Divide:
			if err := vm.binaryOp(offset, opcode); err != nil {
				return value.Value{}, err
			}
		case op.Negate:
			if err := vm.require(offset, 1); err != nil {
				return value.Value{}, err
			}
			top := len(vm.stack) - 1
			result, err := value.Negate(vm.stack[top])
			if err != nil {
				return value.Value{}, vm.runtimeError(err, offset, "")
			}
			vm.stack[top] = result
		case op.Pop:
			if err := vm.require(offset, 1); err != nil {
				return value.Value{}, err
			}
			vm.pop()
		case op.Return:
			if err := vm.require(offset, 1); err != nil {
				return value.Value{}, err
			}
			result := vm.pop()
			if err := vm.notifyReturn(offset, result); err != nil {
				return value.Value{}, err
			}
			return result, nil
		default:
			return value.Value{}, vm.runtimeError(errz.ErrUnknownOpcode, offset, "%d", raw)
		}
	}
}

func (vm *VirtualMachine) binaryOp(offset int, opcode op.Code) error {
	if err := vm.require(offset, 2); err != nil {
		return err
	}
	top := len(vm.stack) - 1
	a, b := vm.stack[top-1], vm.stack[top]
	result, err := value.BinaryOp(binaryOpType(opcode), a, b)
	if err != nil {
		return vm.runtimeError(err, offset, "")
	}
	vm.stack = vm.stack[:top]
	vm.stack[top-1] = result
	return nil
}

func binaryOpType(opcode op.Code) value.BinaryOpType {
	switch opcode {
	case op.Add:
		return value.Add
	case op.Subtract:
		return value.Subtract
	case op.Multiply:
		return value.Multiply
	case op.Divide:
		return value.Divide
	default:
		return 0
	}
}

// require checks that the stack holds at least n values. Operands are checked
// before anything is popped so a failing instruction leaves the stack as it
// found it.
func (vm *VirtualMachine) require(offset, n int) error {
	if len(vm.stack) < n {
		return vm.runtimeError(errz.ErrStackUnderflow, offset,
			"%s needs %d operand(s), stack has %d", vm.opcodeName(offset), n, len(vm.stack))
	}
	return nil
}

func (vm *VirtualMachine) push(offset int, v value.Value) error {
	if len(vm.stack) >= vm.maxStackDepth {
		return vm.runtimeError(errz.ErrStackOverflow, offset, "limit is %d", vm.maxStackDepth)
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VirtualMachine) pop() value.Value {
	top := len(vm.stack) - 1
	v := vm.stack[top]
	vm.stack = vm.stack[:top]
	return v
}

func (vm *VirtualMachine) notifyStep(offset int, opcode op.Code) error {
	line := vm.lineAt(offset)
	var event *StepEvent
	for i := range vm.watches {
		w := &vm.watches[i]
		if !w.wantsStep(line) {
			continue
		}
		if event == nil {
			instr, _ := vm.chunk.DisassembleInstruction(offset)
			event = &StepEvent{
				IP:          offset,
				Opcode:      opcode,
				OpcodeName:  opcode.String(),
				Line:        line,
				Stack:       vm.Stack(),
				Instruction: instr,
			}
		}
		if !w.observer.OnStep(*event) {
			return vm.runtimeError(errz.ErrHalted, offset, "")
		}
	}
	return nil
}

func (vm *VirtualMachine) notifyReturn(offset int, result value.Value) error {
	for i := range vm.watches {
		w := &vm.watches[i]
		if !w.cfg.ObserveReturns {
			continue
		}
		event := ReturnEvent{
			IP:         offset,
			Line:       vm.lineAt(offset),
			Value:      result,
			StackDepth: len(vm.stack),
		}
		if !w.observer.OnReturn(event) {
			return vm.runtimeError(errz.ErrHalted, offset, "")
		}
	}
	return nil
}

// lineAt returns the source line of the byte at offset. Past the end of the
// code it falls back to the line of the last byte.
func (vm *VirtualMachine) lineAt(offset int) int {
	if line, ok := vm.chunk.LineAt(offset); ok {
		return line
	}
	if line, ok := vm.chunk.LineAt(vm.chunk.Len() - 1); ok && offset >= vm.chunk.Len() {
		return line
	}
	return 0
}

func (vm *VirtualMachine) opcodeName(offset int) string {
	if offset < 0 || offset >= vm.chunk.Len() {
		return ""
	}
	return op.Code(vm.chunk.ByteAt(offset)).String()
}

func (vm *VirtualMachine) runtimeError(cause error, offset int, format string, args ...any) error {
	return errz.NewRuntimeError(cause, offset, vm.lineAt(offset), vm.opcodeName(offset), format, args...)
}

// IP returns the instruction pointer: the offset of the next byte the VM
// would have read.
func (vm *VirtualMachine) IP() int {
	return vm.ip
}

// StackDepth returns the number of values on the stack.
func (vm *VirtualMachine) StackDepth() int {
	return len(vm.stack)
}

// Stack returns a copy of the value stack, bottom first.
func (vm *VirtualMachine) Stack() []value.Value {
	if len(vm.stack) == 0 {
		return nil
	}
	stack := make([]value.Value, len(vm.stack))
	copy(stack, vm.stack)
	return stack
}

// TOS returns the value on top of the stack, if any. It reports false while
// the VM is running.
func (vm *VirtualMachine) TOS() (value.Value, bool) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if !vm.running && len(vm.stack) > 0 {
		return vm.stack[len(vm.stack)-1], true
	}
	return value.Value{}, false
}
