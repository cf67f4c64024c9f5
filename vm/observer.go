package vm

import (
	"github.com/deepnoodle-ai/bytelox/bytecode"
	"github.com/deepnoodle-ai/bytelox/op"
	"github.com/deepnoodle-ai/bytelox/value"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	// Use for: detailed tracing, instruction-level debugging.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	// Use for: observers that only need the Return event.
	StepNone

	// StepSampled calls OnStep every N instructions.
	// Use for: statistical profiling of long chunks.
	StepSampled

	// StepOnLine calls OnStep when the source line changes.
	// Use for: coverage tools and line-level debugging.
	StepOnLine
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	// Ignored for other modes.
	SampleInterval int

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with safe defaults.
// ObserveReturns defaults to true.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing VM execution events. It can be used
// for tracing, profiling or coverage without modifying the VM itself.
//
// Observer methods are called synchronously during execution. Implementations
// can embed NoOpObserver to get defaults for methods they don't need.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once at the start of each run.
	Config() ObserverConfig

	// OnStep is called before an instruction executes, based on the
	// StepMode in the observer's config.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool

	// OnReturn is called when a Return instruction ends the run (if
	// ObserveReturns is true).
	// Returns false to fail the run with a halt error.
	OnReturn(event ReturnEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the offset of the opcode about to execute.
	IP int

	// Opcode is the operation being executed. It may be an undefined code
	// when the chunk is malformed.
	Opcode op.Code

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Line is the source line of the instruction, 0 if unknown.
	Line int

	// Stack is a copy of the value stack, bottom first.
	Stack []value.Value

	// Instruction is the decoded instruction at IP.
	Instruction bytecode.Instruction
}

// StackDepth returns the depth of the value stack when the event fired.
func (e StepEvent) StackDepth() int {
	return len(e.Stack)
}

// ReturnEvent contains information about the end of a run.
type ReturnEvent struct {
	// IP is the offset of the Return instruction.
	IP int

	// Line is the source line of the Return instruction.
	Line int

	// Value is the value being returned.
	Value value.Value

	// StackDepth is the depth of the stack after the result was popped.
	StackDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
//
// NoOpObserver uses StepAll mode with ObserveReturns enabled. Override
// Config() in your observer to use a different mode.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}

