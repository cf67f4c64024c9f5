package vm

import (
	"fmt"
	"io"
	"strings"
)

// Tracer is an Observer that writes the stack and the disassembled
// instruction before every step. It never halts execution.
type Tracer struct {
	NoOpObserver
	w io.Writer
}

// NewTracer returns a Tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Config observes every step and no returns.
func (t *Tracer) Config() ObserverConfig {
	cfg := NewObserverConfig(StepAll)
	cfg.ObserveReturns = false
	return cfg
}

// OnStep writes two lines: the stack, bottom first, then the instruction.
//
//	          [ 1.2 ][ 3.4 ]
//	0004    | ADD
func (t *Tracer) OnStep(event StepEvent) bool {
	var sb strings.Builder
	sb.WriteString("          ")
	for _, v := range event.Stack {
		fmt.Fprintf(&sb, "[ %s ]", v)
	}
	sb.WriteString("\n")
	sb.WriteString(event.Instruction.String())
	sb.WriteString("\n")
	// Write errors are ignored; tracing has no effect on execution.
	io.WriteString(t.w, sb.String())
	return true
}

var _ Observer = (*Tracer)(nil)
