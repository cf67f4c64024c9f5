package bytelox

import (
	"io"

	"github.com/deepnoodle-ai/bytelox/compiler"
	"github.com/deepnoodle-ai/bytelox/config"
	"github.com/deepnoodle-ai/bytelox/vm"
	"github.com/rs/zerolog"
)

// Option configures a compilation or execution.
type Option func(*options)

type options struct {
	trace         io.Writer
	listing       io.Writer
	tableListing  bool
	tokens        io.Writer
	logger        zerolog.Logger
	maxStackDepth int
	observers     []vm.Observer
	err           error
}

func collectOptions(opts ...Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerOpts() []compiler.Option {
	return []compiler.Option{compiler.WithLogger(o.logger)}
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{vm.WithLogger(o.logger)}
	if o.maxStackDepth > 0 {
		opts = append(opts, vm.WithMaxStackDepth(o.maxStackDepth))
	}
	for _, observer := range o.observers {
		opts = append(opts, vm.WithObserver(observer))
	}
	if o.trace != nil {
		opts = append(opts, vm.WithTrace(o.trace))
	}
	return opts
}

// WithTrace writes an execution trace to w: before each instruction, the
// stack contents and the disassembled instruction.
func WithTrace(w io.Writer) Option {
	return func(o *options) {
		o.trace = w
	}
}

// WithListing writes a disassembly of each compiled chunk to w before it
// runs.
func WithListing(w io.Writer) Option {
	return func(o *options) {
		o.listing = w
	}
}

// WithTableListing renders the listing as a table, colored when the output
// supports it. It has no effect without WithListing.
func WithTableListing() Option {
	return func(o *options) {
		o.tableListing = true
	}
}

// WithTokens writes the token stream of the source to w before compiling.
func WithTokens(w io.Writer) Option {
	return func(o *options) {
		o.tokens = w
	}
}

// WithLogger sets the logger passed to the compiler and the VM.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxStackDepth limits the VM value stack.
func WithMaxStackDepth(depth int) Option {
	return func(o *options) {
		o.maxStackDepth = depth
	}
}

// WithObserver adds an observer for VM execution events. This option is
// additive.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithConfig applies a loaded configuration. Trace output, listings and log
// lines are written to out. An invalid configuration makes Compile and
// Interpret fail before doing any work.
func WithConfig(cfg config.Config, out io.Writer) Option {
	return func(o *options) {
		if err := cfg.Validate(); err != nil {
			o.err = err
			return
		}
		logger, err := cfg.Logger(out)
		if err != nil {
			o.err = err
			return
		}
		o.logger = logger
		o.maxStackDepth = cfg.MaxStackDepth
		if cfg.Trace {
			o.trace = out
		}
		if cfg.PrintCode {
			o.listing = out
			o.tableListing = cfg.Color
		}
	}
}
