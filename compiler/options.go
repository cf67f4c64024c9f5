package compiler

import "github.com/rs/zerolog"

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for debug output about each compilation.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithMaxErrors sets how many diagnostics are collected before compilation
// stops. Values <= 0 select DefaultMaxErrors.
func WithMaxErrors(n int) Option {
	return func(c *Compiler) {
		if n <= 0 {
			n = DefaultMaxErrors
		}
		c.maxErrors = n
	}
}

// WithMaxDepth sets the maximum expression nesting depth. Values <= 0 select
// DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(c *Compiler) {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}
		c.maxDepth = depth
	}
}
