package vm

import (
	"github.com/deepnoodle-ai/bytelox/bytecode"
	"github.com/deepnoodle-ai/bytelox/value"
)

// Run the given chunk in a new Virtual Machine and return the result.
func Run(chunk *bytecode.Chunk, options ...Option) (value.Value, error) {
	return New(options...).Run(chunk)
}
