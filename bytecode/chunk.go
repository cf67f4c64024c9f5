package bytecode

import (
	"fmt"

	"github.com/deepnoodle-ai/bytelox/errz"
	"github.com/deepnoodle-ai/bytelox/op"
	"github.com/deepnoodle-ai/bytelox/value"
	"github.com/gofrs/uuid"
)

// MaxConstants is the constant pool capacity. Pool references are encoded in
// a single operand byte.
const MaxConstants = 256

// Chunk is a compiled unit: instruction bytes, a line map and a constant pool.
type Chunk struct {
	id        string
	code      []byte
	lines     []LineRun
	constants []value.Value
}

// New creates an empty chunk with a fresh identifier.
func New() *Chunk {
	return &Chunk{
		id:   uuid.Must(uuid.NewV4()).String(),
		code: make([]byte, 0, 64),
	}
}

// ID returns the unique identifier of this chunk.
func (c *Chunk) ID() string {
	return c.id
}

// WriteOpcode appends an opcode byte compiled from the given source line.
func (c *Chunk) WriteOpcode(code op.Code, line int) {
	c.write(code.Byte(), line)
}

// WriteOperand appends an operand byte compiled from the given source line.
func (c *Chunk) WriteOperand(b byte, line int) {
	c.write(b, line)
}

func (c *Chunk) write(b byte, line int) {
	c.lines = appendLine(c.lines, len(c.code), line)
	c.code = append(c.code, b)
}

// AddConstant appends v to the constant pool and returns its index. It fails
// once the pool holds MaxConstants values.
func (c *Chunk) AddConstant(v value.Value) (int, error) {
	if len(c.constants) >= MaxConstants {
		return 0, fmt.Errorf("%w: limit is %d", errz.ErrTooManyConstants, MaxConstants)
	}
	c.constants = append(c.constants, v)
	return len(c.constants) - 1, nil
}

// WriteConstant emits a Constant instruction referencing the pool entry at
// index. The index must already exist in the pool and fit in one byte.
func (c *Chunk) WriteConstant(index, line int) error {
	if index < 0 || index >= MaxConstants {
		return fmt.Errorf("%w: index %d does not fit in one byte", errz.ErrConstantIndex, index)
	}
	if index >= len(c.constants) {
		return fmt.Errorf("%w: index %d, pool size %d", errz.ErrConstantIndex, index, len(c.constants))
	}
	c.WriteOpcode(op.Constant, line)
	c.WriteOperand(byte(index), line)
	return nil
}

// EmitConstant adds v to the pool and emits the Constant instruction that
// loads it. It returns the pool index.
func (c *Chunk) EmitConstant(v value.Value, line int) (int, error) {
	index, err := c.AddConstant(v)
	if err != nil {
		return 0, err
	}
	if err := c.WriteConstant(index, line); err != nil {
		return 0, err
	}
	return index, nil
}

// Len returns the length of the code section in bytes.
func (c *Chunk) Len() int {
	return len(c.code)
}

// ByteAt returns the code byte at offset.
func (c *Chunk) ByteAt(offset int) byte {
	return c.code[offset]
}

// Code returns a copy of the code section.
func (c *Chunk) Code() []byte {
	return copyBytes(c.code)
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at index and whether the index is valid.
func (c *Chunk) ConstantAt(index int) (value.Value, bool) {
	if index < 0 || index >= len(c.constants) {
		return value.Value{}, false
	}
	return c.constants[index], true
}

// Constants returns a copy of the constant pool in insertion order.
func (c *Chunk) Constants() []value.Value {
	return copyValues(c.constants)
}

// LineAt returns the source line for the code byte at offset.
func (c *Chunk) LineAt(offset int) (int, bool) {
	if offset < 0 || offset >= len(c.code) {
		return 0, false
	}
	return lineAt(c.lines, offset)
}

// LineRuns returns a copy of the run-length encoded line map.
func (c *Chunk) LineRuns() []LineRun {
	return copyLines(c.lines)
}

// Stats returns statistics about this chunk.
func (c *Chunk) Stats() Stats {
	return Stats{
		CodeBytes:        len(c.code),
		InstructionCount: len(c.Instructions()),
		ConstantCount:    len(c.constants),
		LineRuns:         len(c.lines),
	}
}
