// Package op defines the opcodes understood by the compiler and virtual machine.
package op

import (
	"fmt"

	"github.com/deepnoodle-ai/bytelox/errz"
)

// Code is a one-byte opcode that indicates an operation to execute.
type Code uint8

const (
	Constant Code = 0
	Add      Code = 1
	Subtract Code = 2
	Multiply Code = 3
	Divide   Code = 4
	Negate   Code = 5
	Return   Code = 6
	Pop      Code = 7

	// Count is the number of defined opcodes. Every byte at or above Count
	// is an unknown opcode.
	Count = 8
)

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	// OperandWidth is the number of operand bytes following the opcode.
	OperandWidth int
}

// Size returns the total encoded size of the instruction in bytes.
func (i Info) Size() int {
	return 1 + i.OperandWidth
}

var infos [Count]Info

func init() {
	type opInfo struct {
		op    Code
		name  string
		width int
	}
	ops := []opInfo{
		{Constant, "CONSTANT", 1},
		{Add, "ADD", 0},
		{Subtract, "SUBTRACT", 0},
		{Multiply, "MULTIPLY", 0},
		{Divide, "DIVIDE", 0},
		{Negate, "NEGATE", 0},
		{Return, "RETURN", 0},
		{Pop, "POP", 0},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:         o.op,
			Name:         o.name,
			OperandWidth: o.width,
		}
	}
}

// GetInfo returns information about the given opcode. It panics if op is not
// a defined opcode; use Decode on untrusted bytes.
func GetInfo(op Code) Info {
	return infos[op]
}

// Byte encodes the opcode.
func (c Code) Byte() byte {
	return byte(c)
}

// Valid reports whether c is a defined opcode.
func (c Code) Valid() bool {
	return c < Count
}

// String returns the opcode name, or a numeric placeholder for unknown codes.
func (c Code) String() string {
	if !c.Valid() {
		return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
	}
	return infos[c].Name
}

// Decode converts a raw byte into an opcode, failing with
// errz.ErrUnknownOpcode if the byte is outside the defined set.
func Decode(b byte) (Code, error) {
	c := Code(b)
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", errz.ErrUnknownOpcode, b)
	}
	return c, nil
}

// Encode returns the byte for c, failing for values outside the defined set.
func Encode(c Code) (byte, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("%w: %d", errz.ErrUnknownOpcode, uint8(c))
	}
	return byte(c), nil
}

// IsBinary reports whether c pops two operands and pushes one result.
func (c Code) IsBinary() bool {
	switch c {
	case Add, Subtract, Multiply, Divide:
		return true
	default:
		return false
	}
}
