package value

import (
	"fmt"

	"github.com/deepnoodle-ai/bytelox/errz"
)

// BinaryOpType is an arithmetic operation taking two operands.
type BinaryOpType uint8

const (
	Add BinaryOpType = iota + 1
	Subtract
	Multiply
	Divide
)

// String returns the operator symbol, for example "+" for Add.
func (bop BinaryOpType) String() string {
	switch bop {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return ""
	}
}

// BinaryOp applies bop to a and b, with a as the left operand. Division by
// zero follows IEEE-754 and yields an infinity or NaN rather than an error.
func BinaryOp(bop BinaryOpType, a, b Value) (Value, error) {
	x, okA := a.AsNumber()
	y, okB := b.AsNumber()
	if !okA || !okB {
		return Value{}, fmt.Errorf("%w: operands of %s must be numbers (got %s and %s)",
			errz.ErrOperandType, bop, a.Kind(), b.Kind())
	}
	switch bop {
	case Add:
		return Number(x + y), nil
	case Subtract:
		return Number(x - y), nil
	case Multiply:
		return Number(x * y), nil
	case Divide:
		return Number(x / y), nil
	default:
		return Value{}, fmt.Errorf("unsupported binary operation %d", bop)
	}
}

// Negate returns -v.
func Negate(v Value) (Value, error) {
	x, ok := v.AsNumber()
	if !ok {
		return Value{}, fmt.Errorf("%w: operand of negation must be a number (got %s)",
			errz.ErrOperandType, v.Kind())
	}
	return Number(-x), nil
}
