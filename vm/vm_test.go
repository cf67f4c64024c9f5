package vm

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/bytelox/bytecode"
	"github.com/deepnoodle-ai/bytelox/errz"
	"github.com/deepnoodle-ai/bytelox/op"
	"github.com/deepnoodle-ai/bytelox/value"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// arithmetic builds "lhs <opcode> rhs" followed by Return, all on line 1.
func arithmetic(t *testing.T, lhs, rhs float64, opcode op.Code) *bytecode.Chunk {
	t.Helper()
	c := bytecode.New()
	_, err := c.EmitConstant(value.Number(lhs), 1)
	require.Nil(t, err)
	_, err = c.EmitConstant(value.Number(rhs), 1)
	require.Nil(t, err)
	c.WriteOpcode(opcode, 1)
	c.WriteOpcode(op.Return, 1)
	return c
}

func requireNumber(t *testing.T, expected float64, v value.Value) {
	t.Helper()
	f, ok := v.AsNumber()
	require.True(t, ok, "expected a number, got %s", v.Kind())
	require.Equal(t, expected, f)
}

func requireRuntimeError(t *testing.T, err error, cause error) *errz.RuntimeError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, cause), "expected %v, got %v", cause, err)
	var rtErr *errz.RuntimeError
	require.True(t, errors.As(err, &rtErr))
	return rtErr
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		lhs, rhs float64
		opcode   op.Code
		expected float64
	}{
		{5, 2, op.Divide, 2.5},
		{5, 2, op.Subtract, 3},
		{1.5, 4, op.Multiply, 6},
		{1.2, 3.4, op.Add, 1.2 + 3.4},
		{-3, 3, op.Add, 0},
	}
	for _, tt := range tests {
		t.Run(tt.opcode.String(), func(t *testing.T) {
			machine := New()
			result, err := machine.Run(arithmetic(t, tt.lhs, tt.rhs, tt.opcode))
			require.Nil(t, err)
			requireNumber(t, tt.expected, result)
			require.Equal(t, 0, machine.StackDepth())
		})
	}
}

func TestReturnConstant(t *testing.T) {
	c := bytecode.New()
	_, err := c.EmitConstant(value.Number(1.2), 1)
	require.Nil(t, err)
	c.WriteOpcode(op.Return, 1)

	machine := New()
	result, err := machine.Run(c)
	require.Nil(t, err)
	requireNumber(t, 1.2, result)
	require.Equal(t, 0, machine.StackDepth())
	require.Nil(t, machine.Stack())
	require.Equal(t, c.Len(), machine.IP())
}

func TestNegate(t *testing.T) {
	c := bytecode.New()
	_, err := c.EmitConstant(value.Number(1.2), 123)
	require.Nil(t, err)
	_, err = c.EmitConstant(value.Number(3.4), 123)
	require.Nil(t, err)
	c.WriteOpcode(op.Add, 123)
	c.WriteOpcode(op.Negate, 124)
	c.WriteOpcode(op.Return, 124)

	result, err := Run(c)
	require.Nil(t, err)
	requireNumber(t, -(1.2 + 3.4), result)
}

func TestDivideByZero(t *testing.T) {
	result, err := Run(arithmetic(t, 1, 0, op.Divide))
	require.Nil(t, err)
	f, _ := result.AsNumber()
	require.True(t, math.IsInf(f, 1))

	result, err = Run(arithmetic(t, -1, 0, op.Divide))
	require.Nil(t, err)
	f, _ = result.AsNumber()
	require.True(t, math.IsInf(f, -1))

	result, err = Run(arithmetic(t, 0, 0, op.Divide))
	require.Nil(t, err)
	f, _ = result.AsNumber()
	require.True(t, math.IsNaN(f))
}

func TestPopDiscardsValue(t *testing.T) {
	c := bytecode.New()
	_, err := c.EmitConstant(value.Number(1), 1)
	require.Nil(t, err)
	c.WriteOpcode(op.Pop, 1)
	_, err = c.EmitConstant(value.Number(2), 2)
	require.Nil(t, err)
	c.WriteOpcode(op.Return, 2)

	result, err := Run(c)
	require.Nil(t, err)
	requireNumber(t, 2, result)
}

func TestReturnLeavesRemainingStack(t *testing.T) {
	c := bytecode.New()
	_, err := c.EmitConstant(value.Number(1), 1)
	require.Nil(t, err)
	_, err = c.EmitConstant(value.Number(2), 1)
	require.Nil(t, err)
	c.WriteOpcode(op.Return, 1)

	machine := New()
	result, err := machine.Run(c)
	require.Nil(t, err)
	requireNumber(t, 2, result)
	require.Equal(t, []value.Value{value.Number(1)}, machine.Stack())
	tos, ok := machine.TOS()
	require.True(t, ok)
	requireNumber(t, 1, tos)
}

func TestStackUnderflow(t *testing.T) {
	for _, opcode := range []op.Code{op.Add, op.Subtract, op.Multiply, op.Divide, op.Negate, op.Pop, op.Return} {
		t.Run(opcode.String(), func(t *testing.T) {
			c := bytecode.New()
			c.WriteOpcode(opcode, 7)
			c.WriteOpcode(op.Return, 7)

			machine := New()
			_, err := machine.Run(c)
			rtErr := requireRuntimeError(t, err, errz.ErrStackUnderflow)
			require.Equal(t, 0, rtErr.Offset)
			require.Equal(t, 7, rtErr.Line)
			require.Equal(t, opcode.String(), rtErr.Opcode)
			require.Equal(t, 0, machine.StackDepth())
		})
	}
}

func TestBinaryUnderflowLeavesStackUnchanged(t *testing.T) {
	c := bytecode.New()
	_, err := c.EmitConstant(value.Number(9), 1)
	require.Nil(t, err)
	c.WriteOpcode(op.Add, 2)
	c.WriteOpcode(op.Return, 2)

	machine := New()
	_, err = machine.Run(c)
	rtErr := requireRuntimeError(t, err, errz.ErrStackUnderflow)
	require.Equal(t, 2, rtErr.Offset)
	require.Equal(t, 2, rtErr.Line)
	require.Equal(t, []value.Value{value.Number(9)}, machine.Stack())
	require.Contains(t, err.Error(), "ADD needs 2 operand(s), stack has 1")
}

func TestUnknownOpcode(t *testing.T) {
	c := bytecode.New()
	c.WriteOperand(200, 3)
	c.WriteOpcode(op.Return, 3)

	_, err := Run(c)
	rtErr := requireRuntimeError(t, err, errz.ErrUnknownOpcode)
	require.Equal(t, 0, rtErr.Offset)
	require.Equal(t, 3, rtErr.Line)
	require.Equal(t, "UNKNOWN(200)", rtErr.Opcode)
}

func TestConstantIndexOutOfRange(t *testing.T) {
	c := bytecode.New()
	c.WriteOpcode(op.Constant, 1)
	c.WriteOperand(7, 1)
	c.WriteOpcode(op.Return, 1)

	_, err := Run(c)
	rtErr := requireRuntimeError(t, err, errz.ErrConstantIndex)
	require.Equal(t, 0, rtErr.Offset)
	require.Contains(t, rtErr.Message, "index 7, pool size 0")
}

func TestConstantMissingOperand(t *testing.T) {
	c := bytecode.New()
	c.WriteOpcode(op.Constant, 1)

	_, err := Run(c)
	rtErr := requireRuntimeError(t, err, errz.ErrConstantIndex)
	require.Contains(t, rtErr.Message, "missing operand")
}

func TestMissingReturn(t *testing.T) {
	c := bytecode.New()
	_, err := c.EmitConstant(value.Number(1), 4)
	require.Nil(t, err)

	machine := New()
	_, err = machine.Run(c)
	rtErr := requireRuntimeError(t, err, errz.ErrUnexpectedEnd)
	require.Equal(t, 2, rtErr.Offset)
	require.Equal(t, 4, rtErr.Line)
	require.Equal(t, 1, machine.StackDepth())

	_, err = Run(bytecode.New())
	requireRuntimeError(t, err, errz.ErrUnexpectedEnd)
}

func TestStackOverflow(t *testing.T) {
	c := bytecode.New()
	for i := 0; i < 3; i++ {
		_, err := c.EmitConstant(value.Number(float64(i)), 1)
		require.Nil(t, err)
	}
	c.WriteOpcode(op.Return, 1)

	machine := New(WithMaxStackDepth(2))
	_, err := machine.Run(c)
	rtErr := requireRuntimeError(t, err, errz.ErrStackOverflow)
	require.Equal(t, 4, rtErr.Offset)
	require.Equal(t, 2, machine.StackDepth())

	// The default limit is large enough for this chunk
	result, err := Run(c)
	require.Nil(t, err)
	requireNumber(t, 2, result)
}

func TestDefaultStackLimit(t *testing.T) {
	c := bytecode.New()
	for i := 0; i < DefaultMaxStackDepth+1; i++ {
		idx := i % bytecode.MaxConstants
		if i < bytecode.MaxConstants {
			_, err := c.AddConstant(value.Number(float64(i)))
			require.Nil(t, err)
		}
		require.Nil(t, c.WriteConstant(idx, 1))
	}
	c.WriteOpcode(op.Return, 1)

	_, err := Run(c)
	requireRuntimeError(t, err, errz.ErrStackOverflow)

	result, err := Run(c, WithMaxStackDepth(DefaultMaxStackDepth+1))
	require.Nil(t, err)
	requireNumber(t, 0, result)
}

func TestRunNilChunk(t *testing.T) {
	_, err := New().Run(nil)
	require.True(t, errors.Is(err, ErrNilChunk))
}

func TestMachineIsReusable(t *testing.T) {
	machine := New()
	result, err := machine.Run(arithmetic(t, 5, 2, op.Divide))
	require.Nil(t, err)
	requireNumber(t, 2.5, result)

	_, err = machine.Run(bytecode.New())
	require.Error(t, err)

	result, err = machine.Run(arithmetic(t, 2, 3, op.Multiply))
	require.Nil(t, err)
	requireNumber(t, 6, result)
	require.Equal(t, 0, machine.StackDepth())
}

func TestChunkSharedBetweenMachines(t *testing.T) {
	c := arithmetic(t, 7, 2, op.Subtract)
	code := c.Code()
	for i := 0; i < 3; i++ {
		result, err := New().Run(c)
		require.Nil(t, err)
		requireNumber(t, 5, result)
	}
	require.Equal(t, code, c.Code())
}

func TestRuntimeErrorFriendlyMessage(t *testing.T) {
	c := bytecode.New()
	c.WriteOpcode(op.Negate, 12)

	_, err := Run(c)
	var friendly errz.FriendlyError
	require.True(t, errors.As(err, &friendly))
	require.Equal(t,
		"stack underflow: NEGATE needs 1 operand(s), stack has 0\n[line 12] in script at 0000 NEGATE\n",
		friendly.FriendlyErrorMessage())
}

func TestLoggerReceivesRunEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	c := arithmetic(t, 1, 2, op.Add)

	_, err := Run(c, WithLogger(logger))
	require.Nil(t, err)
	require.Contains(t, buf.String(), `"message":"run started"`)
	require.Contains(t, buf.String(), `"message":"run finished"`)
	require.Contains(t, buf.String(), c.ID())

	buf.Reset()
	_, err = Run(bytecode.New(), WithLogger(logger))
	require.Error(t, err)
	require.Contains(t, buf.String(), `"message":"run failed"`)
}

func TestRandomCodeNeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 500; trial++ {
		c := bytecode.New()
		constants := rng.Intn(4)
		for i := 0; i < constants; i++ {
			_, err := c.AddConstant(value.Number(rng.NormFloat64()))
			require.Nil(t, err)
		}
		size := rng.Intn(32)
		for i := 0; i < size; i++ {
			// Bias towards defined opcodes so runs get past the first byte
			b := byte(rng.Intn(int(op.Count) + 2))
			c.WriteOperand(b, 1+i/3)
		}
		_, err := Run(c, WithMaxStackDepth(8), WithTrace(&bytes.Buffer{}))
		if err != nil {
			require.False(t, strings.HasPrefix(err.Error(), "panic:"), err.Error())
			var rtErr *errz.RuntimeError
			require.True(t, errors.As(err, &rtErr), err.Error())
		}
	}
}
