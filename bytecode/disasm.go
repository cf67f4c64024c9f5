package bytecode

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/bytelox/op"
	"github.com/deepnoodle-ai/bytelox/value"
)

// Instruction is one decoded instruction, or one undecodable byte.
type Instruction struct {
	Offset int
	// Line is the source line of the opcode byte, 0 if the line map has no
	// entry for it.
	Line int
	// SameLine is true when Line equals the line of the preceding byte.
	SameLine bool
	Opcode   op.Code
	// Known is false when the byte at Offset is not a defined opcode.
	Known    bool
	Operands []byte
	// Constant is the pool value referenced by a Constant instruction. It is
	// only meaningful when HasConstant is true.
	Constant    value.Value
	HasConstant bool
	// Diagnostic describes why the instruction could not be decoded cleanly.
	Diagnostic string
}

// Size returns the number of code bytes the instruction occupies.
func (i Instruction) Size() int {
	return 1 + len(i.Operands)
}

// Name returns the opcode name, or an UNKNOWN placeholder.
func (i Instruction) Name() string {
	return i.Opcode.String()
}

// String renders the instruction as one listing line, for example
//
//	0000    1 CONSTANT            0 '1.2'
func (i Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d ", i.Offset)
	switch {
	case i.SameLine:
		b.WriteString("   | ")
	case i.Line == 0:
		b.WriteString("   ? ")
	default:
		fmt.Fprintf(&b, "%4d ", i.Line)
	}
	if !i.Known {
		b.WriteString(i.Diagnostic)
		return b.String()
	}
	if len(i.Operands) == 0 && i.Diagnostic == "" {
		b.WriteString(i.Name())
		return b.String()
	}
	fmt.Fprintf(&b, "%-16s", i.Name())
	if len(i.Operands) > 0 {
		fmt.Fprintf(&b, " %4d", i.Operands[0])
	}
	if i.HasConstant {
		fmt.Fprintf(&b, " '%s'", i.Constant)
	}
	if i.Diagnostic != "" {
		fmt.Fprintf(&b, " <%s>", i.Diagnostic)
	}
	return b.String()
}

// DisassembleInstruction decodes the instruction starting at offset and
// returns it with the offset of the next instruction. It never panics for an
// offset inside the code: unknown opcodes advance exactly one byte, and a
// truncated operand ends the walk.
func (c *Chunk) DisassembleInstruction(offset int) (Instruction, int) {
	instr := Instruction{Offset: offset}
	if line, ok := c.LineAt(offset); ok {
		instr.Line = line
		if offset > 0 {
			prev, _ := c.LineAt(offset - 1)
			instr.SameLine = prev == line
		}
	}

	code, err := op.Decode(c.code[offset])
	if err != nil {
		instr.Opcode = op.Code(c.code[offset])
		instr.Diagnostic = err.Error()
		return instr, offset + 1
	}
	instr.Opcode = code
	instr.Known = true

	info := op.GetInfo(code)
	end := offset + info.Size()
	if end > len(c.code) {
		instr.Operands = copyBytes(c.code[offset+1:])
		instr.Diagnostic = fmt.Sprintf("truncated instruction: want %d operand byte(s), have %d",
			info.OperandWidth, len(instr.Operands))
		return instr, len(c.code)
	}
	if info.OperandWidth > 0 {
		instr.Operands = copyBytes(c.code[offset+1 : end])
	}

	if code == op.Constant {
		index := int(instr.Operands[0])
		if v, ok := c.ConstantAt(index); ok {
			instr.Constant = v
			instr.HasConstant = true
		} else {
			instr.Diagnostic = fmt.Sprintf("constant index %d out of range, pool size %d",
				index, len(c.constants))
		}
	}
	return instr, end
}

// Instructions decodes the whole code section.
func (c *Chunk) Instructions() []Instruction {
	var instructions []Instruction
	for offset := 0; offset < len(c.code); {
		var instr Instruction
		instr, offset = c.DisassembleInstruction(offset)
		instructions = append(instructions, instr)
	}
	return instructions
}

// Disassemble returns a human-readable listing of the chunk: a header, one
// line per instruction and the constant pool.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for _, instr := range c.Instructions() {
		sb.WriteString(instr.String())
		sb.WriteString("\n")
	}
	if len(c.constants) > 0 {
		fmt.Fprintf(&sb, "-- constants (%d) --\n", len(c.constants))
		for i, v := range c.constants {
			fmt.Fprintf(&sb, "[%4d] %s\n", i, v)
		}
	}
	return sb.String()
}
