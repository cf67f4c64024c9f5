// Package dis prints bytecode listings as tables. It works with the
// instructions decoded by the bytecode package.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/bytelox/bytecode"
	"github.com/fatih/color"
)

var (
	headerStyle   = color.New(color.Bold)
	opcodeStyle   = color.New(color.Bold)
	constantStyle = color.New(color.FgYellow)
	warningStyle  = color.New(color.FgRed)
)

// Disassemble returns the decoded instructions of the chunk.
func Disassemble(c *bytecode.Chunk) []bytecode.Instruction {
	return c.Instructions()
}

// Print writes a table of the given instructions to writer. Colors follow
// color.NoColor, which fatih/color sets when the output is not a terminal.
// The only errors returned come from writer.
func Print(instructions []bytecode.Instruction, writer io.Writer) error {
	t := newTable("OFFSET", "LINE", "OPCODE", "OPERANDS", "INFO")
	t.align = []alignment{alignRight, alignRight, alignLeft, alignRight, alignLeft}
	for _, instr := range instructions {
		line := ""
		switch {
		case instr.SameLine:
			line = "|"
		case instr.Line > 0:
			line = fmt.Sprintf("%d", instr.Line)
		default:
			line = "?"
		}
		info := cell{}
		switch {
		case instr.HasConstant:
			info = cell{text: instr.Constant.String(), style: constantStyle}
		case instr.Diagnostic != "":
			info = cell{text: instr.Diagnostic, style: warningStyle}
		}
		t.append(
			cell{text: fmt.Sprintf("%d", instr.Offset)},
			cell{text: line},
			cell{text: instr.Name(), style: opcodeStyle},
			cell{text: formatOperands(instr.Operands)},
			info,
		)
	}
	return t.render(writer)
}

// PrintChunk decodes the chunk and prints it under a header naming it.
func PrintChunk(c *bytecode.Chunk, name string, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%s\n", headerStyle.Sprintf("== %s ==", name)); err != nil {
		return err
	}
	return Print(c.Instructions(), writer)
}

func formatOperands(operands []byte) string {
	var sb strings.Builder
	for i, b := range operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", b))
	}
	return sb.String()
}
