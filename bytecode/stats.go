package bytecode

// Stats contains statistics about a compiled chunk.
// This is useful for auditing code before execution.
type Stats struct {
	// CodeBytes is the total size of the instruction stream in bytes.
	CodeBytes int

	// InstructionCount is the number of decoded instructions, counting each
	// undecodable byte as one instruction.
	InstructionCount int

	// ConstantCount is the number of constants in the constant pool.
	ConstantCount int

	// LineRuns is the number of entries in the run-length encoded line map.
	LineRuns int
}
