// Package bytecode provides the Chunk, the unit of compiled code executed by
// the virtual machine.
//
// A Chunk holds three append-only sections:
//
//   - code: the instruction bytes. Each instruction is a one-byte opcode from
//     the [github.com/deepnoodle-ai/bytelox/op] package followed by a fixed
//     number of operand bytes.
//   - lines: a run-length encoded map from code offset to source line, used
//     only for diagnostics.
//   - constants: the constant pool, referenced by one-byte operands. The pool
//     therefore holds at most [MaxConstants] values.
//
// The compiler grows a Chunk through the Write* and AddConstant methods and
// then hands it to the VM, which only reads it. Chunks are never mutated in
// place or truncated.
//
// # Disassembly
//
// [Chunk.DisassembleInstruction] decodes one instruction at a time and is
// total over arbitrary bytes: an unknown opcode is reported as a diagnostic and
// the walk advances exactly one byte. The same decoder backs static listings
// ([Chunk.Disassemble]) and the VM's execution tracer.
//
// # Serialization
//
// [Marshal] and [Unmarshal] encode a Chunk with CBOR so compiled code can be
// cached or moved between processes:
//
//	data, err := bytecode.Marshal(chunk)
//	if err != nil {
//	    return err
//	}
//	restored, err := bytecode.Unmarshal(data)
package bytecode
