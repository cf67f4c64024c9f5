package bytecode

import "github.com/deepnoodle-ai/bytelox/value"

// copyBytes returns a copy of the given byte slice.
func copyBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// copyValues returns a copy of the given value slice.
func copyValues(src []value.Value) []value.Value {
	if src == nil {
		return nil
	}
	dst := make([]value.Value, len(src))
	copy(dst, src)
	return dst
}

// copyLines returns a copy of the given line run slice.
func copyLines(src []LineRun) []LineRun {
	if src == nil {
		return nil
	}
	dst := make([]LineRun, len(src))
	copy(dst, src)
	return dst
}
