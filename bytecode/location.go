package bytecode

import (
	"fmt"
	"sort"
)

// LineRun records that every code byte from Offset up to the next run's
// Offset was compiled from source line Line.
type LineRun struct {
	Offset int
	Line   int
}

// String returns a formatted string representation of the run.
func (r LineRun) String() string {
	return fmt.Sprintf("%d@%d", r.Line, r.Offset)
}

// appendLine extends runs with a byte at offset compiled from line. Offsets
// must be appended in increasing order.
func appendLine(runs []LineRun, offset, line int) []LineRun {
	if n := len(runs); n > 0 && runs[n-1].Line == line {
		return runs
	}
	return append(runs, LineRun{Offset: offset, Line: line})
}

// lineAt returns the line of the run covering offset.
func lineAt(runs []LineRun, offset int) (int, bool) {
	// Index of the first run starting after offset
	i := sort.Search(len(runs), func(i int) bool {
		return runs[i].Offset > offset
	})
	if i == 0 {
		return 0, false
	}
	return runs[i-1].Line, true
}

// validateLines checks that runs are strictly increasing, name positive
// lines and, for non-empty code, start at offset 0 and stay within the code.
func validateLines(runs []LineRun, codeLen int) error {
	if codeLen == 0 {
		if len(runs) > 0 {
			return fmt.Errorf("line map has %d runs for empty code", len(runs))
		}
		return nil
	}
	if len(runs) == 0 || runs[0].Offset != 0 {
		return fmt.Errorf("line map does not cover offset 0")
	}
	for i, run := range runs {
		if run.Offset >= codeLen {
			return fmt.Errorf("line run %d starts at offset %d beyond code length %d", i, run.Offset, codeLen)
		}
		if run.Line <= 0 {
			return fmt.Errorf("line run %d has invalid line %d", i, run.Line)
		}
		if i > 0 && run.Offset <= runs[i-1].Offset {
			return fmt.Errorf("line run %d is out of order", i)
		}
	}
	return nil
}
