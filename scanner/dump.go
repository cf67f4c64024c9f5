package scanner

import (
	"fmt"
	"io"

	"github.com/deepnoodle-ai/bytelox/token"
)

// Dump scans source and writes one line per token to w, up to and including
// EOF. The line number is printed only when it changes:
//
//	   1 NUMBER       '1'
//	   | +            '+'
//	   2 NUMBER       '2'
func Dump(w io.Writer, source string) error {
	s := New(source)
	line := -1
	for {
		tok := s.ScanToken()
		if tok.Line != line {
			if _, err := fmt.Fprintf(w, "%4d ", tok.Line); err != nil {
				return err
			}
			line = tok.Line
		} else if _, err := io.WriteString(w, "   | "); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%-12s '%s'\n", tok.Type, tok.Lexeme()); err != nil {
			return err
		}
		if tok.Type == token.EOF {
			return nil
		}
	}
}
