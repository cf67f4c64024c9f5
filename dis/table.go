package dis

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

type alignment int

const (
	alignLeft alignment = iota
	alignRight
	alignCenter
)

// cell is one table entry. Widths are measured on the plain text so styling
// never disturbs alignment.
type cell struct {
	text  string
	style *color.Color
}

func (c cell) width() int {
	return utf8.RuneCountInString(c.text)
}

func (c cell) render(width int, align alignment) string {
	text := c.text
	if c.style != nil && text != "" {
		text = c.style.Sprint(text)
	}
	pad := width - c.width()
	switch align {
	case alignRight:
		return strings.Repeat(" ", pad) + text
	case alignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
	default:
		return text + strings.Repeat(" ", pad)
	}
}

type table struct {
	header []cell
	rows   [][]cell
	align  []alignment
}

func newTable(header ...string) *table {
	t := &table{}
	for _, h := range header {
		t.header = append(t.header, cell{text: h})
	}
	return t
}

func (t *table) append(row ...cell) {
	t.rows = append(t.rows, row)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = h.width()
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) && c.width() > widths[i] {
				widths[i] = c.width()
			}
		}
	}
	return widths
}

func (t *table) columnAlignment(i int) alignment {
	if i < len(t.align) {
		return t.align[i]
	}
	return alignLeft
}

// render writes the whole table to w in one call.
func (t *table) render(w io.Writer) error {
	widths := t.widths()
	var sep strings.Builder
	sep.WriteString("+")
	for _, width := range widths {
		sep.WriteString(strings.Repeat("-", width+2))
		sep.WriteString("+")
	}
	separator := sep.String()

	var sb strings.Builder
	writeRow := func(row []cell, align func(int) alignment) {
		sb.WriteString("|")
		for i, width := range widths {
			var c cell
			if i < len(row) {
				c = row[i]
			}
			sb.WriteString(" ")
			sb.WriteString(c.render(width, align(i)))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(separator + "\n")
	writeRow(t.header, func(int) alignment { return alignCenter })
	sb.WriteString(separator + "\n")
	for _, row := range t.rows {
		writeRow(row, t.columnAlignment)
	}
	sb.WriteString(separator + "\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
