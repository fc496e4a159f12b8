package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Rana718/tablekeep/internal/tables"
)

// RenderTable draws rows as a box table. A leading "#" column holds the row
// index.
func RenderTable(w io.Writer, columns []string, rows []tables.Row) {
	header := append([]string{"#"}, columns...)
	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, 0, len(header))
		line = append(line, fmt.Sprint(i))
		for _, col := range columns {
			line = append(line, row.Get(col))
		}
		cells[i] = line
	}

	widths := make([]int, len(header))
	for i, col := range header {
		widths[i] = runewidth.StringWidth(col)
	}
	for _, line := range cells {
		for i, val := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(val))
		}
	}

	border := func(left, mid, right string) {
		fmt.Fprint(w, left)
		for i, width := range widths {
			fmt.Fprint(w, strings.Repeat("─", width+2))
			if i < len(widths)-1 {
				fmt.Fprint(w, mid)
			}
		}
		fmt.Fprintln(w, right)
	}
	line := func(vals []string) {
		fmt.Fprint(w, "│")
		for i, val := range vals {
			fmt.Fprintf(w, " %s │", runewidth.FillRight(val, widths[i]))
		}
		fmt.Fprintln(w)
	}

	border("┌", "┬", "┐")
	line(header)
	border("├", "┼", "┤")
	for _, vals := range cells {
		line(vals)
	}
	border("└", "┴", "┘")
}
