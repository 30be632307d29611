// Package display prints a table as comma-joined lines.
package display

import (
	"bufio"
	"io"
	"strings"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// Render writes one line per row with the row's cells rendered by
// types.Text and joined by commas. A row that is not a sequence is printed
// as its own text. When the table is not a sequence at all, its value is
// printed as a single line.
func Render(w io.Writer, t *types.Table) error {
	bw := bufio.NewWriter(w)
	rows, ok := t.Rows()
	if !ok {
		bw.WriteString(types.Text(t.Data))
		bw.WriteByte('\n')
		return bw.Flush()
	}
	for _, r := range rows {
		bw.WriteString(Line(r))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Line renders one row.
func Line(row any) string {
	cells, ok := row.([]any)
	if !ok {
		return types.Text(row)
	}
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = types.Text(c)
	}
	return strings.Join(parts, ",")
}
