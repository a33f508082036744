package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table collects rows and writes them as aligned columns below a
// highlighted header and a dashed rule.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable starts a table with the given column titles.
func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// Row appends a row. Cells are formatted with %v.
func (t *Table) Row(cells ...any) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = fmt.Sprint(c)
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// WriteTo renders the table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	rule := make([]string, len(t.header))
	for i, h := range t.header {
		rule[i] = strings.Repeat("-", len(h))
	}

	fmt.Fprintln(tw, strings.Join(t.header, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}

	// Style the header after alignment so escape codes do not count as
	// column width.
	lines := strings.SplitAfterN(sb.String(), "\n", 2)
	out := HeaderStyle.Render(strings.TrimSuffix(lines[0], "\n")) + "\n"
	if len(lines) > 1 {
		out += lines[1]
	}

	n, err := io.WriteString(w, out)
	return int64(n), err
}
