package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// columnGap separates table columns
const columnGap = "  "

// Table is a plain column listing: scan results, capture summaries
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given column headings
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) *Table {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
	return t
}

// Render lays the table out with columns padded to their widest cell
func (t *Table) Render() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if n := lipgloss.Width(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(t.Headers, widths, TableHeaderStyle))
	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(renderRow(row, widths, TableCellStyle))
	}
	return b.String()
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := ""
		if i < len(cells)-1 {
			pad = strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		parts[i] = style.Render(cell) + pad
	}
	return "  " + strings.Join(parts, columnGap)
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}
