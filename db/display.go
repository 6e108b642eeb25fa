package db

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Grid renders rows as an ASCII grid. Widths count characters, so
// multi-byte text stays aligned.
type Grid struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewGrid creates a grid writing to w
func NewGrid(w io.Writer) *Grid {
	return &Grid{
		writer: w,
		rows:   make([][]string, 0),
	}
}

// Header sets the table headers
func (g *Grid) Header(headers []string) {
	g.headers = headers
}

// Row adds a single row
func (g *Grid) Row(row []string) {
	g.rows = append(g.rows, row)
}

// Bulk adds multiple rows
func (g *Grid) Bulk(rows [][]string) {
	g.rows = append(g.rows, rows...)
}

// Render outputs the formatted table
func (g *Grid) Render() {
	if len(g.headers) == 0 && len(g.rows) == 0 {
		return
	}

	// Calculate column widths
	colWidths := g.calculateWidths()

	// Build separator line
	separator := g.buildSeparator(colWidths)

	// Print table
	fmt.Fprintln(g.writer, separator)

	// Print headers
	if len(g.headers) > 0 {
		fmt.Fprintln(g.writer, g.formatRow(g.headers, colWidths))
		fmt.Fprintln(g.writer, separator)
	}

	// Print rows
	for _, row := range g.rows {
		fmt.Fprintln(g.writer, g.formatRow(row, colWidths))
	}

	fmt.Fprintln(g.writer, separator)
}

// calculateWidths determines the width needed for each column
func (g *Grid) calculateWidths() []int {
	// Determine number of columns
	numCols := len(g.headers)
	for _, row := range g.rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	widths := make([]int, numCols)

	// Check header widths
	for i, h := range g.headers {
		widths[i] = max(widths[i], utf8.RuneCountInString(h))
	}

	// Check row widths
	for _, row := range g.rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	for i := range widths {
		widths[i] = max(widths[i], 1)
	}

	return widths
}

// buildSeparator creates the horizontal line
func (g *Grid) buildSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

// formatRow formats a single row with proper padding
func (g *Grid) formatRow(row []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts[i] = " " + cell + strings.Repeat(" ", w-utf8.RuneCountInString(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}
