package pdf

import "strings"

// NormalizeTable converts a detected rows-by-cells grid into a markdown
// table: first row as header, a --- separator, remaining rows as body.
// Normalization is deterministic — the same grid always yields byte-identical
// markup. Ragged rows are padded with empty cells to the widest row rather
// than rejected; this is a documented lossy fallback, not a failure.
// Returns "" for grids with no cells.
func NormalizeTable(grid [][]string) string {
	maxCols := 0
	for _, row := range grid {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	if maxCols == 0 {
		return ""
	}

	renderRow := func(row []string) string {
		cells := make([]string, maxCols)
		for i := range cells {
			if i < len(row) {
				cells[i] = escapeCell(row[i])
			}
		}
		return "| " + strings.Join(cells, " | ") + " |"
	}

	lines := make([]string, 0, len(grid)+1)
	lines = append(lines, renderRow(grid[0]))

	separator := make([]string, maxCols)
	for i := range separator {
		separator[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(separator, " | ")+" |")

	for _, row := range grid[1:] {
		lines = append(lines, renderRow(row))
	}

	return strings.Join(lines, "\n")
}

// escapeCell keeps cell content on one markdown table line: pipes are
// escaped and embedded line breaks collapse to spaces.
func escapeCell(cell string) string {
	cell = strings.ReplaceAll(cell, "\r\n", " ")
	cell = strings.ReplaceAll(cell, "\n", " ")
	cell = strings.ReplaceAll(cell, "|", `\|`)
	return strings.TrimSpace(cell)
}
