package pdf

import "strings"

// Layout thresholds, in PDF points. A horizontal gap wider than cellGap
// separates two cells of the same row; a gap wider than a quarter of the
// font size separates two words inside one cell.
const (
	cellGap      = 14.0
	minTableRows = 2
	minTableCols = 2
)

// span is one positioned text run on a page line.
type span struct {
	x, w, fontSize float64
	text           string
}

// textRow is one visual line of a page, spans ordered left to right.
type textRow []span

// pageContent is the layout analysis of one page: the narrative text with
// table lines excluded, and each detected table as a rows-by-cells grid.
type pageContent struct {
	narrative string
	tables    [][][]string
}

// analyzeRows partitions page rows into table blocks and narrative lines.
// A table block is a run of at least minTableRows consecutive rows that each
// split into at least minTableCols cells; everything else is narrative.
func analyzeRows(rows []textRow) pageContent {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = splitCells(row)
	}

	var content pageContent
	var narrative []string

	i := 0
	for i < len(rows) {
		if len(cells[i]) < minTableCols {
			if line := strings.Join(cells[i], " "); line != "" {
				narrative = append(narrative, line)
			}
			i++
			continue
		}

		// Candidate table block: extend while rows keep splitting into cells.
		j := i
		for j < len(rows) && len(cells[j]) >= minTableCols {
			j++
		}
		if j-i >= minTableRows {
			content.tables = append(content.tables, cells[i:j])
		} else {
			// A lone multi-cell row is narrative, not a table.
			for k := i; k < j; k++ {
				if line := strings.Join(cells[k], " "); line != "" {
					narrative = append(narrative, line)
				}
			}
		}
		i = j
	}

	content.narrative = strings.TrimSpace(strings.Join(narrative, "\n"))
	return content
}

// splitCells groups a row's spans into cells by horizontal gaps. Spans closer
// than cellGap merge into one cell, with a space inserted when the gap still
// exceeds a quarter of the font size (PDF text runs often omit spaces).
func splitCells(row textRow) []string {
	var cells []string
	var cur strings.Builder
	var prevEnd float64
	started := false

	flush := func() {
		if cell := strings.TrimSpace(cur.String()); cell != "" {
			cells = append(cells, cell)
		}
		cur.Reset()
	}

	for _, s := range row {
		if s.text == "" {
			continue
		}
		if started {
			gap := s.x - prevEnd
			if gap > cellGap {
				flush()
			} else if gap > 0.25*s.fontSize {
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(s.text)
		prevEnd = s.x + s.w
		started = true
	}
	flush()

	return cells
}
