package pdf

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	lpdf "github.com/ledongthuc/pdf"
)

// Parser extracts typed content units from PDF documents.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile parses the PDF at path. The document is identified by docID
// across ingestion and citation (typically the file name).
func (p *Parser) ParseFile(path, docID string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	return p.Parse(f, info.Size(), docID)
}

// Parse parses a PDF byte stream into ordered content units. A page that
// cannot be parsed is recorded as a warning and skipped; it never aborts the
// remaining pages.
func (p *Parser) Parse(r io.ReaderAt, size int64, docID string) (*Result, error) {
	reader, err := lpdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", docID, err)
	}

	result := &Result{
		DocumentID: docID,
		PageCount:  reader.NumPage(),
	}

	for pageNum := 1; pageNum <= result.PageCount; pageNum++ {
		units, err := p.parsePage(reader, docID, pageNum)
		if err != nil {
			p.logger.Warn("skipping unparseable page",
				"document", docID, "page", pageNum, "error", err)
			result.Warnings = append(result.Warnings, PageWarning{
				Page:   pageNum,
				Reason: err.Error(),
			})
			continue
		}
		result.Units = append(result.Units, units...)
	}

	return result, nil
}

// parsePage extracts the narrative unit and table units of one page.
// The PDF library panics on malformed objects, both while resolving the page
// from the page tree and while reading its content stream, so the whole page
// is handled under recover and a panic degrades to a page-level warning.
func (p *Parser) parsePage(reader *lpdf.Reader, docID string, pageNum int) (units []Unit, err error) {
	defer func() {
		if r := recover(); r != nil {
			units = nil
			err = fmt.Errorf("page parse panic: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page object missing")
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("extract text rows: %w", err)
	}

	layout := make([]textRow, 0, len(rows))
	for _, row := range rows {
		line := make(textRow, 0, len(row.Content))
		for _, t := range row.Content {
			line = append(line, span{x: t.X, w: t.W, fontSize: t.FontSize, text: t.S})
		}
		layout = append(layout, line)
	}

	content := analyzeRows(layout)

	// Pages with no narrative text emit no text unit; same for tables.
	if content.narrative != "" {
		units = append(units, Unit{
			DocumentID: docID,
			Page:       pageNum,
			Type:       ContentTypeText,
			Text:       content.narrative,
		})
	}

	for i, grid := range content.tables {
		markup := NormalizeTable(grid)
		if markup == "" {
			continue
		}
		units = append(units, Unit{
			DocumentID: docID,
			Page:       pageNum,
			Type:       ContentTypeTable,
			Text:       fmt.Sprintf("TABLE (page %d, table %d)\n%s", pageNum, i+1, markup),
		})
	}

	return units, nil
}
