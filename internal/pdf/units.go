// Package pdf turns a PDF document into typed content units: one narrative
// text unit per page plus one unit per detected table, each stamped with its
// 1-based page number. Layout analysis is structural (text-run geometry), so
// table cells are never duplicated into the page's narrative unit.
package pdf

// ContentType discriminates narrative text from tabular content.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeTable ContentType = "table"
)

// Unit is one extracted content unit with page provenance.
type Unit struct {
	DocumentID string
	Page       int // 1-based
	Type       ContentType
	Text       string // narrative text, or normalized table markup
}

// PageWarning records a page that could not be parsed. Parsing carries on
// with the remaining pages.
type PageWarning struct {
	Page   int
	Reason string
}

// Result is the outcome of parsing one document.
type Result struct {
	DocumentID string
	PageCount  int
	Units      []Unit
	Warnings   []PageWarning
}

// TextPages counts pages that produced a narrative unit.
func (r *Result) TextPages() int {
	n := 0
	for _, u := range r.Units {
		if u.Type == ContentTypeText {
			n++
		}
	}
	return n
}

// Tables counts detected table units across all pages.
func (r *Result) Tables() int {
	n := 0
	for _, u := range r.Units {
		if u.Type == ContentTypeTable {
			n++
		}
	}
	return n
}
