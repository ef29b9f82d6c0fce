// Package evidence assembles ranked retrieval candidates into the final
// page-ordered, citation-ready evidence list. Every entry is a verbatim
// retrieved extract with page provenance; nothing is synthesized or merged
// across pages.
package evidence

import (
	"fmt"
	"sort"

	"github.com/hollis/pagecite/internal/retrieval"
)

// Entry is one displayable evidence extract with its provenance label.
type Entry struct {
	DocumentID  string
	PageNumber  int
	ContentType string // "text" or "table", preserved from the unit
	RawText     string
	DisplayRank int // 1-based position in the assembled list
}

// Citation is a deduplicated (document, page) source reference.
type Citation struct {
	DocumentID string
	PageNumber int
}

// String renders the citation the way it appears next to an extract.
func (c Citation) String() string {
	return fmt.Sprintf("%s – p.%d", c.DocumentID, c.PageNumber)
}

// Assemble orders candidates primarily by ascending page number, secondarily
// preserving the retriever's relative rank within a page, so a reader
// scanning top to bottom encounters the document in page order. Each
// candidate becomes exactly one entry; content types pass through unchanged.
func Assemble(candidates []retrieval.Candidate) []Entry {
	entries := make([]Entry, len(candidates))
	for i, c := range candidates {
		entries[i] = Entry{
			DocumentID:  c.Unit.DocumentID,
			PageNumber:  c.Unit.PageNumber,
			ContentType: c.Unit.ContentType,
			RawText:     c.Unit.RawText,
		}
	}

	// Stable: candidates arrive in rank order, so equal pages keep it.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PageNumber < entries[j].PageNumber
	})

	for i := range entries {
		entries[i].DisplayRank = i + 1
	}
	return entries
}

// Citations extracts the deduplicated (document, page) references of the
// assembled entries, in display order.
func Citations(entries []Entry) []Citation {
	seen := make(map[Citation]bool, len(entries))
	citations := make([]Citation, 0, len(entries))
	for _, e := range entries {
		c := Citation{DocumentID: e.DocumentID, PageNumber: e.PageNumber}
		if seen[c] {
			continue
		}
		seen[c] = true
		citations = append(citations, c)
	}
	return citations
}
