package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis/pagecite/internal/retrieval"
	"github.com/hollis/pagecite/internal/storage"
)

func candidate(rank, page int, contentType, text string) retrieval.Candidate {
	return retrieval.Candidate{
		Unit: storage.ContentUnit{
			DocumentID:  "report.pdf",
			PageNumber:  page,
			ContentType: contentType,
			RawText:     text,
		},
		Score: 1.0 / float64(rank),
		Rank:  rank,
	}
}

func TestAssemble_PageOrderNonDecreasing(t *testing.T) {
	candidates := []retrieval.Candidate{
		candidate(1, 7, storage.ContentTypeTable, "table on page 7"),
		candidate(2, 2, storage.ContentTypeText, "text on page 2"),
		candidate(3, 5, storage.ContentTypeText, "text on page 5"),
	}

	entries := Assemble(candidates)
	require.Len(t, entries, 3)

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i].PageNumber, entries[i-1].PageNumber,
			"assembled output must be non-decreasing in page number")
	}
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].DisplayRank, entries[1].DisplayRank, entries[2].DisplayRank})
}

func TestAssemble_PreservesRankWithinPage(t *testing.T) {
	candidates := []retrieval.Candidate{
		candidate(1, 3, storage.ContentTypeText, "more relevant"),
		candidate(2, 3, storage.ContentTypeTable, "less relevant"),
		candidate(3, 1, storage.ContentTypeText, "earlier page"),
	}

	entries := Assemble(candidates)
	require.Len(t, entries, 3)

	assert.Equal(t, "earlier page", entries[0].RawText)
	assert.Equal(t, "more relevant", entries[1].RawText, "retriever rank preserved within a page")
	assert.Equal(t, "less relevant", entries[2].RawText)
}

func TestAssemble_KeepsContentAndLabelsVerbatim(t *testing.T) {
	candidates := []retrieval.Candidate{
		candidate(1, 1, storage.ContentTypeTable, "TABLE (page 1, table 1)\n| a | b |"),
		candidate(2, 2, storage.ContentTypeText, "narrative extract"),
	}

	entries := Assemble(candidates)
	require.Len(t, entries, 2, "one candidate becomes exactly one entry, no merging")

	assert.Equal(t, storage.ContentTypeTable, entries[0].ContentType)
	assert.Equal(t, "TABLE (page 1, table 1)\n| a | b |", entries[0].RawText)
	assert.Equal(t, storage.ContentTypeText, entries[1].ContentType)
}

func TestAssemble_Empty(t *testing.T) {
	assert.Empty(t, Assemble(nil))
}

func TestCitations_DeduplicatesByDocumentAndPage(t *testing.T) {
	entries := Assemble([]retrieval.Candidate{
		candidate(1, 2, storage.ContentTypeText, "first extract page 2"),
		candidate(2, 2, storage.ContentTypeTable, "table also page 2"),
		candidate(3, 6, storage.ContentTypeText, "extract page 6"),
	})

	citations := Citations(entries)
	require.Len(t, citations, 2)

	assert.Equal(t, Citation{DocumentID: "report.pdf", PageNumber: 2}, citations[0])
	assert.Equal(t, Citation{DocumentID: "report.pdf", PageNumber: 6}, citations[1])
	assert.Equal(t, "report.pdf – p.2", citations[0].String())
}
