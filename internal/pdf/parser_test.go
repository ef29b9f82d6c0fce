package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal classic-xref PDF from numbered object bodies
// (object N is objects[N-1]). Offsets are computed while writing, so the
// cross-reference table is always consistent.
func buildPDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	start := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, start)
	return buf.Bytes()
}

func streamObj(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

func pageObj(parent, contents int) string {
	return fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] "+
		"/Resources << /Font << /F1 7 0 R >> >> /Contents %d 0 R >>", parent, contents)
}

const fontObj = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

// Text runs are positioned with Tm so each cell and line lands at an
// explicit coordinate: two runs on one baseline with a wide gap form two
// cells, two such lines form a table, and the lone line below is narrative.
const tablePageContent = "BT /F1 12 Tf " +
	"1 0 0 1 72 700 Tm (Region) Tj " +
	"1 0 0 1 200 700 Tm (Years) Tj " +
	"1 0 0 1 72 680 Tm (Europe) Tj " +
	"1 0 0 1 200 680 Tm (78.2) Tj " +
	"1 0 0 1 72 640 Tm (Life expectancy rose steadily across regions.) Tj " +
	"ET"

const textPageContent = "BT /F1 12 Tf " +
	"1 0 0 1 72 700 Tm (Immunization coverage recovered after 2021.) Tj " +
	"ET"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse_TwoPageDocument(t *testing.T) {
	doc := buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 >>",
		pageObj(2, 4),
		streamObj(tablePageContent),
		pageObj(2, 6),
		streamObj(textPageContent),
		fontObj,
	})

	p := NewParser(testLogger())
	res, err := p.Parse(bytes.NewReader(doc), int64(len(doc)), "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", res.DocumentID)
	assert.Equal(t, 2, res.PageCount)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, res.TextPages())
	assert.Equal(t, 1, res.Tables())

	require.Len(t, res.Units, 3)

	narrative := res.Units[0]
	assert.Equal(t, ContentTypeText, narrative.Type)
	assert.Equal(t, 1, narrative.Page)
	assert.Equal(t, "Life expectancy rose steadily across regions.", narrative.Text)

	table := res.Units[1]
	assert.Equal(t, ContentTypeTable, table.Type)
	assert.Equal(t, 1, table.Page)
	assert.Contains(t, table.Text, "TABLE (page 1, table 1)")
	assert.Contains(t, table.Text, "| Region | Years |")
	assert.Contains(t, table.Text, "| --- | --- |")
	assert.Contains(t, table.Text, "| Europe | 78.2 |")

	second := res.Units[2]
	assert.Equal(t, ContentTypeText, second.Type)
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, "Immunization coverage recovered after 2021.", second.Text)
}

func TestParse_WarnsAndContinuesPastBrokenPage(t *testing.T) {
	// Page 1's subtree points at object 8, whose body is not a valid PDF
	// object; resolving it panics inside the library. Page 2 lives under its
	// own subtree and must still parse.
	doc := buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Pages /Parent 2 0 R /Kids [8 0 R] /Count 1 >>",
		"<< /Type /Pages /Parent 2 0 R /Kids [5 0 R] /Count 1 >>",
		pageObj(4, 6),
		streamObj(tablePageContent),
		fontObj,
		"]",
	})

	p := NewParser(testLogger())
	res, err := p.Parse(bytes.NewReader(doc), int64(len(doc)), "damaged.pdf")
	require.NoError(t, err)

	assert.Equal(t, 2, res.PageCount)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Warnings[0].Page)
	assert.NotEmpty(t, res.Warnings[0].Reason)

	require.Len(t, res.Units, 2)
	for _, u := range res.Units {
		assert.Equal(t, "damaged.pdf", u.DocumentID)
		assert.Equal(t, 2, u.Page)
	}
	assert.Equal(t, ContentTypeText, res.Units[0].Type)
	assert.Equal(t, ContentTypeTable, res.Units[1].Type)
	assert.Contains(t, res.Units[1].Text, "TABLE (page 2, table 1)")
}
