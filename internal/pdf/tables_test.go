package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

func TestNormalizeTable_Basic(t *testing.T) {
	grid := [][]string{
		{"Region", "Years"},
		{"Europe", "78.2"},
		{"Africa", "64.5"},
	}

	expected := "| Region | Years |\n" +
		"| --- | --- |\n" +
		"| Europe | 78.2 |\n" +
		"| Africa | 64.5 |"
	assert.Equal(t, expected, NormalizeTable(grid))
}

func TestNormalizeTable_Deterministic(t *testing.T) {
	grid := [][]string{{"a", "b"}, {"1", "2"}}
	require.Equal(t, NormalizeTable(grid), NormalizeTable(grid),
		"same grid must yield byte-identical markup")
}

func TestNormalizeTable_RaggedRowsPadded(t *testing.T) {
	grid := [][]string{
		{"Indicator", "2019", "2021"},
		{"Life expectancy", "73.3"},
		{"Mortality"},
	}

	markup := NormalizeTable(grid)

	assert.Contains(t, markup, "| Life expectancy | 73.3 |  |")
	assert.Contains(t, markup, "| Mortality |  |  |")
}

func TestNormalizeTable_EscapesCellContent(t *testing.T) {
	grid := [][]string{
		{"Name", "Notes"},
		{"A|B", "first\nsecond"},
	}

	markup := NormalizeTable(grid)

	assert.Contains(t, markup, `A\|B`)
	assert.Contains(t, markup, "first second")
}

func TestNormalizeTable_Empty(t *testing.T) {
	assert.Empty(t, NormalizeTable(nil))
	assert.Empty(t, NormalizeTable([][]string{{}, {}}))
}

// TestNormalizeTable_ParsesAsMarkdownTable feeds the markup back through a
// markdown parser with the table extension and checks the row/column
// structure survives, which is what makes the markup usable for display.
func TestNormalizeTable_ParsesAsMarkdownTable(t *testing.T) {
	grid := [][]string{
		{"Region", "Years", "Change"},
		{"Europe", "78.2", "+0.4"},
		{"Africa", "64.5", "+1.1"},
	}
	source := []byte(NormalizeTable(grid))

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var tables, headerRows, bodyRows int
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case east.KindTable:
			tables++
		case east.KindTableHeader:
			headerRows++
		case east.KindTableRow:
			bodyRows++
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)

	assert.Equal(t, 1, tables)
	assert.Equal(t, 1, headerRows)
	assert.Equal(t, 2, bodyRows)
}
