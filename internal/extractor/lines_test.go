package extractor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructOrdersTopToBottomLeftToRight(t *testing.T) {
	// Fragments arrive in scrambled order; PDF Y grows upward, so the row at
	// Y=700 must come out first.
	page := Page{
		{Text: "9,850.00", X: 400, Y: 650},
		{Text: "01 JAN 2024", X: 10, Y: 650},
		{Text: "Statement", X: 100, Y: 700},
		{Text: "POS Settlement", X: 120, Y: 650},
		{Text: "Account", X: 10, Y: 700},
	}

	lines := Reconstruct([]Page{page})
	require.Equal(t, []string{
		"Account Statement",
		"01 JAN 2024 POS Settlement 9,850.00",
	}, lines)
}

func TestReconstructCollapsesSubPixelDrift(t *testing.T) {
	// 649.7 and 650.2 both round to 650 and must share one row.
	page := Page{
		{Text: "right", X: 50, Y: 649.7},
		{Text: "left", X: 10, Y: 650.2},
	}

	lines := Reconstruct([]Page{page})
	require.Equal(t, []string{"left right"}, lines)
}

func TestReconstructTieBreaksWithinRow(t *testing.T) {
	// Same Y, ordering comes purely from X, never from arrival order.
	page := Page{
		{Text: "c", X: 30, Y: 100},
		{Text: "a", X: 10, Y: 100},
		{Text: "b", X: 20, Y: 100},
	}

	lines := Reconstruct([]Page{page})
	require.Equal(t, []string{"a b c"}, lines)
}

func TestReconstructDropsUnpositionedFragments(t *testing.T) {
	page := Page{
		{Text: "ghost", X: math.NaN(), Y: 100},
		{Text: "phantom", X: 10, Y: math.Inf(1)},
		{Text: "real", X: 10, Y: 100},
	}

	lines := Reconstruct([]Page{page})
	require.Equal(t, []string{"real"}, lines)
}

func TestReconstructNormalizesWhitespace(t *testing.T) {
	page := Page{
		{Text: "  spaced   out ", X: 10, Y: 100},
		{Text: "\ttabbed\t", X: 50, Y: 100},
		{Text: "   ", X: 10, Y: 50},
	}

	lines := Reconstruct([]Page{page})
	require.Equal(t, []string{"spaced out tabbed"}, lines)
}

func TestReconstructConcatenatesPagesInOrder(t *testing.T) {
	pages := []Page{
		{{Text: "page one", X: 10, Y: 700}},
		{{Text: "page two", X: 10, Y: 700}},
	}

	lines := Reconstruct(pages)
	require.Equal(t, []string{"page one", "page two"}, lines)
}

func TestReconstructEmptyDocument(t *testing.T) {
	assert.Empty(t, Reconstruct(nil))
	assert.Empty(t, Reconstruct([]Page{{}, {}}))
}

func TestReconstructIsDeterministic(t *testing.T) {
	page := Page{
		{Text: "b", X: 20, Y: 100.4},
		{Text: "a", X: 20, Y: 99.6},
		{Text: "c", X: 21, Y: 100},
		{Text: "header", X: 5, Y: 400},
	}

	first := Reconstruct([]Page{page})
	second := Reconstruct([]Page{page})
	require.Equal(t, first, second)
}

func TestReadableRejectsGarbage(t *testing.T) {
	garbage := []string{"ÞþÃ±×øÞþÃ±×øÞþÃ±×øÞþÃ±×øÞþÃ±"}
	assert.False(t, Readable(garbage))

	assert.False(t, Readable([]string{"short"}))

	// Readable text without statement vocabulary is still suspect.
	assert.False(t, Readable([]string{
		"the quick brown fox jumps over a lazy dog again and again and again",
	}))

	assert.True(t, Readable([]string{
		"ACCOUNT STATEMENT for the period 01 JAN 2024 TO 31 JAN 2024",
		"BALANCE BROUGHT FORWARD 10,000.00",
	}))
}
