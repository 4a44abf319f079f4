package extractor

import (
	"math"
	"sort"
	"strings"
)

// Fragment is one positioned run of text on a page. X grows left to right,
// Y grows bottom to top (PDF coordinate space).
type Fragment struct {
	Text string
	X    float64
	Y    float64
}

// Page holds the fragments extracted from a single page, in no particular
// order.
type Page []Fragment

// Reconstruct rebuilds the logical lines of a document from positioned
// fragments. Fragments are grouped into rows by rounded Y coordinate, rows
// are emitted top to bottom, fragments within a row left to right, and the
// per-page line sequences are concatenated in page order.
//
// The result is deterministic for a given input: row order comes from sorted
// Y keys, in-row order from X with the fragment text as tie-break, so nothing
// depends on the order fragments arrived in. Fragments without a usable
// coordinate are dropped. An empty or unreadable document yields zero lines;
// there is no error path.
func Reconstruct(pages []Page) []string {
	var lines []string
	for _, pg := range pages {
		lines = append(lines, reconstructPage(pg)...)
	}
	return lines
}

func reconstructPage(pg Page) []string {
	// Round Y to the nearest integer so sub-pixel float drift between
	// fragments of one visual row collapses into a single bucket.
	rows := make(map[int][]Fragment)
	for _, f := range pg {
		if !usableCoord(f.X) || !usableCoord(f.Y) {
			continue
		}
		key := int(math.Round(f.Y))
		rows[key] = append(rows[key], f)
	}

	// PDF Y grows upward, so descending Y is top-to-bottom reading order.
	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var lines []string
	for _, y := range ys {
		frags := rows[y]
		sort.Slice(frags, func(i, j int) bool {
			if frags[i].X != frags[j].X {
				return frags[i].X < frags[j].X
			}
			return frags[i].Text < frags[j].Text
		})

		parts := make([]string, 0, len(frags))
		for _, f := range frags {
			parts = append(parts, f.Text)
		}
		// Fields collapses internal whitespace runs and trims the ends.
		line := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func usableCoord(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
