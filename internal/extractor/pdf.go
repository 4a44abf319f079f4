// Package extractor turns a PDF document into the ordered, whitespace
// normalized text lines the parsers consume. The primary path reads
// positioned glyph runs through the ledongthuc/pdf library; a raw
// content-stream extractor covers PDFs the library cannot decode.
package extractor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ReadLines extracts and reconstructs the text lines of a PDF document.
// It tries the structured library first and falls back to raw content-stream
// extraction when the library fails or produces garbage. A readable document
// with no text yields zero lines and no error; only failure to open or read
// the file is reported as an error.
func ReadLines(filePath string) ([]string, error) {
	pages, err := ReadPages(filePath)
	if err == nil {
		lines := Reconstruct(pages)
		if Readable(lines) {
			return lines, nil
		}
	}

	rawPages, rawErr := RawPages(filePath)
	if rawErr != nil {
		if err != nil {
			return nil, fmt.Errorf("PDF text extraction failed: %w", err)
		}
		return nil, fmt.Errorf("PDF text extraction failed: %w", rawErr)
	}

	lines := Reconstruct(rawPages)
	if Readable(lines) {
		return lines, nil
	}

	// Neither path produced readable text. The document may be image-based
	// or use font encodings without a ToUnicode map. Absence of lines is the
	// negative-result signal; callers decide whether that is fatal.
	return nil, nil
}

// ReadPages opens a PDF and returns the positioned text fragments of every
// page, in page order. Fragments within a page carry the raw coordinates the
// library reports and are otherwise unordered.
func ReadPages(filePath string) (pages []Page, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		frags := make(Page, 0, len(content.Text))
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			frags = append(frags, Fragment{Text: t.S, X: t.X, Y: t.Y})
		}
		pages = append(pages, frags)
	}
	return pages, nil
}

// commonWords appear in virtually all bank and card statements. If extracted
// text contains none of these, it is likely garbage from a font encoding the
// extractor could not decode.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "card",
	"money", "paid", "opening", "closing", "transfer", "deposit",
	"number", "page", "period",
}

// Readable reports whether reconstructed lines look like decoded statement
// text: enough characters, a high ratio of plain ASCII, and at least one word
// a statement would contain.
func Readable(lines []string) bool {
	total := 0
	for _, l := range lines {
		total += len(l)
	}
	if total <= 50 {
		return false
	}
	if textQuality(lines) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(lines, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of basic readable characters to total
// characters. A strict ASCII check is deliberate: unicode.IsLetter matches
// the accented garbage produced by identity-encoded fonts.
func textQuality(lines []string) float64 {
	total := 0
	readable := 0
	for _, line := range lines {
		for _, r := range line {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"£$€%&@#!?+=*`, r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
