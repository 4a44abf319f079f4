package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RawPages is a fallback extractor that works directly on the PDF byte
// stream, for documents the structured library mangles (CIDFont/Type0
// encodings, broken xref tables). It walks every content stream, tracks the
// text positioning operators (Tm, Td, TD, T*, TL) to synthesize fragment
// coordinates, and decodes Tj/TJ string operands through the document's
// ToUnicode CMaps. The positioned fragments feed the same Reconstruct path
// as library extraction.
func RawPages(filePath string) ([]Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}

	streams := contentStreams(data)
	if len(streams) == 0 {
		return nil, nil
	}

	var maps []*toUnicode
	for _, s := range streams {
		if bytes.Contains(s, []byte("beginbfchar")) || bytes.Contains(s, []byte("beginbfrange")) {
			maps = append(maps, parseToUnicode(string(s)))
		}
	}
	cm := mergeToUnicode(maps)

	// A content stream per page is the common layout; streams without text
	// operators (fonts, images, CMaps) yield no fragments and are dropped.
	var pages []Page
	for _, s := range streams {
		frags := fragmentsFromStream(s, cm)
		if len(frags) > 0 {
			pages = append(pages, frags)
		}
	}
	return pages, nil
}

// contentStreams returns every stream...endstream body, decompressed where
// zlib/FlateDecode applies.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	streamMarker := []byte("stream")
	endMarker := []byte("endstream")

	offset := 0
	for offset < len(data) {
		idx := bytes.Index(data[offset:], streamMarker)
		if idx < 0 {
			break
		}
		start := offset + idx + len(streamMarker)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		endIdx := bytes.Index(data[start:], endMarker)
		if endIdx < 0 {
			break
		}
		body := data[start : start+endIdx]
		streams = append(streams, tryInflate(body))
		offset = start + endIdx + len(endMarker)
	}
	return streams
}

// tryInflate decompresses a zlib stream, returning the input unchanged when
// it is not compressed.
func tryInflate(data []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return data
	}
	return out
}

// textCursor tracks the PDF text state across positioning operators. Only
// the translation components matter for line reconstruction; scale and shear
// from Tm are ignored.
type textCursor struct {
	x, y         float64 // current show position
	lineX, lineY float64 // start of the current text line
	leading      float64
}

func (c *textCursor) setMatrix(e, f float64) {
	c.x, c.y = e, f
	c.lineX, c.lineY = e, f
}

func (c *textCursor) nextLine(tx, ty float64) {
	c.lineX += tx
	c.lineY += ty
	c.x, c.y = c.lineX, c.lineY
}

func (c *textCursor) crlf() {
	c.nextLine(0, -c.leading)
}

// fragmentsFromStream parses a decoded content stream into positioned text
// fragments. Unknown operators are skipped; operand stacks reset at each
// operator, as the PDF content model requires.
func fragmentsFromStream(data []byte, cm *toUnicode) Page {
	var frags Page
	cursor := textCursor{leading: 12}

	var nums []float64
	var texts []string

	emit := func() {
		text := strings.Join(texts, "")
		if strings.TrimSpace(text) != "" {
			frags = append(frags, Fragment{Text: text, X: cursor.x, Y: cursor.y})
		}
		// Glyph widths need font metrics this extractor does not have; a
		// per-rune advance keeps in-row fragment order stable for sorting.
		cursor.x += float64(len([]rune(text))) * 5
	}

	s := streamScanner{data: data}
	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokNumber:
			nums = append(nums, tok.num)
		case tokLiteral:
			texts = append(texts, decodeLiteral(tok.text))
		case tokHex:
			texts = append(texts, decodeHexString(tok.text, cm))
		case tokOperator:
			switch tok.text {
			case "BT":
				cursor = textCursor{leading: cursor.leading}
			case "Tm":
				if len(nums) >= 6 {
					cursor.setMatrix(nums[len(nums)-2], nums[len(nums)-1])
				}
			case "Td":
				if len(nums) >= 2 {
					cursor.nextLine(nums[len(nums)-2], nums[len(nums)-1])
				}
			case "TD":
				if len(nums) >= 2 {
					cursor.leading = -nums[len(nums)-1]
					cursor.nextLine(nums[len(nums)-2], nums[len(nums)-1])
				}
			case "TL":
				if len(nums) >= 1 {
					cursor.leading = nums[len(nums)-1]
				}
			case "T*":
				cursor.crlf()
			case "Tj", "TJ":
				emit()
			case "'":
				cursor.crlf()
				emit()
			case "\"":
				cursor.crlf()
				emit()
			}
			nums = nums[:0]
			texts = texts[:0]
		}
	}
	return frags
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokLiteral
	tokHex
	tokOperator
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type streamScanner struct {
	data []byte
	pos  int
}

func (s *streamScanner) next() (token, bool) {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '[' || c == ']':
			s.pos++
		case c == '%':
			s.skipLine()
		case c == '(':
			return s.scanLiteral()
		case c == '<':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
				s.pos += 2 // dictionary open; contents parse as ordinary tokens
				continue
			}
			return s.scanHex()
		case c == '>':
			s.pos++ // dictionary close
			if s.pos < len(s.data) && s.data[s.pos] == '>' {
				s.pos++
			}
		case c == '/':
			s.skipName()
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			return s.scanNumber()
		default:
			return s.scanOperator()
		}
	}
	return token{}, false
}

func (s *streamScanner) skipLine() {
	for s.pos < len(s.data) && s.data[s.pos] != '\n' {
		s.pos++
	}
}

func (s *streamScanner) skipName() {
	s.pos++
	for s.pos < len(s.data) && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
}

func (s *streamScanner) scanLiteral() (token, bool) {
	s.pos++ // consume '('
	var buf bytes.Buffer
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '\\' && s.pos+1 < len(s.data) {
			buf.WriteByte(c)
			buf.WriteByte(s.data[s.pos+1])
			s.pos += 2
			continue
		}
		if c == '(' {
			depth++
		}
		if c == ')' {
			depth--
			if depth == 0 {
				s.pos++
				return token{kind: tokLiteral, text: buf.String()}, true
			}
		}
		buf.WriteByte(c)
		s.pos++
	}
	return token{kind: tokLiteral, text: buf.String()}, true
}

func (s *streamScanner) scanHex() (token, bool) {
	s.pos++ // consume '<'
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		s.pos++
	}
	text := string(s.data[start:s.pos])
	if s.pos < len(s.data) {
		s.pos++
	}
	return token{kind: tokHex, text: text}, true
}

func (s *streamScanner) scanNumber() (token, bool) {
	start := s.pos
	s.pos++
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' {
			s.pos++
		} else {
			break
		}
	}
	n, err := strconv.ParseFloat(string(s.data[start:s.pos]), 64)
	if err != nil {
		// Malformed number; treat it as an unknown operator token.
		return token{kind: tokOperator, text: string(s.data[start:s.pos])}, true
	}
	return token{kind: tokNumber, num: n}, true
}

func (s *streamScanner) scanOperator() (token, bool) {
	start := s.pos
	for s.pos < len(s.data) && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++
		return token{kind: tokOperator, text: string(s.data[start : start+1])}, true
	}
	return token{kind: tokOperator, text: string(s.data[start:s.pos])}, true
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', '<', '>', '[', ']', '/', '%':
		return true
	}
	return false
}

// decodeLiteral resolves the escape sequences of a PDF literal string.
func decodeLiteral(s string) string {
	var buf strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			buf.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		case 't':
			buf.WriteByte('\t')
		case 'b', 'f':
			// ignored control characters
		case '(', ')', '\\':
			buf.WriteByte(s[i])
		case '0', '1', '2', '3', '4', '5', '6', '7':
			end := i
			for end < len(s) && end-i < 3 && s[end] >= '0' && s[end] <= '7' {
				end++
			}
			if v, err := strconv.ParseUint(s[i:end], 8, 16); err == nil {
				buf.WriteRune(rune(v))
			}
			i = end - 1
		default:
			buf.WriteByte(s[i])
		}
	}
	return buf.String()
}

// decodeHexString turns a hex string operand into text, preferring ToUnicode
// lookups (two-byte codes first, then single bytes) and falling back to
// Latin-1 bytes when no CMap covers the code.
func decodeHexString(hexStr string, cm *toUnicode) string {
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') {
			return r
		}
		return -1
	}, hexStr)
	if len(clean)%2 == 1 {
		clean += "0"
	}

	var buf strings.Builder
	for i := 0; i < len(clean); {
		if cm != nil {
			if i+4 <= len(clean) {
				if t, ok := cm.lookup(clean[i : i+4]); ok {
					buf.WriteString(t)
					i += 4
					continue
				}
			}
			if t, ok := cm.lookup(clean[i : i+2]); ok {
				buf.WriteString(t)
				i += 2
				continue
			}
		}
		raw, err := hex.DecodeString(clean[i : i+2])
		if err == nil && len(raw) == 1 {
			buf.WriteRune(rune(raw[0]))
		}
		i += 2
	}
	return buf.String()
}
