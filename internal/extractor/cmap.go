package extractor

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// toUnicode maps hex-encoded character codes to Unicode text. PDF fonts,
// CIDFont/Type0 ones especially, carry a ToUnicode CMap stream that is the
// only way to decode their glyph codes into readable characters.
type toUnicode struct {
	codes map[string]string
}

var (
	bfCharBlockPattern  = regexp.MustCompile(`(?s)beginbfchar\s*(.*?)\s*endbfchar`)
	bfRangeBlockPattern = regexp.MustCompile(`(?s)beginbfrange\s*(.*?)\s*endbfrange`)
	hexTokenPattern     = regexp.MustCompile(`<([0-9A-Fa-f]+)>|\[`)
)

// parseToUnicode reads the bfchar and bfrange sections of a CMap stream.
// Returns nil when the content defines no usable mappings.
func parseToUnicode(content string) *toUnicode {
	cm := &toUnicode{codes: make(map[string]string)}

	// bfchar blocks: pairs of <srcCode> <unicodeValue>
	for _, block := range bfCharBlockPattern.FindAllStringSubmatch(content, -1) {
		tokens := hexTokens(block[1])
		for i := 0; i+1 < len(tokens); i += 2 {
			if dst := hexToText(tokens[i+1]); dst != "" {
				cm.codes[normalizeCode(tokens[i])] = dst
			}
		}
	}

	// bfrange blocks: <start> <end> <dstStart>, or <start> <end> [<dst>...]
	for _, block := range bfRangeBlockPattern.FindAllStringSubmatch(content, -1) {
		cm.parseRanges(block[1])
	}

	if len(cm.codes) == 0 {
		return nil
	}
	return cm
}

func (cm *toUnicode) parseRanges(body string) {
	for _, entry := range strings.Split(body, "\n") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "[") {
			// Array form: each destination maps one consecutive source code.
			tokens := hexTokens(entry)
			if len(tokens) < 3 {
				continue
			}
			start, err := strconv.ParseUint(tokens[0], 16, 32)
			if err != nil {
				continue
			}
			width := len(tokens[0])
			for i, dst := range tokens[2:] {
				if text := hexToText(dst); text != "" {
					cm.codes[formatCode(start+uint64(i), width)] = text
				}
			}
			continue
		}

		tokens := hexTokens(entry)
		if len(tokens) < 3 {
			continue
		}
		start, err1 := strconv.ParseUint(tokens[0], 16, 32)
		end, err2 := strconv.ParseUint(tokens[1], 16, 32)
		dst, err3 := strconv.ParseUint(tokens[2], 16, 32)
		if err1 != nil || err2 != nil || err3 != nil || end < start {
			continue
		}
		// Cap pathological ranges; real ToUnicode ranges are small.
		if end-start > 0xFFFF {
			end = start + 0xFFFF
		}
		width := len(tokens[0])
		for c := start; c <= end; c++ {
			r := rune(dst + (c - start))
			cm.codes[formatCode(c, width)] = string(r)
		}
	}
}

// lookup resolves a hex character code, trying the code's own width first
// and falling back to the zero-padded two-byte form CID fonts use.
func (cm *toUnicode) lookup(codeHex string) (string, bool) {
	code := strings.ToUpper(codeHex)
	if s, ok := cm.codes[code]; ok {
		return s, true
	}
	if len(code) == 2 {
		if s, ok := cm.codes["00"+code]; ok {
			return s, true
		}
	}
	return "", false
}

// mergeToUnicode combines the CMaps of all fonts in a document. Later maps
// do not override earlier entries; duplicate codes across fonts are rare and
// first-wins keeps the merge deterministic.
func mergeToUnicode(maps []*toUnicode) *toUnicode {
	merged := &toUnicode{codes: make(map[string]string)}
	for _, cm := range maps {
		if cm == nil {
			continue
		}
		for k, v := range cm.codes {
			if _, exists := merged.codes[k]; !exists {
				merged.codes[k] = v
			}
		}
	}
	if len(merged.codes) == 0 {
		return nil
	}
	return merged
}

func hexTokens(s string) []string {
	var tokens []string
	for _, m := range hexTokenPattern.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			tokens = append(tokens, strings.ToUpper(m[1]))
		}
	}
	return tokens
}

func normalizeCode(code string) string {
	if len(code)%2 == 1 {
		code = "0" + code
	}
	return strings.ToUpper(code)
}

func formatCode(code uint64, width int) string {
	s := strings.ToUpper(strconv.FormatUint(code, 16))
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// hexToText decodes a destination hex value as UTF-16BE text.
func hexToText(dstHex string) string {
	if len(dstHex)%2 == 1 {
		dstHex = "0" + dstHex
	}
	raw, err := hex.DecodeString(dstHex)
	if err != nil {
		return ""
	}
	if len(raw)%2 != 0 {
		return string(raw)
	}
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
	}
	return string(utf16.Decode(units))
}
