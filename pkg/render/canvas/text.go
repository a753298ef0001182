package canvas

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode/utf8"
)

const (
	titleFontSize = 16.0
	bodyFontSize  = 12.0
	fontCharWidth = 0.55
	lineHeight    = 1.4
	cardPadding   = 12.0
)

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// truncate shortens s so it fits width at the given font size.
func truncate(s string, width, fontSize float64) string {
	maxChars := int(width / (fontSize * fontCharWidth))
	if maxChars < 3 {
		maxChars = 3
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	r := []rune(s)
	return string(r[:maxChars-2]) + ".."
}

// wrap breaks s into at most maxLines lines that fit width.
func wrap(s string, width, fontSize float64, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	maxChars := max(3, int(width/(fontSize*fontCharWidth)))

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var cur []rune
		for _, word := range strings.Fields(para) {
			w := []rune(word)
			if len(cur) > 0 && len(cur)+1+len(w) > maxChars {
				lines = append(lines, string(cur))
				cur = nil
			}
			if len(cur) > 0 {
				cur = append(cur, ' ')
			}
			cur = append(cur, w...)
		}
		lines = append(lines, string(cur))
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = truncate(lines[maxLines-1]+"…", width, fontSize)
	}
	for i, l := range lines {
		lines[i] = truncate(l, width, fontSize)
	}
	return lines
}
