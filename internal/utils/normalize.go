package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, which folds
// Vietnamese diacritics ("Quận" -> "Quan"). The đ/Đ letters do not decompose,
// so they are replaced explicitly.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

var dReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// Fold strips diacritics and lowercases while keeping punctuation intact,
// for pattern matching that depends on separators like "-" or "/".
func Fold(text string) string {
	folded, _, err := transform.String(stripMarks, dReplacer.Replace(text))
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw text.
		folded = text
	}
	return strings.ToLower(folded)
}

// Normalize folds text into the canonical key space used for all matching:
// diacritics stripped, lowercased, every non-alphanumeric rune replaced by a
// space, and whitespace collapsed. It is idempotent.
func Normalize(text string) string {
	folded := Fold(text)

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokenize splits already-normalized text into terms.
func Tokenize(text string) []string {
	return strings.Fields(Normalize(text))
}

// SimplifyName normalizes a hotel name for name-to-name comparison by also
// dropping the generic accommodation words, so "Khách sạn Silverland Sakyo"
// and "Silverland Sakyo hotel" compare equal.
func SimplifyName(name string) string {
	n := Normalize(name)
	for _, token := range []string{"khach san", "hotel", "resort", "homestay"} {
		n = strings.ReplaceAll(n, token, " ")
	}
	return strings.Join(strings.Fields(n), " ")
}

// CleanListString flattens catalog cells that arrive as a Python-style list
// literal, e.g. `['Hồ bơi', 'Wifi']` -> `Hồ bơi, Wifi`. Anything that does not
// look like a list is returned trimmed.
func CleanListString(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return ""
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return s
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	parts := strings.FieldsFunc(inner, func(r rune) bool { return r == ',' })
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			items = append(items, p)
		}
	}
	return strings.Join(items, ", ")
}
