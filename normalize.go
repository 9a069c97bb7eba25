package edinet

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Japanese filings mark negative amounts with triangles rather than a minus
// sign, and freely mix full-width and half-width digits, commas and
// parentheses. NormalizeValue folds all of that down to a plain float.

var thousandsAndSpace = strings.NewReplacer(
	",", "",
	" ", "",
	"\t", "",
	" ", "", // no-break space
	"　", "", // ideographic space
)

// NormalizeValue converts locale-formatted numeric text to a signed number.
// It returns nil for empty, dash-only, or unparseable input, never NaN and
// never a silent zero.
//
// Rules, in order: full-width glyphs fold to ASCII; thousands separators and
// whitespace are stripped; a parenthesized value is negative; the triangle
// glyphs (△, ▲) and the Unicode minus map to "-".
func NormalizeValue(text string) *float64 {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}

	// Fold full-width digits, punctuation and spaces to their ASCII forms.
	s = width.Narrow.String(s)
	s = thousandsAndSpace.Replace(s)

	// Dash-only placeholders mean "no value".
	switch s {
	case "-", "—", "–", "−":
		return nil
	}

	s = strings.ReplaceAll(s, "△", "-")
	s = strings.ReplaceAll(s, "▲", "-")
	s = strings.ReplaceAll(s, "−", "-")

	// A value wholly or partially enclosed in parentheses is negative. The
	// sign is applied after the parentheses are removed.
	negative := false
	if strings.ContainsAny(s, "()") {
		negative = true
		s = strings.NewReplacer("(", "", ")", "").Replace(s)
	}

	if s == "" || s == "-" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if negative {
		v = -v
	}
	return &v
}

var collapseSpace = regexp.MustCompile(`\s+`)

// CleanText is for text extracted from parsed documents: collapses runs of
// whitespace (including full-width spaces) into single spaces and trims.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "　", " ")
	text = strings.ReplaceAll(text, " ", " ")
	text = collapseSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// countLeadingIndent counts leading half-width and full-width spaces, with a
// full-width space counting as one.
func countLeadingIndent(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ', '\t', ' ', '　':
			n++
		default:
			return n
		}
	}
	return n
}
