// Package textnorm provides the text normalization primitives shared by the
// citation matcher, the source parsers and the abstract correlator:
// whitespace collapsing, French/Dutch ordinal stripping and sub-item removal.
package textnorm

import (
	"regexp"
	"strings"
)

// Pre-compiled normalization patterns.
var (
	reWhitespace = regexp.MustCompile(`[\s\x{00A0}\x{202F}]+`)

	// Ordinal suffixes directly attached to a number: 1er, 1re, 2ème, 2e, 2de, 3de.
	reOrdinal = regexp.MustCompile(`(\d)\s*(?:er|re|ère|ème|eme|e|de|ste)\b`)

	// Sub-paragraph qualifiers trailing an article number: "§ 2", "alinéa 3",
	// "al. 1", "lid 2".
	reSubPara = regexp.MustCompile(`\s*,?\s*(?:§\s*\d+\w*|alin[ée]as?\s+\d+\w*|al\.\s*\d+\w*|lid\s+\d+\w*)`)

	// Bare degree markers: "3°", "12°bis".
	reDegree = regexp.MustCompile(`\s*,?\s*\d+°\w*`)
)

// Collapse reduces every whitespace run (including non-breaking spaces) to a
// single space and trims the result.
func Collapse(text string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// StripOrdinals removes French/Dutch ordinal suffixes that immediately follow
// a digit: "1er" -> "1", "2ème" -> "2", "3de" -> "3".
func StripOrdinals(text string) string {
	return reOrdinal.ReplaceAllString(text, "$1")
}

// StripSubItems removes sub-paragraph qualifiers ("§ 2", "alinéa 3", "lid 1")
// and bare degree markers ("5°") from an article fragment.
func StripSubItems(text string) string {
	stripped := reSubPara.ReplaceAllString(text, "")
	stripped = reDegree.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped)
}

// Words returns the set of lowercased words in text strictly longer than
// minLen runes. Used by the abstract correlator's overlap scoring.
func Words(text string, minLen int) map[string]struct{} {
	wordSet := make(map[string]struct{})
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	}) {
		if len([]rune(word)) > minLen {
			wordSet[word] = struct{}{}
		}
	}
	return wordSet
}

func isWordRune(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
		return true
	}
	// Accented Latin letters appear throughout FR/NL abstracts.
	return r >= 0x00C0 && r <= 0x024F
}
