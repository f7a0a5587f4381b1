package cite

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/juricite/pkg/textnorm"
)

// International-instrument markers. A line matching one of these cites a
// treaty, convention, protocol or EU directive rather than domestic law,
// which changes how dotted article numbers are read (the second segment is a
// paragraph, not an article subdivision). Domestic collective labour
// agreements share the "convention" keyword and are explicitly excluded.
var (
	reInternational = regexp.MustCompile(`(?i)\b(?:trait[ée]|verdrag|protocole?|conventie|convention|pacte|handvest|charte|directive|richtlijn|r[èe]glement\s+\(?(?:CE|UE|EU|EG)\)?)\b`)

	reCollectiveAgreement = regexp.MustCompile(`(?i)convention\s+collective|collectieve\s+arbeidsovereenkomst`)
)

// IsInternational reports whether the citation line refers to an
// international instrument, excluding domestic collective-agreement phrasing.
func IsInternational(line string) bool {
	if reCollectiveAgreement.MatchString(line) {
		return false
	}
	return reInternational.MatchString(line)
}

// Article token forms, tried in order per chunk.
var (
	// Letter-prefixed code form: "L1234-5", "R.212-3".
	reCodeForm = regexp.MustCompile(`\b([A-Z]\.?\s?\d+(?:-\d+)+)\b`)

	// Roman-numeral-dot form: "XX.194", "III.49/2".
	reRomanDot = regexp.MustCompile(`\b([IVXLCDM]+\.\d+(?:/\d+)?)\b`)

	// Dotted-decimal form: "5.4.3.4", "6.3".
	reDotted = regexp.MustCompile(`\b(\d+(?:\.\d+)+)\b`)

	// Standard numeric form with optional colon/slash/hyphen part and an
	// optional Latin ordinal suffix.
	reNumeric = regexp.MustCompile(`\b(\d+)(?:\s*([:/-])\s*(\d+))?(?:\s*(bis|ter|quater|quinquies|sexies|septies|octies|novies|decies|undecies|duodecies))?\b`)

	rePureNumber = regexp.MustCompile(`^\d+$`)

	reChunkSep = regexp.MustCompile(`\s*(?:,|\bet\b|\ben\b|\band\b)\s*`)

	reLeadingDigits = regexp.MustCompile(`^\d{2,}`)
)

// NormalizeArticles turns the raw articles substring of a citation line into
// an ordered, deduplicated list of normalized article tokens. international
// flags treaty-style numbering (see IsInternational).
//
// Chunks are separated by commas or et/en/and, but only when the separator is
// followed by a 2+-digit token: "5, 3°" is one chunk (a sub-item of article
// 5), "14, 15" is two. Within each chunk sub-qualifiers and ordinals are
// stripped before the token forms are tried. Purely numeric articles smaller
// than the largest one already accepted are dropped: citations list articles
// in non-decreasing order, so a smaller trailing number indicates a missed
// sub-qualifier, not a new article.
func NormalizeArticles(rawArticles string, international bool) []string {
	var (
		articles   []string
		seen       = make(map[string]bool)
		largestNum = -1
	)

	for _, chunk := range splitChunks(rawArticles) {
		token := normalizeChunk(chunk, international)
		if token == "" {
			continue
		}

		if rePureNumber.MatchString(token) {
			numeric, err := strconv.Atoi(token)
			if err != nil || numeric < largestNum {
				continue
			}
			largestNum = numeric
		}

		if !seen[token] {
			seen[token] = true
			articles = append(articles, token)
		}
	}

	return articles
}

// splitChunks splits the articles substring on comma/et/en/and separators,
// but only where the following token starts with at least two digits.
func splitChunks(rawArticles string) []string {
	var chunks []string
	remaining := rawArticles

	for {
		separators := reChunkSep.FindAllStringIndex(remaining, -1)
		splitAt := -1
		var splitEnd int
		for _, sep := range separators {
			if reLeadingDigits.MatchString(remaining[sep[1]:]) {
				splitAt, splitEnd = sep[0], sep[1]
				break
			}
		}
		if splitAt < 0 {
			chunks = append(chunks, remaining)
			return chunks
		}
		chunks = append(chunks, remaining[:splitAt])
		remaining = remaining[splitEnd:]
	}
}

// normalizeChunk reduces one chunk to a single article token, or "" when the
// chunk carries no recognizable article.
func normalizeChunk(chunk string, international bool) string {
	cleaned := textnorm.StripSubItems(chunk)
	cleaned = textnorm.StripOrdinals(cleaned)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}

	if codeMatch := reCodeForm.FindString(cleaned); codeMatch != "" {
		return strings.ReplaceAll(strings.ReplaceAll(codeMatch, ". ", ""), ".", "")
	}

	if romanMatch := reRomanDot.FindString(cleaned); romanMatch != "" {
		return romanMatch
	}

	if dottedMatch := reDotted.FindString(cleaned); dottedMatch != "" {
		segments := strings.Split(dottedMatch, ".")
		// For international instruments a two-segment dotted number is
		// "article.paragraph": keep the article part only. Domestic dotted
		// numbering is a real subdivision and is kept verbatim at any depth.
		if international && len(segments) == 2 {
			return segments[0]
		}
		return dottedMatch
	}

	if numericParts := reNumeric.FindStringSubmatch(cleaned); numericParts != nil {
		token := numericParts[1]
		if numericParts[3] != "" {
			token += numericParts[2] + numericParts[3]
		}
		if numericParts[4] != "" {
			token += numericParts[4]
		}
		return token
	}

	return ""
}
