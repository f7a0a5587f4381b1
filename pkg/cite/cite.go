// Package cite turns free-text legal citation lines, as found in judicial
// metadata records, into structured matches. Lines appear in French and Dutch
// with inconsistent formatting; matching runs through an ordered cascade of
// patterns where the first hit wins:
//
//  1. dated reference with trailing counter:
//     "Loi du 10-10-1967 - Art. 14, § 7 - 23"
//  2. dated reference without counter:
//     "Code civil - 08-12-1992 - Art. 5.4.3.4"
//  3. article-bearing reference without a leading date (continuation lines):
//     "Art. 23, 5°"
//  4. dated reference without any article token:
//     "Loi du 15-06-1935 - 30" -> the whole law is cited, article "general"
//  5. a legal-principle marker (language-specific stems, no date, no article)
//
// Anything else is Unrecognized and must be surfaced to the error log by the
// caller, never dropped.
package cite

import (
	"regexp"
	"strings"

	"github.com/coolbeans/juricite/pkg/textnorm"
)

// GeneralArticle is the sentinel article token for a law cited without a
// specific article.
const GeneralArticle = "general"

// MatchKind classifies the outcome of parsing one citation line.
type MatchKind int

const (
	// MatchUnrecognized indicates no pattern matched.
	MatchUnrecognized MatchKind = iota

	// MatchArticleRef indicates a law citation carrying one or more articles
	// (patterns 1-3).
	MatchArticleRef

	// MatchGeneralRef indicates a dated law citation without an article
	// (pattern 4); Articles holds the single sentinel GeneralArticle.
	MatchGeneralRef

	// MatchPrinciple indicates a bare legal principle (pattern 5); no date,
	// no article, no identifier. LawKey holds the verbatim line.
	MatchPrinciple
)

// String returns a short name for the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchArticleRef:
		return "article-ref"
	case MatchGeneralRef:
		return "no-article-law-ref"
	case MatchPrinciple:
		return "legal-principle"
	default:
		return "unrecognized"
	}
}

// Match is the structured result of parsing one citation line.
type Match struct {
	// Kind classifies the line.
	Kind MatchKind

	// LawKey groups citations of the same law: "<law name> - <DD-MM-YYYY>"
	// for dated patterns, the verbatim line for principles, and empty for
	// dateless continuation lines (pattern 3), which inherit the pending
	// group's key.
	LawKey string

	// LawName is the law title part, without the date.
	LawName string

	// Date is the DD-MM-YYYY publication date of the cited law, when present.
	Date string

	// RawArticles is the unparsed articles substring (patterns 1-3).
	RawArticles string

	// Articles holds the normalized article tokens, in first-seen order.
	// A MatchGeneralRef carries the single sentinel GeneralArticle.
	Articles []string

	// Counter is the trailing numeric counter of pattern 1, when present.
	Counter string

	// Raw is the whitespace-collapsed input line.
	Raw string
}

// The Art. token tolerates abbreviation variants (Art., art., Artt.,
// Article(s), Artikel(en)) and an elision or possessive prefix ("l'", "d'",
// "zijn"). Patterns 1-2 anchor on the date separator first, so an
// abbreviation inside a law title never fires.
const artToken = `(?:[ldLD]['’]\s*|son\s+|zijn\s+)?[Aa]rtt?(?:\.|icles?|ikel(?:en)?)\.?\s*`

var (
	// Dated line split: "<law> [-] DD-MM-YYYY - <rest>". The law/date
	// separator is either " - " or a plain space ("Loi du 10-10-1967").
	reDatedLine = regexp.MustCompile(`^(.+?)(?:\s+-)?\s+(\d{2}-\d{2}-\d{4})\s+-\s+(.+)$`)

	// Dated line with no article part at all, optional trailing counter.
	reDatedBare = regexp.MustCompile(`^(.+?)(?:\s+-)?\s+(\d{2}-\d{2}-\d{4})(?:\s+-\s+(\d{2}\w*))?$`)

	// After the date separator: up to two qualifier words, then the Art.
	// token and the articles substring.
	reArtAfterDate = regexp.MustCompile(`^(?:[\p{L}'’.]+\s+){0,2}?` + artToken + `(.+)$`)

	// Trailing counter of pattern 1: " - 23", " - 02bis".
	reCounter = regexp.MustCompile(`^(.+?)\s+-\s+(\d{2}\w*)$`)

	// Pattern 3: the line itself starts with an Art. token.
	reArtLeading = regexp.MustCompile(`^` + artToken + `(.+)$`)

	// Pattern 5: FR/NL legal-principle stems.
	rePrinciple = regexp.MustCompile(`(?i)^(?:principes?\s+g[ée]n[ée]ra(?:l|ux)\s+du\s+droit|algeme(?:en|ne)\s+rechtsbeginsel(?:en)?|beginsel(?:en)?\s+van\s+behoorlijk)`)
)

// ParseLine runs one citation line through the pattern cascade. The line is
// whitespace-collapsed before matching; Raw always holds the collapsed form.
func ParseLine(line string) Match {
	collapsed := textnorm.Collapse(line)
	if collapsed == "" {
		return Match{Kind: MatchUnrecognized, Raw: collapsed}
	}

	international := IsInternational(collapsed)

	// Patterns 1-2: anchor on the date separator, then require an Art. token.
	if dateParts := reDatedLine.FindStringSubmatch(collapsed); dateParts != nil {
		lawName := strings.TrimSpace(dateParts[1])
		lawDate := dateParts[2]
		rest := dateParts[3]

		if artParts := reArtAfterDate.FindStringSubmatch(rest); artParts != nil {
			rawArticles := artParts[1]
			counter := ""

			// Pattern 1: split off a trailing " - NN<suffix>" counter.
			if counterParts := reCounter.FindStringSubmatch(rawArticles); counterParts != nil {
				rawArticles = counterParts[1]
				counter = counterParts[2]
			}

			articles := NormalizeArticles(rawArticles, international)
			if len(articles) > 0 {
				return Match{
					Kind:        MatchArticleRef,
					LawKey:      lawName + " - " + lawDate,
					LawName:     lawName,
					Date:        lawDate,
					RawArticles: rawArticles,
					Articles:    articles,
					Counter:     counter,
					Raw:         collapsed,
				}
			}
		}
	}

	// Pattern 3: a continuation line carrying only an Art. token. No law key;
	// the grouping state machine binds it to the pending group.
	if artParts := reArtLeading.FindStringSubmatch(collapsed); artParts != nil {
		rawArticles := artParts[1]
		if counterParts := reCounter.FindStringSubmatch(rawArticles); counterParts != nil {
			rawArticles = counterParts[1]
		}
		articles := NormalizeArticles(rawArticles, international)
		if len(articles) > 0 {
			return Match{
				Kind:        MatchArticleRef,
				RawArticles: rawArticles,
				Articles:    articles,
				Raw:         collapsed,
			}
		}
	}

	// Pattern 4: dated reference with no article token at all.
	if bareParts := reDatedBare.FindStringSubmatch(collapsed); bareParts != nil {
		lawName := strings.TrimSpace(bareParts[1])
		lawDate := bareParts[2]
		return Match{
			Kind:     MatchGeneralRef,
			LawKey:   lawName + " - " + lawDate,
			LawName:  lawName,
			Date:     lawDate,
			Articles: []string{GeneralArticle},
			Counter:  bareParts[3],
			Raw:      collapsed,
		}
	}

	// Pattern 5: legal principle. The raw text is the law key so the
	// reconciliation store stays human-matchable.
	if rePrinciple.MatchString(collapsed) {
		return Match{
			Kind:   MatchPrinciple,
			LawKey: collapsed,
			Raw:    collapsed,
		}
	}

	return Match{Kind: MatchUnrecognized, Raw: collapsed}
}
