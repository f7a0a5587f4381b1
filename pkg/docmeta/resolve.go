package docmeta

import (
	"regexp"

	"github.com/coolbeans/juricite/pkg/cite"
	"github.com/coolbeans/juricite/pkg/eli"
	"github.com/coolbeans/juricite/pkg/types"
)

var reDateSuffix = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// Resolution is the outcome of running the reference entries of one record
// through the law-grouping state machine.
type Resolution struct {
	// Bases holds deduplicated (article, identifier) pairs with attached
	// cross-language raw text.
	Bases []types.LegalBasis

	// Unresolved holds citations whose identifier was never bound.
	Unresolved []types.UnresolvedBasis

	// CaseNumber is the role/case number, when a docket entry was present.
	CaseNumber string

	// Failed holds the raw texts of entries no pattern recognized. The caller
	// records them in the error log; they are never silently dropped.
	Failed []string
}

// pendingGroup accumulates article citations of one law until an identifier
// binds them or a different law flushes them.
type pendingGroup struct {
	lawKey   string
	date     string
	articles []string
}

// textKey correlates same-article-same-date entries across languages.
type textKey struct {
	article string
	date    string
}

// accumulator is the explicit state of the grouping fold: the pending group,
// the law-key identifier cache, and the raw-text index per language.
type accumulator struct {
	pending *pendingGroup
	idCache map[string]string

	textFR map[textKey]string
	textNL map[textKey]string

	resolution Resolution
	seenPairs  map[types.LegalBasis]bool

	// baseDates holds, per resolved basis, the group date used for text
	// attachment. Parallel to resolution.Bases.
	baseDates []string
}

// ResolveReferences folds the ordered reference entries of one record into
// resolved and unresolved legal bases.
//
// Identifiers in the source are stated once per law and apply retroactively
// to all immediately preceding same-law article citations, and to later
// repeats of that law in the list; hence the per-record law-key cache.
func ResolveReferences(entries []ReferenceEntry) Resolution {
	acc := &accumulator{
		idCache:   make(map[string]string),
		textFR:    make(map[textKey]string),
		textNL:    make(map[textKey]string),
		seenPairs: make(map[types.LegalBasis]bool),
	}

	for _, entry := range entries {
		switch entry.Kind {
		case RefDocket:
			if acc.resolution.CaseNumber == "" {
				acc.resolution.CaseNumber = entry.Text
			}

		case RefIdentifier, RefOtherLaw:
			acc.bindIdentifier(entry.Text)

		case RefCitation:
			acc.foldCitation(entry)
		}
	}

	acc.flushPending()
	acc.attachText()

	return acc.resolution
}

// bindIdentifier canonicalizes an identifier entry and binds it to all
// pending articles, flushing the group and caching (lawKey -> identifier).
// Identifiers that cannot be canonicalized are discarded; the pending group
// stays pending so a later binding or the end-of-input flush handles it.
func (acc *accumulator) bindIdentifier(rawIdentifier string) {
	identifier, ok := canonicalIdentifier(rawIdentifier)
	if !ok {
		return
	}
	if acc.pending == nil {
		return
	}

	acc.idCache[acc.pending.lawKey] = identifier
	for _, article := range acc.pending.articles {
		acc.addBasis(types.LegalBasis{Article: article, Identifier: identifier}, acc.pending.date)
	}
	acc.pending = nil
}

// foldCitation applies one citation line to the accumulator.
func (acc *accumulator) foldCitation(entry ReferenceEntry) {
	match := cite.ParseLine(entry.Text)

	switch match.Kind {
	case cite.MatchArticleRef, cite.MatchGeneralRef:
		acc.indexText(match, entry.Lang)

		// A dateless continuation line (empty law key) extends the pending
		// group; any other law key change flushes first.
		if acc.pending != nil && match.LawKey != "" && match.LawKey != acc.pending.lawKey {
			acc.flushPending()
		}
		if acc.pending == nil {
			lawKey := match.LawKey
			if lawKey == "" {
				lawKey = match.Raw
			}
			acc.pending = &pendingGroup{lawKey: lawKey, date: match.Date}
		}
		acc.pending.articles = append(acc.pending.articles, match.Articles...)

	case cite.MatchPrinciple:
		acc.flushPending()
		unresolved := types.UnresolvedBasis{Article: nil, RawLawKey: match.LawKey}
		if entry.Lang == "NL" {
			unresolved.TextNL = match.Raw
		} else {
			unresolved.TextFR = match.Raw
		}
		acc.resolution.Unresolved = append(acc.resolution.Unresolved, unresolved)

	default:
		acc.resolution.Failed = append(acc.resolution.Failed, entry.Text)
	}
}

// flushPending resolves the pending group through the identifier cache, or
// queues it as unresolved when no identifier was ever bound for its law key.
func (acc *accumulator) flushPending() {
	if acc.pending == nil {
		return
	}
	group := acc.pending
	acc.pending = nil

	if identifier, cached := acc.idCache[group.lawKey]; cached {
		for _, article := range group.articles {
			acc.addBasis(types.LegalBasis{Article: article, Identifier: identifier}, group.date)
		}
		return
	}

	for _, article := range group.articles {
		articleCopy := article
		acc.resolution.Unresolved = append(acc.resolution.Unresolved, types.UnresolvedBasis{
			Article:   &articleCopy,
			RawLawKey: group.lawKey,
		})
	}
}

// addBasis appends a resolved basis, deduplicating (article, identifier)
// pairs, and remembers the group date for text attachment.
func (acc *accumulator) addBasis(basis types.LegalBasis, date string) {
	pairKey := types.LegalBasis{Article: basis.Article, Identifier: basis.Identifier}
	if acc.seenPairs[pairKey] {
		return
	}
	acc.seenPairs[pairKey] = true
	acc.resolution.Bases = append(acc.resolution.Bases, basis)
	acc.baseDates = append(acc.baseDates, date)
}

// indexText records the raw citation line per language, keyed by
// (article, date), so FR and NL renditions of the same citation can be
// attached to a single basis after grouping.
func (acc *accumulator) indexText(match cite.Match, lang string) {
	for _, article := range match.Articles {
		key := textKey{article: article, date: match.Date}
		if lang == "NL" {
			if _, exists := acc.textNL[key]; !exists {
				acc.textNL[key] = match.Raw
			}
		} else {
			if _, exists := acc.textFR[key]; !exists {
				acc.textFR[key] = match.Raw
			}
		}
	}
}

// attachText fills TextFR/TextNL on every resolved and unresolved basis from
// the cross-language text index.
func (acc *accumulator) attachText() {
	for basisIndex := range acc.resolution.Bases {
		basis := &acc.resolution.Bases[basisIndex]
		key := textKey{article: basis.Article, date: acc.baseDates[basisIndex]}
		basis.TextFR = acc.textFR[key]
		basis.TextNL = acc.textNL[key]
	}

	for unresolvedIndex := range acc.resolution.Unresolved {
		unresolved := &acc.resolution.Unresolved[unresolvedIndex]
		if unresolved.Article == nil {
			continue // principles keep their verbatim single-language text
		}
		key := textKey{article: *unresolved.Article, date: lawKeyDate(unresolved.RawLawKey)}
		if unresolved.TextFR == "" {
			unresolved.TextFR = acc.textFR[key]
		}
		if unresolved.TextNL == "" {
			unresolved.TextNL = acc.textNL[key]
		}
	}
}

// canonicalIdentifier canonicalizes an identifier entry: ELI paths go through
// document-type normalization, legacy CGI URLs through flavor rewriting.
func canonicalIdentifier(rawIdentifier string) (string, bool) {
	if eli.IsELI(rawIdentifier) {
		return eli.Normalize(rawIdentifier), true
	}
	return eli.CanonicalizeLegacy(rawIdentifier)
}

// lawKeyDate extracts the trailing DD-MM-YYYY date of a law key, or "".
func lawKeyDate(lawKey string) string {
	if len(lawKey) < 10 {
		return ""
	}
	candidate := lawKey[len(lawKey)-10:]
	if reDateSuffix.MatchString(candidate) {
		return candidate
	}
	return ""
}
