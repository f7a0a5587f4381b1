package crawler

import (
	"context"
	"strings"

	"github.com/coolbeans/juricite/pkg/correlate"
	"github.com/coolbeans/juricite/pkg/docmeta"
	"github.com/coolbeans/juricite/pkg/fichehtml"
	"github.com/coolbeans/juricite/pkg/types"
)

// processItem is the fetch-phase pipeline for one source item. It touches no
// shared mutable state; everything it produces travels to the commit phase
// inside the returned Outcome.
func (engine *Engine) processItem(ctx context.Context, itemURL string) Outcome {
	document, err := engine.fetcher.Fetch(ctx, itemURL)
	if err != nil {
		return Outcome{Kind: OutcomeNetworkError, Err: err}
	}
	if len(document) == 0 {
		return Outcome{Kind: OutcomeEmpty}
	}

	record, err := docmeta.ParseRecord(document, itemURL)
	if err != nil {
		return Outcome{Kind: OutcomeSkip, Reason: err.Error()}
	}

	resolution := docmeta.ResolveReferences(record.References)

	judgement := &types.Judgement{
		ID:          record.ID,
		Court:       record.Court,
		Date:        record.Date,
		CaseNumber:  resolution.CaseNumber,
		SourceURL:   itemURL,
		AbstractsFR: record.AbstractsFR,
		AbstractsNL: record.AbstractsNL,
		Bases:       resolution.Bases,
		Unresolved:  resolution.Unresolved,
	}

	if len(judgement.Bases) == 0 && len(judgement.Unresolved) == 0 {
		return Outcome{Kind: OutcomeNoCitations, FailedTexts: resolution.Failed}
	}

	outcome := engine.assemble(ctx, record, judgement)
	outcome.FailedTexts = append(outcome.FailedTexts, resolution.Failed...)
	return outcome
}

// assemble builds the ready-to-commit payload. The secondary HTML fetch runs
// only when it can add information: multiple abstracts need the per-fiche
// pairing, and XML-unresolved citations may find their identifier as a
// hyperlink on the judgement page.
func (engine *Engine) assemble(ctx context.Context, record *docmeta.Record, judgement *types.Judgement) Outcome {
	needsPage := len(record.AbstractsFR) > 1 || len(record.AbstractsNL) > 1 ||
		len(judgement.Unresolved) > 0

	var page *fichehtml.Page
	if needsPage && record.PageURL != "" {
		pageDocument, err := engine.fetcher.Fetch(ctx, record.PageURL)
		if err == nil {
			parsedPage, parseErr := fichehtml.ParseJudgementPage(pageDocument, pageLang(record.PageURL))
			if parseErr == nil {
				page = parsedPage
			}
		} else {
			engine.logger.Warn("judgement page fetch failed, falling back to unsplit abstracts",
				"url", record.PageURL, "error", err)
		}
	}

	outcome := Outcome{Kind: OutcomeReady, Judgement: judgement}

	if page != nil {
		fillIdentifiers(judgement, page.Fiches)
		outcome.FailedTexts = append(outcome.FailedTexts, page.Failed...)
	}

	outcome.Rows, outcome.Unresolved = assignAbstracts(judgement, page)
	return outcome
}

// fillIdentifiers matches judgement-page citations back to XML-unresolved
// ones by article equality and uses them only to fill in missing
// identifiers, never to replace resolved ones.
func fillIdentifiers(judgement *types.Judgement, fiches []types.Fiche) {
	identifierByArticle := make(map[string]string)
	for _, fiche := range fiches {
		for _, basis := range fiche.Bases {
			if _, exists := identifierByArticle[basis.Article]; !exists {
				identifierByArticle[basis.Article] = basis.Identifier
			}
		}
	}

	var remaining []types.UnresolvedBasis
	for _, unresolved := range judgement.Unresolved {
		if unresolved.Article != nil {
			if identifier, found := identifierByArticle[*unresolved.Article]; found {
				judgement.Bases = append(judgement.Bases, types.LegalBasis{
					Article:    *unresolved.Article,
					Identifier: identifier,
					TextFR:     unresolved.TextFR,
					TextNL:     unresolved.TextNL,
				})
				continue
			}
		}
		remaining = append(remaining, unresolved)
	}
	judgement.Unresolved = remaining
}

// assignAbstracts pairs each basis with its abstract text. With a usable
// fiche page the correlator decides the pairing; with a single abstract per
// language the pairing is trivial; otherwise the concatenation fallback
// attaches everything unsplit.
func assignAbstracts(judgement *types.Judgement, page *fichehtml.Page) ([]BasisRow, []UnresolvedRow) {
	if page != nil && anyFicheHasCitations(page.Fiches) {
		return assignByFiche(judgement, page.Fiches)
	}

	abstractFR, abstractNL := flatAbstracts(judgement)

	rows := make([]BasisRow, 0, len(judgement.Bases))
	for _, basis := range judgement.Bases {
		rows = append(rows, BasisRow{Basis: basis, AbstractFR: abstractFR, AbstractNL: abstractNL})
	}
	unresolvedRows := make([]UnresolvedRow, 0, len(judgement.Unresolved))
	for _, unresolved := range judgement.Unresolved {
		unresolvedRows = append(unresolvedRows, UnresolvedRow{
			Unresolved: unresolved,
			AbstractFR: abstractFR,
			AbstractNL: abstractNL,
		})
	}
	return rows, unresolvedRows
}

// assignByFiche routes abstract text through the greedy correlator: each
// basis takes the text assigned to the fiche that cites it.
func assignByFiche(judgement *types.Judgement, fiches []types.Fiche) ([]BasisRow, []UnresolvedRow) {
	assignments := correlate.Assign(fiches, judgement.AbstractsFR, judgement.AbstractsNL)

	type pairKey struct{ article, identifier string }
	textFR := make(map[pairKey]string)
	textNL := make(map[pairKey]string)
	unresolvedFR := make(map[string]string)
	unresolvedNL := make(map[string]string)

	for ficheIndex, fiche := range fiches {
		assignment := assignments[ficheIndex]
		for _, basis := range fiche.Bases {
			key := pairKey{article: basis.Article, identifier: basis.Identifier}
			if _, exists := textFR[key]; !exists {
				textFR[key] = assignment.TextFR
				textNL[key] = assignment.TextNL
			}
		}
		for _, unresolved := range fiche.Unresolved {
			if _, exists := unresolvedFR[unresolved.RawLawKey]; !exists {
				unresolvedFR[unresolved.RawLawKey] = assignment.TextFR
				unresolvedNL[unresolved.RawLawKey] = assignment.TextNL
			}
		}
	}

	rows := make([]BasisRow, 0, len(judgement.Bases))
	for _, basis := range judgement.Bases {
		key := pairKey{article: basis.Article, identifier: basis.Identifier}
		rows = append(rows, BasisRow{
			Basis:      basis,
			AbstractFR: textFR[key],
			AbstractNL: textNL[key],
		})
	}

	unresolvedRows := make([]UnresolvedRow, 0, len(judgement.Unresolved))
	for _, unresolved := range judgement.Unresolved {
		unresolvedRows = append(unresolvedRows, UnresolvedRow{
			Unresolved: unresolved,
			AbstractFR: unresolvedFR[unresolved.RawLawKey],
			AbstractNL: unresolvedNL[unresolved.RawLawKey],
		})
	}
	return rows, unresolvedRows
}

// flatAbstracts reduces the abstract sequences to a single string per
// language: the sole abstract when there is one, the separator-joined
// concatenation otherwise (the pairing is unrecoverable without fiches).
func flatAbstracts(judgement *types.Judgement) (abstractFR, abstractNL string) {
	return correlate.FallbackConcat(judgement.AbstractsFR), correlate.FallbackConcat(judgement.AbstractsNL)
}

func anyFicheHasCitations(fiches []types.Fiche) bool {
	for ficheIndex := range fiches {
		if fiches[ficheIndex].HasCitations() {
			return true
		}
	}
	return false
}

// pageLang derives the judgement-page language from its URL suffix.
func pageLang(pageURL string) string {
	if strings.HasSuffix(strings.ToUpper(pageURL), "/NL") {
		return "NL"
	}
	return "FR"
}
