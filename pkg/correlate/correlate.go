// Package correlate pairs fiches with the positionally aligned FR/NL
// abstract sequences of a judgement. The pairing is a bipartite greedy match
// on word-overlap similarity: fiches claim abstract indexes in document
// order, highest unclaimed score first.
package correlate

import (
	"strings"

	"github.com/coolbeans/juricite/pkg/textnorm"
	"github.com/coolbeans/juricite/pkg/types"
)

// MinMatchScore is the Dice-coefficient threshold below which a fiche claims
// no abstract. Empirically tuned against the source's formatting quirks; do
// not assume it generalizes.
const MinMatchScore = 0.2

// minWordLen is the exclusive lower bound on word length for overlap scoring.
const minWordLen = 3

// FallbackSeparator joins abstracts when the pairing is unrecoverable.
const FallbackSeparator = " | "

// Assignment is the correlation outcome for one fiche.
type Assignment struct {
	// TextFR and TextNL hold the claimed abstract per language; empty when
	// the claimed index has no abstract on that side, or nothing was claimed.
	TextFR string
	TextNL string

	// Index is the claimed abstract index, -1 when none scored above the
	// threshold.
	Index int

	// LowConfidence flags a fiche that claimed nothing: its legal bases are
	// kept but carry no abstract text.
	LowConfidence bool
}

// Assign pairs each fiche that carries citations with at most one abstract
// index. Index i in abstractsFR corresponds to the same judgement passage as
// index i in abstractsNL; claiming an index claims it in both sequences.
//
// Greedy order matters and is part of the contract: fiches are processed in
// document order, and each takes the single highest-scoring unclaimed index
// across both languages at the moment it is processed.
func Assign(fiches []types.Fiche, abstractsFR, abstractsNL []string) []Assignment {
	indexCount := len(abstractsFR)
	if len(abstractsNL) > indexCount {
		indexCount = len(abstractsNL)
	}
	claimed := make([]bool, indexCount)

	assignments := make([]Assignment, len(fiches))
	for ficheIndex := range fiches {
		assignments[ficheIndex] = Assignment{Index: -1}

		fiche := &fiches[ficheIndex]
		if !fiche.HasCitations() {
			continue
		}

		ficheWords := textnorm.Words(fiche.AbstractText, minWordLen)

		bestIndex := -1
		bestScore := 0.0
		for abstractIndex := 0; abstractIndex < indexCount; abstractIndex++ {
			if claimed[abstractIndex] {
				continue
			}
			score := indexScore(ficheWords, abstractIndex, abstractsFR, abstractsNL)
			if score > bestScore {
				bestScore = score
				bestIndex = abstractIndex
			}
		}

		if bestIndex < 0 || bestScore <= MinMatchScore {
			assignments[ficheIndex].LowConfidence = true
			continue
		}

		claimed[bestIndex] = true
		assignments[ficheIndex].Index = bestIndex
		if bestIndex < len(abstractsFR) {
			assignments[ficheIndex].TextFR = abstractsFR[bestIndex]
		}
		if bestIndex < len(abstractsNL) {
			assignments[ficheIndex].TextNL = abstractsNL[bestIndex]
		}
	}

	return assignments
}

// indexScore returns the better of the FR and NL similarity scores for one
// abstract index.
func indexScore(ficheWords map[string]struct{}, abstractIndex int, abstractsFR, abstractsNL []string) float64 {
	score := 0.0
	if abstractIndex < len(abstractsFR) {
		score = Dice(ficheWords, textnorm.Words(abstractsFR[abstractIndex], minWordLen))
	}
	if abstractIndex < len(abstractsNL) {
		if nlScore := Dice(ficheWords, textnorm.Words(abstractsNL[abstractIndex], minWordLen)); nlScore > score {
			score = nlScore
		}
	}
	return score
}

// Dice computes the Sørensen–Dice coefficient over two word sets.
func Dice(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	overlap := 0
	for word := range a {
		if _, shared := b[word]; shared {
			overlap++
		}
	}
	return 2 * float64(overlap) / float64(len(a)+len(b))
}

// FallbackConcat joins all abstracts of one language with the fallback
// separator. Used when no fiche yields any citation: the per-fiche pairing
// information is unrecoverable, so the concatenation attaches to every basis
// unsplit.
func FallbackConcat(abstracts []string) string {
	return strings.Join(abstracts, FallbackSeparator)
}
