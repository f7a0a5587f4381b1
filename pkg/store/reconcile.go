package store

import (
	"github.com/coolbeans/juricite/pkg/blobstore"
	"github.com/coolbeans/juricite/pkg/types"
)

// reconciliationKey is the blob key of the reconciliation store.
const reconciliationKey = "reconciliation"

// ReconciliationEntry accumulates judgement elements for one raw law key
// until an identifier is filled in out-of-band.
type ReconciliationEntry struct {
	// Identifier is the resolved canonical identifier, empty until filled in.
	Identifier string `json:"identifier,omitempty"`

	// Elements holds the judgement contexts awaiting the identifier.
	Elements []ReconciliationElement `json:"elements"`
}

// ReconciliationElement is one queued citation context.
type ReconciliationElement struct {
	JudgementID string  `json:"judgement_id"`
	Court       string  `json:"court"`
	Date        string  `json:"date"`
	CaseNumber  string  `json:"case_number,omitempty"`
	SourceURL   string  `json:"source_url"`
	Article     *string `json:"article"`
	AbstractFR  string  `json:"abstract_fr,omitempty"`
	AbstractNL  string  `json:"abstract_nl,omitempty"`
	TextFR      string  `json:"text_fr,omitempty"`
	TextNL      string  `json:"text_nl,omitempty"`
}

// ReconciliationStore queues citations whose identifier was unknown at parse
// time, keyed by raw law key, and replays them once identifiers appear.
type ReconciliationStore struct {
	blobs   *blobstore.Store
	entries map[string]*ReconciliationEntry
	loaded  bool
}

// NewReconciliationStore creates a reconciliation store over the blob store.
func NewReconciliationStore(blobs *blobstore.Store) *ReconciliationStore {
	return &ReconciliationStore{blobs: blobs}
}

// Append queues one unresolved basis with its judgement context and flushes
// the store synchronously.
func (reconciliation *ReconciliationStore) Append(unresolved types.UnresolvedBasis, judgement *types.Judgement, abstractFR, abstractNL string) error {
	if err := reconciliation.load(); err != nil {
		return err
	}

	entry, ok := reconciliation.entries[unresolved.RawLawKey]
	if !ok {
		entry = &ReconciliationEntry{}
		reconciliation.entries[unresolved.RawLawKey] = entry
	}

	entry.Elements = append(entry.Elements, ReconciliationElement{
		JudgementID: judgement.ID,
		Court:       judgement.Court,
		Date:        judgement.Date,
		CaseNumber:  judgement.CaseNumber,
		SourceURL:   judgement.SourceURL,
		Article:     unresolved.Article,
		AbstractFR:  abstractFR,
		AbstractNL:  abstractNL,
		TextFR:      unresolved.TextFR,
		TextNL:      unresolved.TextNL,
	})

	return reconciliation.blobs.Save(reconciliationKey, reconciliation.entries)
}

// Pending returns the number of law keys still awaiting an identifier.
func (reconciliation *ReconciliationStore) Pending() (int, error) {
	if err := reconciliation.load(); err != nil {
		return 0, err
	}
	pendingCount := 0
	for _, entry := range reconciliation.entries {
		if entry.Identifier == "" {
			pendingCount++
		}
	}
	return pendingCount, nil
}

// Replay merges every entry whose identifier has been filled in into the
// citation store and removes it from the queue. Returns the number of
// elements merged.
func (reconciliation *ReconciliationStore) Replay(citations *CitationStore) (int, error) {
	if err := reconciliation.load(); err != nil {
		return 0, err
	}

	mergedCount := 0
	for rawLawKey, entry := range reconciliation.entries {
		if entry.Identifier == "" {
			continue
		}

		for _, element := range entry.Elements {
			// A nil article marks a bare legal principle; it keys the store
			// under the empty article token.
			article := ""
			if element.Article != nil {
				article = *element.Article
			}
			judgement := &types.Judgement{
				ID:         element.JudgementID,
				Court:      element.Court,
				Date:       element.Date,
				CaseNumber: element.CaseNumber,
				SourceURL:  element.SourceURL,
			}
			basis := types.LegalBasis{
				Article:    article,
				Identifier: entry.Identifier,
				TextFR:     element.TextFR,
				TextNL:     element.TextNL,
			}
			if err := citations.Merge(basis, judgement, element.AbstractFR, element.AbstractNL); err != nil {
				return mergedCount, err
			}
			mergedCount++
		}

		delete(reconciliation.entries, rawLawKey)
	}

	if err := reconciliation.blobs.Save(reconciliationKey, reconciliation.entries); err != nil {
		return mergedCount, err
	}
	return mergedCount, nil
}

func (reconciliation *ReconciliationStore) load() error {
	if reconciliation.loaded {
		return nil
	}
	reconciliation.entries = make(map[string]*ReconciliationEntry)
	if _, err := reconciliation.blobs.Load(reconciliationKey, &reconciliation.entries); err != nil {
		return err
	}
	reconciliation.loaded = true
	return nil
}
