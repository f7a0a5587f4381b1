// Package store implements the keyed on-disk dataset the crawl assembles:
// the per-citation store (canonical identifier -> article -> judgement id),
// the reconciliation store for citations awaiting an identifier, and the
// extraction error log. All mutation happens in the crawl's serialized commit
// phase; none of these types are safe for concurrent use.
package store

import (
	"fmt"

	"github.com/coolbeans/juricite/pkg/blobstore"
	"github.com/coolbeans/juricite/pkg/types"
)

// citationKeyPrefix namespaces per-identifier blobs in the blob store.
const citationKeyPrefix = "citations/"

// Record is one stored judgement entry under (identifier, article).
// Abstracts are arrays, append-only and deduplicated; insertion order is
// irrelevant.
type Record struct {
	Court       string   `json:"court"`
	Date        string   `json:"date"`
	CaseNumber  string   `json:"case_number,omitempty"`
	SourceURL   string   `json:"source_url"`
	AbstractsFR []string `json:"abstracts_fr,omitempty"`
	AbstractsNL []string `json:"abstracts_nl,omitempty"`
}

// LawEntry is the stored object for one canonical identifier:
// article -> judgement id -> record.
type LawEntry map[string]map[string]*Record

// CitationStore merges legal bases into per-identifier blobs, caching loaded
// entries so repeated merges for one identifier hit the disk once per load.
type CitationStore struct {
	blobs *blobstore.Store
	cache map[string]LawEntry
}

// NewCitationStore creates a citation store over the given blob store.
func NewCitationStore(blobs *blobstore.Store) *CitationStore {
	return &CitationStore{
		blobs: blobs,
		cache: make(map[string]LawEntry),
	}
}

// Merge records one resolved basis of one judgement and flushes the affected
// identifier blob synchronously. Merging the same (identifier, article,
// judgement id) again unions the abstract arrays without duplication.
func (citationStore *CitationStore) Merge(basis types.LegalBasis, judgement *types.Judgement, abstractFR, abstractNL string) error {
	if basis.Identifier == "" {
		return fmt.Errorf("refusing to merge basis without identifier (article %q, judgement %s)", basis.Article, judgement.ID)
	}

	lawEntry, err := citationStore.entry(basis.Identifier)
	if err != nil {
		return err
	}

	articleRecords, ok := lawEntry[basis.Article]
	if !ok {
		articleRecords = make(map[string]*Record)
		lawEntry[basis.Article] = articleRecords
	}

	record, ok := articleRecords[judgement.ID]
	if !ok {
		record = &Record{
			Court:      judgement.Court,
			Date:       judgement.Date,
			CaseNumber: judgement.CaseNumber,
			SourceURL:  judgement.SourceURL,
		}
		articleRecords[judgement.ID] = record
	}

	record.AbstractsFR = appendUnique(record.AbstractsFR, abstractFR)
	record.AbstractsNL = appendUnique(record.AbstractsNL, abstractNL)

	return citationStore.blobs.Save(citationKey(basis.Identifier), lawEntry)
}

// Entry returns the stored object for one canonical identifier, or an empty
// entry when nothing was stored yet.
func (citationStore *CitationStore) Entry(identifier string) (LawEntry, error) {
	return citationStore.entry(identifier)
}

// Counts returns the number of distinct (article, judgement) rows currently
// cached, for reporting.
func (citationStore *CitationStore) Counts() (articles, records int) {
	for _, lawEntry := range citationStore.cache {
		articles += len(lawEntry)
		for _, articleRecords := range lawEntry {
			records += len(articleRecords)
		}
	}
	return articles, records
}

func (citationStore *CitationStore) entry(identifier string) (LawEntry, error) {
	if cached, ok := citationStore.cache[identifier]; ok {
		return cached, nil
	}

	lawEntry := make(LawEntry)
	if _, err := citationStore.blobs.Load(citationKey(identifier), &lawEntry); err != nil {
		return nil, err
	}
	citationStore.cache[identifier] = lawEntry
	return lawEntry, nil
}

func citationKey(identifier string) string {
	return citationKeyPrefix + blobstore.SanitizeKey(identifier)
}

// appendUnique appends value to list unless empty or already present.
func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
