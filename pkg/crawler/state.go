package crawler

import (
	"github.com/coolbeans/juricite/pkg/blobstore"
)

// stateKey is the blob key of the persisted crawl state.
const stateKey = "crawl-state"

// CrawlState is the persistent progress of a multi-run crawl: the batches
// fully processed and the items processed within not-yet-complete batches.
// Once a batch is promoted its items are pruned, the batch marker subsumes
// them; this bounds state size over a multi-year crawl.
type CrawlState struct {
	CompletedBatches map[string]bool `json:"completed_batches"`
	CompletedItems   map[string]bool `json:"completed_items"`
}

// LoadState reads the crawl state from the blob store, or returns an empty
// state when none was saved yet.
func LoadState(blobs *blobstore.Store) (*CrawlState, error) {
	state := &CrawlState{
		CompletedBatches: make(map[string]bool),
		CompletedItems:   make(map[string]bool),
	}
	if _, err := blobs.Load(stateKey, state); err != nil {
		return nil, err
	}
	if state.CompletedBatches == nil {
		state.CompletedBatches = make(map[string]bool)
	}
	if state.CompletedItems == nil {
		state.CompletedItems = make(map[string]bool)
	}
	return state, nil
}

// Save writes the state synchronously.
func (state *CrawlState) Save(blobs *blobstore.Store) error {
	return blobs.Save(stateKey, state)
}

// IsBatchDone reports whether a batch was fully processed in a prior run.
func (state *CrawlState) IsBatchDone(batchURL string) bool {
	return state.CompletedBatches[batchURL]
}

// IsItemDone reports whether an item was processed, either individually or
// through its batch marker.
func (state *CrawlState) IsItemDone(itemURL string) bool {
	return state.CompletedItems[itemURL]
}

// MarkItem records one processed item.
func (state *CrawlState) MarkItem(itemURL string) {
	state.CompletedItems[itemURL] = true
}

// MarkBatch promotes a batch to complete and prunes its items from the
// fine-grained set.
func (state *CrawlState) MarkBatch(batchURL string, itemURLs []string) {
	state.CompletedBatches[batchURL] = true
	for _, itemURL := range itemURLs {
		delete(state.CompletedItems, itemURL)
	}
}
