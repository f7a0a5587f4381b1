package crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coolbeans/juricite/pkg/blobstore"
	"github.com/coolbeans/juricite/pkg/docmeta"
	"github.com/coolbeans/juricite/pkg/fetch"
	"github.com/coolbeans/juricite/pkg/store"
)

// Engine is the crawl orchestrator. Fetches fan out under a bounded
// semaphore; commits run strictly one at a time on a FIFO queue, so the
// stores and crawl state are only ever touched from the commit goroutine.
type Engine struct {
	config  Config
	fetcher *fetch.Client
	blobs   *blobstore.Store
	logger  *slogOrNil

	// Owned exclusively by the commit phase.
	state          *CrawlState
	citations      *store.CitationStore
	reconciliation *store.ReconciliationStore
	errorLog       *store.ErrorLog
	report         *Report
}

// New creates an Engine over the configured data directory.
func New(config Config) (*Engine, error) {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	if config.DataDir == "" {
		config.DataDir = DefaultDataDir
	}

	blobs, err := blobstore.New(config.DataDir)
	if err != nil {
		return nil, err
	}

	state, err := LoadState(blobs)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl state: %w", err)
	}

	return &Engine{
		config:         config,
		fetcher:        fetch.New(config.Fetch),
		blobs:          blobs,
		logger:         &slogOrNil{logger: config.Logger},
		state:          state,
		citations:      store.NewCitationStore(blobs),
		reconciliation: store.NewReconciliationStore(blobs),
		errorLog:       store.NewErrorLog(blobs),
	}, nil
}

// Run executes one crawl pass: enumerate batches from the sitemap index,
// process every incomplete batch, and return the run report. Resumption is
// implicit; completed batches and items are skipped via the persisted state.
//
// The only fatal condition is failing to enumerate the batches at the very
// start. Everything else degrades to counters and un-promoted batches.
func (engine *Engine) Run(ctx context.Context) (*Report, error) {
	engine.report = &Report{StartedAt: time.Now()}

	indexDocument, err := engine.fetcher.Fetch(ctx, engine.config.SitemapIndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate source batches: %w", err)
	}
	batchURLs, err := docmeta.ParseSitemapIndex(indexDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate source batches: %w", err)
	}

	for _, batchURL := range batchURLs {
		if engine.state.IsBatchDone(batchURL) {
			continue
		}
		engine.report.BatchesSeen++
		engine.runBatch(ctx, batchURL)
	}

	engine.report.FinishedAt = time.Now()
	return engine.report, nil
}

// runBatch processes one batch: fan out fetches for its pending items, feed
// outcomes through the serialized commit queue, and promote the batch only
// when every item inside it succeeded.
func (engine *Engine) runBatch(ctx context.Context, batchURL string) {
	batchDocument, err := engine.fetcher.Fetch(ctx, batchURL)
	if err != nil {
		engine.logger.Warn("batch fetch failed", "batch", batchURL, "error", err)
		engine.report.BatchesFailed++
		return
	}
	itemURLs, err := docmeta.ParseSitemap(batchDocument)
	if err != nil {
		engine.logger.Warn("batch parse failed", "batch", batchURL, "error", err)
		engine.report.BatchesFailed++
		return
	}

	var pendingItems []string
	for _, itemURL := range itemURLs {
		if !engine.state.IsItemDone(itemURL) {
			pendingItems = append(pendingItems, itemURL)
		}
	}

	batchErrors := engine.processBatchItems(ctx, pendingItems)

	if batchErrors == 0 {
		engine.state.MarkBatch(batchURL, itemURLs)
		if err := engine.state.Save(engine.blobs); err != nil {
			engine.logger.Warn("state save failed after batch promotion", "batch", batchURL, "error", err)
			return
		}
		engine.report.BatchesCompleted++
		engine.logger.Info("batch completed", "batch", batchURL, "items", len(itemURLs))
		return
	}

	engine.report.BatchesFailed++
	engine.logger.Warn("batch incomplete", "batch", batchURL, "errors", batchErrors)
}

// processBatchItems runs the two-phase pipeline over a batch's pending items
// and returns the number of commit-blocking errors seen inside the batch.
func (engine *Engine) processBatchItems(ctx context.Context, itemURLs []string) int {
	if len(itemURLs) == 0 {
		return 0
	}

	commitQueue := make(chan commitRequest, len(itemURLs))
	commitDone := make(chan int, 1)

	// Commit phase: a single consumer guarantees total ordering across all
	// concurrently fetched items. A failing commit does not block the queue.
	go func() {
		batchErrors := 0
		for request := range commitQueue {
			if !engine.commit(request) {
				batchErrors++
			}
		}
		commitDone <- batchErrors
	}()

	// Fetch phase: bounded fan-out, no shared mutable state.
	var waitGroup sync.WaitGroup
	semaphore := make(chan struct{}, engine.config.Concurrency)
	for _, itemURL := range itemURLs {
		waitGroup.Add(1)
		go func(itemURL string) {
			defer waitGroup.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			commitQueue <- commitRequest{
				itemURL: itemURL,
				outcome: engine.processItem(ctx, itemURL),
			}
		}(itemURL)
	}

	waitGroup.Wait()
	close(commitQueue)
	return <-commitDone
}

// commit merges one outcome into the stores and checkpoints state. Runs only
// on the commit goroutine. Returns false when the item must be retried by a
// later run (transport failure or a failed store write).
func (engine *Engine) commit(request commitRequest) bool {
	engine.report.ItemsProcessed++
	outcome := request.outcome

	for _, failedText := range outcome.FailedTexts {
		if err := engine.errorLog.Record(request.itemURL, failedText); err != nil {
			engine.logger.Warn("error-log write failed", "item", request.itemURL, "error", err)
		} else {
			engine.report.TextsFailed++
		}
	}

	switch outcome.Kind {
	case OutcomeNetworkError:
		// Leave the item unmarked so a later run retries it.
		engine.report.ItemsFailed++
		engine.logger.Warn("item fetch failed", "item", request.itemURL, "error", outcome.Err)
		return false

	case OutcomeEmpty:
		engine.report.ItemsEmpty++

	case OutcomeSkip:
		engine.report.ItemsSkipped++
		engine.logger.Debug("item skipped", "item", request.itemURL, "reason", outcome.Reason)

	case OutcomeNoCitations:
		engine.report.ItemsNoCitations++

	case OutcomeReady:
		if !engine.commitJudgement(request.itemURL, outcome) {
			engine.report.ItemsFailed++
			return false
		}
		engine.report.ItemsCommitted++
	}

	engine.state.MarkItem(request.itemURL)
	if err := engine.state.Save(engine.blobs); err != nil {
		engine.logger.Warn("state save failed", "item", request.itemURL, "error", err)
		return false
	}
	return true
}

// commitJudgement merges a ready outcome's rows into the citation and
// reconciliation stores.
func (engine *Engine) commitJudgement(itemURL string, outcome Outcome) bool {
	for _, row := range outcome.Rows {
		if err := engine.citations.Merge(row.Basis, outcome.Judgement, row.AbstractFR, row.AbstractNL); err != nil {
			engine.logger.Warn("citation merge failed", "item", itemURL, "error", err)
			return false
		}
		engine.report.BasesMerged++
	}

	for _, unresolvedRow := range outcome.Unresolved {
		if err := engine.reconciliation.Append(unresolvedRow.Unresolved, outcome.Judgement, unresolvedRow.AbstractFR, unresolvedRow.AbstractNL); err != nil {
			engine.logger.Warn("reconciliation append failed", "item", itemURL, "error", err)
			return false
		}
		engine.report.UnresolvedQueued++
	}

	return true
}

// Stores exposes the engine's stores for the stats and replay commands.
func (engine *Engine) Stores() (*store.CitationStore, *store.ReconciliationStore, *store.ErrorLog) {
	return engine.citations, engine.reconciliation, engine.errorLog
}

// State exposes the loaded crawl state.
func (engine *Engine) State() *CrawlState {
	return engine.state
}

// Config returns the engine's effective configuration.
func (engine *Engine) Config() Config {
	return engine.config
}
