// Package crawler drives the two-phase crawl pipeline: a bounded-parallel
// fetch phase that turns source items into discriminated outcomes, and a
// strictly serialized commit phase that merges outcomes into the keyed
// citation store and checkpoints crawl state after every commit.
package crawler

import (
	"log/slog"
	"time"

	"github.com/coolbeans/juricite/pkg/fetch"
	"github.com/coolbeans/juricite/pkg/types"
)

// Default configuration values.
const (
	// DefaultConcurrency bounds the parallel fetch operations.
	DefaultConcurrency = 5

	// DefaultDataDir is the default blob-store root.
	DefaultDataDir = ".juricite"
)

// Config holds the crawl configuration. It is passed explicitly through the
// orchestrator; no process-wide state exists outside the engine.
type Config struct {
	// SitemapIndexURL enumerates the batches. Failure to fetch it is the only
	// fatal error of a run.
	SitemapIndexURL string

	// Concurrency bounds the parallel fetch phase.
	Concurrency int

	// DataDir is the blob-store root directory.
	DataDir string

	// Fetch is the retry/timeout policy of the HTTP collaborator.
	Fetch fetch.Config

	// Logger receives batch summaries and per-item diagnostics. Nil disables
	// logging.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the default limits.
func DefaultConfig() Config {
	return Config{
		Concurrency: DefaultConcurrency,
		DataDir:     DefaultDataDir,
		Fetch:       fetch.DefaultConfig(),
	}
}

// OutcomeKind discriminates the result of fetching and parsing one item.
type OutcomeKind int

const (
	// OutcomeNetworkError marks a permanent transport failure. The item is
	// left unmarked so a later run retries it.
	OutcomeNetworkError OutcomeKind = iota

	// OutcomeEmpty marks an item whose document was empty.
	OutcomeEmpty

	// OutcomeSkip marks an item that cannot be processed, with a reason.
	OutcomeSkip

	// OutcomeNoCitations marks a parsed judgement carrying no citations.
	OutcomeNoCitations

	// OutcomeReady marks a judgement ready for the commit phase.
	OutcomeReady
)

// String returns a short name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmpty:
		return "empty"
	case OutcomeSkip:
		return "skip"
	case OutcomeNoCitations:
		return "no-citations"
	case OutcomeReady:
		return "ready-to-commit"
	default:
		return "network-error"
	}
}

// BasisRow is one resolved basis with the abstract text assigned to it,
// ready to merge into the citation store.
type BasisRow struct {
	Basis      types.LegalBasis
	AbstractFR string
	AbstractNL string
}

// UnresolvedRow is one unresolved basis with its assigned abstract text,
// bound for the reconciliation store.
type UnresolvedRow struct {
	Unresolved types.UnresolvedBasis
	AbstractFR string
	AbstractNL string
}

// Outcome is the discriminated result of the fetch phase for one item. Only
// OutcomeReady carries a payload.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error

	// Judgement and its commit rows, set for OutcomeReady.
	Judgement  *types.Judgement
	Rows       []BasisRow
	Unresolved []UnresolvedRow

	// FailedTexts holds citation strings no pattern recognized; the commit
	// phase records them in the error log keyed by the item's source URL.
	FailedTexts []string
}

// commitRequest pairs an item with its outcome on the serialized commit
// queue.
type commitRequest struct {
	itemURL string
	outcome Outcome
}

// Report summarizes one crawl run.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	BatchesSeen      int `json:"batches_seen"`
	BatchesCompleted int `json:"batches_completed"`
	BatchesFailed    int `json:"batches_failed"`

	ItemsProcessed   int `json:"items_processed"`
	ItemsCommitted   int `json:"items_committed"`
	ItemsEmpty       int `json:"items_empty"`
	ItemsSkipped     int `json:"items_skipped"`
	ItemsNoCitations int `json:"items_no_citations"`
	ItemsFailed      int `json:"items_failed"`

	BasesMerged      int `json:"bases_merged"`
	UnresolvedQueued int `json:"unresolved_queued"`
	TextsFailed      int `json:"texts_failed"`
}
