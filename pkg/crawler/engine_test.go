package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coolbeans/juricite/pkg/blobstore"
	"github.com/coolbeans/juricite/pkg/fetch"
)

const engineTestIdentifier = "https://www.ejustice.just.fgov.be/eli/loi/1967/10/10/1967101052/justel"

// testCrawlServer serves a one-batch crawl: an index, a batch sitemap, one
// record carrying a resolvable citation and one record without citations.
func testCrawlServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/index.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<sitemapindex><sitemap><loc>%s/batch1.xml</loc></sitemap></sitemapindex>`, server.URL)
	})
	mux.HandleFunc("/batch1.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset>
  <url><loc>%s/rec/1</loc></url>
  <url><loc>%s/rec/2</loc></url>
</urlset>`, server.URL, server.URL)
	})
	mux.HandleFunc("/rec/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<record>
  <identifier>ECLI:BE:CASS:2020:ARR.0001</identifier>
  <court>CASS</court>
  <date>2020-03-12</date>
  <reference type="citation" lang="FR">Loi du 10-10-1967 - Art. 14 - 23</reference>
  <reference type="link" lang="FR">%s</reference>
  <abstract lang="FR">La faute aquilienne suppose un dommage certain.</abstract>
</record>`, engineTestIdentifier)
	})
	mux.HandleFunc("/rec/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<record>
  <identifier>ECLI:BE:CASS:2020:ARR.0002</identifier>
  <court>CASS</court>
  <date>2020-03-13</date>
</record>`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testFetchConfig() fetch.Config {
	return fetch.Config{
		Timeout:    2 * time.Second,
		RetryCount: 1,
		RetryDelay: time.Millisecond,
	}
}

func TestEngineRunCommitsAndPromotes(t *testing.T) {
	server := testCrawlServer(t)
	dataDir := t.TempDir()

	engine, err := New(Config{
		SitemapIndexURL: server.URL + "/index.xml",
		Concurrency:     2,
		DataDir:         dataDir,
		Fetch:           testFetchConfig(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.BatchesSeen != 1 || report.BatchesCompleted != 1 || report.BatchesFailed != 0 {
		t.Errorf("batch counters = %d seen, %d completed, %d failed",
			report.BatchesSeen, report.BatchesCompleted, report.BatchesFailed)
	}
	if report.ItemsProcessed != 2 || report.ItemsCommitted != 1 || report.ItemsNoCitations != 1 {
		t.Errorf("item counters = %d processed, %d committed, %d no-citations",
			report.ItemsProcessed, report.ItemsCommitted, report.ItemsNoCitations)
	}
	if report.BasesMerged != 1 {
		t.Errorf("bases merged = %d, want 1", report.BasesMerged)
	}

	// The batch was promoted and its items pruned.
	state := engine.State()
	if !state.IsBatchDone(server.URL + "/batch1.xml") {
		t.Error("batch not promoted")
	}
	if state.IsItemDone(server.URL + "/rec/1") {
		t.Error("item marker not pruned after batch promotion")
	}

	// The resolved basis landed in the citation store under its identifier.
	citations, _, _ := engine.Stores()
	lawEntry, err := citations.Entry(engineTestIdentifier)
	if err != nil {
		t.Fatalf("Entry returned error: %v", err)
	}
	record := lawEntry["14"]["ECLI:BE:CASS:2020:ARR.0001"]
	if record == nil {
		t.Fatal("committed basis missing from the citation store")
	}
	if record.Court != "CASS" || len(record.AbstractsFR) != 1 {
		t.Errorf("stored record = %+v", record)
	}
}

// A transport failure leaves the item unmarked and the batch un-promoted so a
// later run retries both.
func TestEngineRunTransportFailure(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/index.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<sitemapindex><sitemap><loc>%s/batch1.xml</loc></sitemap></sitemapindex>`, server.URL)
	})
	mux.HandleFunc("/batch1.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset><url><loc>%s/rec/1</loc></url></urlset>`, server.URL)
	})
	mux.HandleFunc("/rec/1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	engine, err := New(Config{
		SitemapIndexURL: server.URL + "/index.xml",
		DataDir:         t.TempDir(),
		Fetch:           testFetchConfig(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.ItemsFailed != 1 || report.BatchesFailed != 1 || report.BatchesCompleted != 0 {
		t.Errorf("counters = %d items failed, %d batches failed, %d completed",
			report.ItemsFailed, report.BatchesFailed, report.BatchesCompleted)
	}

	state := engine.State()
	if state.IsBatchDone(server.URL+"/batch1.xml") || state.IsItemDone(server.URL+"/rec/1") {
		t.Error("failed work must stay unmarked for the next run")
	}
}

// Batches completed in a prior run are skipped entirely.
func TestEngineRunResumesPastCompletedBatches(t *testing.T) {
	server := testCrawlServer(t)
	dataDir := t.TempDir()

	blobs, err := blobstore.New(dataDir)
	if err != nil {
		t.Fatalf("blobstore.New returned error: %v", err)
	}
	priorState, err := LoadState(blobs)
	if err != nil {
		t.Fatalf("LoadState returned error: %v", err)
	}
	priorState.MarkBatch(server.URL+"/batch1.xml", nil)
	if err := priorState.Save(blobs); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	engine, err := New(Config{
		SitemapIndexURL: server.URL + "/index.xml",
		DataDir:         dataDir,
		Fetch:           testFetchConfig(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	report, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.BatchesSeen != 0 || report.ItemsProcessed != 0 {
		t.Errorf("resumed run reprocessed work: %+v", report)
	}
}

// Failure to enumerate the batches is the run's only fatal error.
func TestEngineRunIndexFailureIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	engine, err := New(Config{
		SitemapIndexURL: server.URL + "/index.xml",
		DataDir:         t.TempDir(),
		Fetch:           testFetchConfig(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := engine.Run(context.Background()); err == nil {
		t.Error("expected a fatal error when the index cannot be fetched")
	}
}
