package store

import (
	"testing"
)

func TestErrorLogRecord(t *testing.T) {
	blobs := newTestBlobs(t)
	errorLog := NewErrorLog(blobs)

	if err := errorLog.Record("https://example.org/rec/1", "voir aussi Cass. 12 mars 2020"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	// Same (source, text) pair again is a no-op.
	if err := errorLog.Record("https://example.org/rec/1", "voir aussi Cass. 12 mars 2020"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	// Same text under another source is a distinct entry.
	if err := errorLog.Record("https://example.org/rec/2", "voir aussi Cass. 12 mars 2020"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	size, err := errorLog.Size()
	if err != nil {
		t.Fatalf("Size returned error: %v", err)
	}
	if size != 2 {
		t.Errorf("size = %d, want 2", size)
	}

	// The log flushes synchronously.
	reloaded := NewErrorLog(blobs)
	if size, err = reloaded.Size(); err != nil || size != 2 {
		t.Errorf("reloaded size = %d (err %v), want 2", size, err)
	}
}
