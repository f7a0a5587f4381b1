package store

import (
	"github.com/coolbeans/juricite/pkg/blobstore"
)

// errorLogKey is the blob key of the extraction error log.
const errorLogKey = "errors"

// ErrorLog records citation strings that failed extraction, deduplicated per
// (source URL, raw text). Diagnostic only; it never blocks progress.
type ErrorLog struct {
	blobs   *blobstore.Store
	entries map[string][]string
	loaded  bool
}

// NewErrorLog creates an error log over the blob store.
func NewErrorLog(blobs *blobstore.Store) *ErrorLog {
	return &ErrorLog{blobs: blobs}
}

// Record logs one failed raw citation string for a source URL and flushes.
// Recording the same (source, text) pair again is a no-op.
func (errorLog *ErrorLog) Record(sourceURL, rawText string) error {
	if err := errorLog.load(); err != nil {
		return err
	}

	for _, existing := range errorLog.entries[sourceURL] {
		if existing == rawText {
			return nil
		}
	}
	errorLog.entries[sourceURL] = append(errorLog.entries[sourceURL], rawText)

	return errorLog.blobs.Save(errorLogKey, errorLog.entries)
}

// Size returns the total number of logged strings.
func (errorLog *ErrorLog) Size() (int, error) {
	if err := errorLog.load(); err != nil {
		return 0, err
	}
	total := 0
	for _, texts := range errorLog.entries {
		total += len(texts)
	}
	return total, nil
}

func (errorLog *ErrorLog) load() error {
	if errorLog.loaded {
		return nil
	}
	errorLog.entries = make(map[string][]string)
	if _, err := errorLog.blobs.Load(errorLogKey, &errorLog.entries); err != nil {
		return err
	}
	errorLog.loaded = true
	return nil
}
