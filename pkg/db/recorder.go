package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/japaniel/nichiei/pkg/sheet"
	"github.com/japaniel/nichiei/pkg/terms"
)

// DefaultBatchSize is the number of writes committed per transaction.
const DefaultBatchSize = 200

// Recorder writes document analyses into the glossary database.
type Recorder struct {
	DB        *sql.DB
	BatchSize int
	// Logger is used for informational messages. nil means no logging.
	Logger *slog.Logger
	// NewRevision generates revision ids. nil means uuid.NewString.
	NewRevision func() string
}

// NewRecorder creates a Recorder with the default batch size.
func NewRecorder(conn *sql.DB) *Recorder {
	return &Recorder{DB: conn, BatchSize: DefaultBatchSize}
}

// Record replaces the stored analysis of the document at path and returns
// the revision id it was stamped with.
func (r *Recorder) Record(ctx context.Context, path string, translated bool, pairs []sheet.Pair, ix terms.Index) (string, error) {
	newRevision := r.NewRevision
	if newRevision == nil {
		newRevision = uuid.NewString
	}
	rev := newRevision()

	bw := NewBatchWriter(ctx, r.DB, r.BatchSize)
	n, err := RecordDocument(bw, path, translated, rev, pairs, ix)
	if err != nil {
		return "", err
	}
	if r.Logger != nil {
		r.Logger.Info("analysis recorded",
			slog.String("path", path),
			slog.String("revision", rev),
			slog.Int("pairs", len(pairs)),
			slog.Int("occurrences", n),
			slog.Int("batches", bw.Batches))
	}
	return rev, nil
}

// RecordDocument submits the writes for one document analysis to bw and
// closes it. It returns the number of term occurrences written.
//
// The analysis is written under a staging row and only replaces the record at
// path in the final batch, so a failed batch leaves the previous record
// intact. On failure the staging row is deleted.
func RecordDocument(bw *BatchWriter, path string, translated bool, revision string, pairs []sheet.Pair, ix terms.Index) (int, error) {
	var stagedID int64
	total := 0

	fail := func(err error) (int, error) {
		if !bw.closed {
			_ = bw.Close()
		}
		if stagedID > 0 && bw.db != nil {
			_ = DeleteDocument(bw.db, stagedID)
		}
		return 0, err
	}

	err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("path must be non-empty")
		}
		id, err := CreateOrGetDocument(tx, stagingPath(path, revision), translated, revision)
		if err != nil {
			return err
		}
		stagedID = id
		return ClearDocument(tx, stagedID)
	})
	if err != nil {
		return fail(err)
	}

	for i, p := range pairs {
		pos, pair := i, p
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			return InsertPair(tx, stagedID, pos, pair)
		}); err != nil {
			return fail(err)
		}
	}

	for _, k := range ix.Keys() {
		key, positions := k, ix[k]
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			termID, err := CreateOrGetTerm(tx, key)
			if err != nil {
				return fmt.Errorf("failed to persist term %s: %w", key, err)
			}
			for _, pos := range positions {
				if err := AddOccurrence(tx, termID, stagedID, pos); err != nil {
					return fmt.Errorf("failed to link term %d: %w", termID, err)
				}
				total++
			}
			return nil
		}); err != nil {
			return fail(err)
		}
	}

	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		return PromoteDocument(tx, stagedID, path)
	}); err != nil {
		return fail(err)
	}
	if err := bw.Close(); err != nil {
		return fail(err)
	}
	return total, nil
}
