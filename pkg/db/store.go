package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/nichiei/pkg/sheet"
	"github.com/japaniel/nichiei/pkg/terms"
)

// ErrNotRecorded is returned when a document path has no glossary record.
var ErrNotRecorded = errors.New("document not recorded")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// CreateOrGetDocument returns the id of the document at path, inserting it
// or stamping it with a new revision.
func CreateOrGetDocument(db DBExecutor, path string, translated bool, revision string) (int64, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return 0, fmt.Errorf("path must be non-empty")
	}
	if revision == "" {
		return 0, fmt.Errorf("revision must be non-empty")
	}

	var id int64
	query := `INSERT INTO documents (path, translated, revision)
			  VALUES (?, ?, ?)
			  ON CONFLICT(path)
			  DO UPDATE SET
			    translated = excluded.translated,
			    revision = excluded.revision,
			    analyzed_at = CURRENT_TIMESTAMP
			  RETURNING id`
	if err := db.QueryRow(query, trimmed, translated, revision).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}
	return id, nil
}

// GetDocument looks a recorded document up by path.
func GetDocument(db DBExecutor, path string) (Document, error) {
	var d Document
	err := db.QueryRow(`SELECT id, path, translated, revision, analyzed_at FROM documents WHERE path = ?`,
		strings.TrimSpace(path)).Scan(&d.ID, &d.Path, &d.Translated, &d.Revision, &d.AnalyzedAt)
	if err == sql.ErrNoRows {
		return Document{}, fmt.Errorf("%w: %s", ErrNotRecorded, path)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// ClearDocument removes the pairs and term occurrences of a document so it
// can be recorded again.
func ClearDocument(db DBExecutor, documentID int64) error {
	if documentID <= 0 {
		return fmt.Errorf("documentID must be positive")
	}
	if _, err := db.Exec(`DELETE FROM term_occurrences WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear occurrences: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM pairs WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear pairs: %w", err)
	}
	return nil
}

// stagingPath names the row an analysis is written under until
// PromoteDocument moves it to path.
func stagingPath(path, revision string) string {
	return "pending:" + revision + ":" + strings.TrimSpace(path)
}

// DeleteDocument removes a document row together with its pairs and term
// occurrences.
func DeleteDocument(db DBExecutor, documentID int64) error {
	if err := ClearDocument(db, documentID); err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM documents WHERE id = ?`, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// PromoteDocument moves the document row stagedID to path, deleting the
// analysis previously recorded there.
func PromoteDocument(db DBExecutor, stagedID int64, path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return fmt.Errorf("path must be non-empty")
	}
	var oldID int64
	err := db.QueryRow(`SELECT id FROM documents WHERE path = ?`, trimmed).Scan(&oldID)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("promote document: %w", err)
	case oldID != stagedID:
		if err := DeleteDocument(db, oldID); err != nil {
			return err
		}
	}
	res, err := db.Exec(`UPDATE documents SET path = ?, analyzed_at = CURRENT_TIMESTAMP WHERE id = ?`, trimmed, stagedID)
	if err != nil {
		return fmt.Errorf("promote document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("promote document: no staged row %d", stagedID)
	}
	return nil
}

// InsertPair stores the pair at position pos of a document.
func InsertPair(db DBExecutor, documentID int64, pos int, p sheet.Pair) error {
	if documentID <= 0 {
		return fmt.Errorf("documentID must be positive")
	}
	if pos < 0 {
		return fmt.Errorf("position must not be negative, got %d", pos)
	}
	_, err := db.Exec(`INSERT INTO pairs (document_id, position, source, translation) VALUES (?, ?, ?, ?)`,
		documentID, pos, p.Source, p.Translation)
	if err != nil {
		return fmt.Errorf("insert pair %d: %w", pos, err)
	}
	return nil
}

// CreateOrGetTerm returns existing term id or inserts a new term and returns its id.
func CreateOrGetTerm(db DBExecutor, k terms.Key) (int64, error) {
	if strings.TrimSpace(k.Root) == "" {
		return 0, fmt.Errorf("term root must be non-empty")
	}
	var id int64
	query := `INSERT INTO terms (root_form, pronunciation)
			  VALUES (?, ?)
			  ON CONFLICT(root_form, pronunciation)
			  DO UPDATE SET root_form = excluded.root_form
			  RETURNING id`
	if err := db.QueryRow(query, k.Root, k.Pronunciation).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert term: %w", err)
	}
	return id, nil
}

// AddOccurrence records one more occurrence of a term in the pair at pos.
func AddOccurrence(db DBExecutor, termID, documentID int64, pos int) error {
	if termID <= 0 {
		return fmt.Errorf("termID must be positive")
	}
	if documentID <= 0 {
		return fmt.Errorf("documentID must be positive")
	}
	_, err := db.Exec(`INSERT INTO term_occurrences (term_id, document_id, position, occurrence_count)
	VALUES (?, ?, ?, 1)
	ON CONFLICT(term_id, document_id, position) DO UPDATE SET
	  occurrence_count = term_occurrences.occurrence_count + 1`,
		termID, documentID, pos)
	if err != nil {
		return fmt.Errorf("add occurrence: %w", err)
	}
	return nil
}

// GetPairs returns the pairs of a document in position order.
func GetPairs(db DBExecutor, documentID int64) ([]sheet.Pair, error) {
	rows, err := db.Query(`SELECT source, translation FROM pairs WHERE document_id = ? ORDER BY position`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []sheet.Pair
	for rows.Next() {
		var p sheet.Pair
		if err := rows.Scan(&p.Source, &p.Translation); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTermIndex rebuilds the term index of a document. A term seen n times in
// one pair lists that position n times.
func GetTermIndex(db DBExecutor, documentID int64) (terms.Index, error) {
	rows, err := db.Query(`SELECT t.root_form, t.pronunciation, o.position, o.occurrence_count
		FROM term_occurrences o JOIN terms t ON t.id = o.term_id
		WHERE o.document_id = ?
		ORDER BY t.root_form, t.pronunciation, o.position`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ix := make(terms.Index)
	for rows.Next() {
		var k terms.Key
		var pos, count int
		if err := rows.Scan(&k.Root, &k.Pronunciation, &pos, &count); err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			ix.Add(k, pos)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ix, nil
}

// SharedTerms returns the terms two recorded documents have in common,
// ordered by root form then pronunciation, each with the earliest pair it
// appears in on both sides.
func SharedTerms(db DBExecutor, untranslatedID, translatedID int64) ([]SharedTerm, error) {
	rows, err := db.Query(`
		SELECT t.root_form, t.pronunciation, u.pos, v.pos, pu.source, pv.source, pv.translation
		FROM terms t
		JOIN (SELECT term_id, MIN(position) AS pos FROM term_occurrences WHERE document_id = ? GROUP BY term_id) u
		  ON u.term_id = t.id
		JOIN (SELECT term_id, MIN(position) AS pos FROM term_occurrences WHERE document_id = ? GROUP BY term_id) v
		  ON v.term_id = t.id
		JOIN pairs pu ON pu.document_id = ? AND pu.position = u.pos
		JOIN pairs pv ON pv.document_id = ? AND pv.position = v.pos
		ORDER BY t.root_form, t.pronunciation`,
		untranslatedID, translatedID, untranslatedID, translatedID)
	if err != nil {
		return nil, fmt.Errorf("shared terms: %w", err)
	}
	defer rows.Close()
	var out []SharedTerm
	for rows.Next() {
		var s SharedTerm
		if err := rows.Scan(&s.Key.Root, &s.Key.Pronunciation,
			&s.UntranslatedPosition, &s.TranslatedPosition,
			&s.UntranslatedSource, &s.TranslatedSource, &s.Translation); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
