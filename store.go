package edinet

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists extraction results in a SQLite database. The handle has an
// explicit open/close lifecycle owned by the caller; the extraction core
// never touches it.
type Store struct {
	conn *sql.DB
}

// FilingRecord is the stored metadata for one extracted filing.
type FilingRecord struct {
	DocID     string `json:"docId"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

// OpenStore opens (creating if needed) an extraction store at path.
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) createTables() error {
	schema := `
		CREATE TABLE IF NOT EXISTS extractions (
			doc_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("creating extractions table: %w", err)
	}
	return nil
}

// SaveExtraction stores (or replaces) the extraction for a document ID.
func (s *Store) SaveExtraction(docID, title string, ex *Extraction) error {
	if docID == "" {
		return fmt.Errorf("document ID is required")
	}
	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshaling extraction: %w", err)
	}

	query := `INSERT OR REPLACE INTO extractions (doc_id, title, data) VALUES (?, ?, ?)`
	if _, err := s.conn.Exec(query, docID, title, data); err != nil {
		return fmt.Errorf("storing extraction %s: %w", docID, err)
	}
	return nil
}

// GetExtraction loads the extraction stored for a document ID.
func (s *Store) GetExtraction(docID string) (*Extraction, error) {
	var data []byte
	err := s.conn.QueryRow(`SELECT data FROM extractions WHERE doc_id = ?`, docID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("extraction not found for %s", docID)
		}
		return nil, fmt.Errorf("querying extraction %s: %w", docID, err)
	}

	var ex Extraction
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("unmarshaling extraction %s: %w", docID, err)
	}
	return &ex, nil
}

// ListExtractions returns stored filing records, newest first.
func (s *Store) ListExtractions() ([]FilingRecord, error) {
	rows, err := s.conn.Query(`
		SELECT doc_id, title, created_at
		FROM extractions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing extractions: %w", err)
	}
	defer rows.Close()

	var records []FilingRecord
	for rows.Next() {
		var r FilingRecord
		if err := rows.Scan(&r.DocID, &r.Title, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning extraction row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteExtraction removes the stored extraction for a document ID.
func (s *Store) DeleteExtraction(docID string) error {
	if _, err := s.conn.Exec(`DELETE FROM extractions WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("deleting extraction %s: %w", docID, err)
	}
	return nil
}
