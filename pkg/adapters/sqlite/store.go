package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	submission_id TEXT PRIMARY KEY,
	flow_type     TEXT NOT NULL,
	name          TEXT,
	email         TEXT,
	phone         TEXT,
	payload       TEXT NOT NULL,
	created_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_flow ON submissions(flow_type);
`

// SubmissionStore implements ports.SubmissionStore on a local SQLite database.
// Rows are keyed by submission id, so retries of the same submission are stored once.
type SubmissionStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*SubmissionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// modernc's in-memory databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SubmissionStore{db: db}, nil
}

// Store inserts the payload. A second write with the same submission id is ignored.
func (s *SubmissionStore) Store(ctx context.Context, p domain.Payload) (domain.Receipt, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	ts := p.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO submissions (submission_id, flow_type, name, email, phone, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.SubmissionID, p.Type, p.Contact.Name, p.Contact.Email, p.Contact.Phone, string(data), ts.UTC(),
	)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to insert submission: %w", err)
	}

	msg := "stored"
	if n, _ := res.RowsAffected(); n == 0 {
		msg = "duplicate"
	}
	return domain.Receipt{ID: p.SubmissionID, Message: msg}, nil
}

// Get returns the stored payload for id.
func (s *SubmissionStore) Get(ctx context.Context, id string) (domain.Payload, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM submissions WHERE submission_id = ?`, id).Scan(&data)
	if err != nil {
		return domain.Payload{}, fmt.Errorf("failed to read submission %s: %w", id, err)
	}
	var p domain.Payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return domain.Payload{}, fmt.Errorf("failed to unmarshal submission %s: %w", id, err)
	}
	return p, nil
}

// Count returns the number of stored submissions.
func (s *SubmissionStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SubmissionStore) Close() error {
	return s.db.Close()
}
