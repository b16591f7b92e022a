// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-summary/pkg/types"
)

// Store is the durable generation log, backed by SQLite. Unlike the Ledger
// it is never truncated.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the SQLite database at path and creates the
// schema if it does not exist.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			researcher_id TEXT NOT NULL,
			researcher_name TEXT,
			prompt TEXT NOT NULL,
			generated_text TEXT NOT NULL,
			provider TEXT,
			model TEXT,
			request TEXT NOT NULL,
			selection TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_researcher ON generations(researcher_id)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_created ON generations(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends rec to the log.
func (s *Store) Record(ctx context.Context, rec types.GenerationRecord) error {
	req, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	sel, err := json.Marshal(rec.Selection)
	if err != nil {
		return fmt.Errorf("marshaling selection: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generations
			(id, created_at, researcher_id, researcher_name, prompt, generated_text, provider, model, request, selection)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.ResearcherID, rec.ResearcherName,
		rec.Prompt, rec.GeneratedText, string(rec.Provider), rec.Model, string(req), string(sel),
	)
	if err != nil {
		return fmt.Errorf("inserting generation %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit records, newest first. A limit of zero or less
// returns every record.
func (s *Store) List(ctx context.Context, limit int) ([]types.GenerationRecord, error) {
	query := `SELECT id, created_at, researcher_id, researcher_name, prompt, generated_text,
			provider, model, request, selection
		FROM generations ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying generations: %w", err)
	}
	defer rows.Close()

	var records []types.GenerationRecord
	for rows.Next() {
		var (
			rec                 types.GenerationRecord
			createdAt, provider string
			name, model         sql.NullString
			req, sel            string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &rec.ResearcherID, &name, &rec.Prompt,
			&rec.GeneratedText, &provider, &model, &req, &sel); err != nil {
			return nil, fmt.Errorf("scanning generation: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of %s: %w", rec.ID, err)
		}
		rec.ResearcherName = name.String
		rec.Provider = types.Provider(provider)
		rec.Model = model.String
		if err := json.Unmarshal([]byte(req), &rec.Request); err != nil {
			return nil, fmt.Errorf("decoding request of %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(sel), &rec.Selection); err != nil {
			return nil, fmt.Errorf("decoding selection of %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of logged generations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM generations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting generations: %w", err)
	}
	return n, nil
}
