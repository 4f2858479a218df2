package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"deckflow/internal/models"
)

// SQLiteDeckStore persists decks as JSON documents in a single table. Useful
// for single-node deployments without a MongoDB instance.
type SQLiteDeckStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS decks (
	deck_id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decks_created_at ON decks (created_at DESC);
`

// NewSQLiteDeckStore opens (creating if needed) the SQLite database at path.
func NewSQLiteDeckStore(path string) (*SQLiteDeckStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes internally; a single connection avoids
	// SQLITE_BUSY under concurrent slide updates.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}

	return &SQLiteDeckStore{db: db}, nil
}

// Save upserts the full deck document
func (s *SQLiteDeckStore) Save(ctx context.Context, deck *models.Deck) error {
	data, err := json.Marshal(deck)
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO decks (deck_id, data, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		deck.ID, string(data),
		deck.CreatedAt.UTC().Format(time.RFC3339Nano),
		deck.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}
	return nil
}

// Get retrieves a deck by ID
func (s *SQLiteDeckStore) Get(ctx context.Context, deckID string) (*models.Deck, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM decks WHERE deck_id = ?`, deckID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	var deck models.Deck
	if err := json.Unmarshal([]byte(data), &deck); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deck: %w", err)
	}
	return &deck, nil
}

// UpdateStatus sets status, step and updated_at on the stored document
func (s *SQLiteDeckStore) UpdateStatus(ctx context.Context, deckID string, status models.DeckStatus, step string) error {
	deck, err := s.Get(ctx, deckID)
	if err != nil {
		return err
	}

	deck.Status = status
	deck.Step = &step
	deck.UpdatedAt = time.Now().UTC()
	return s.Save(ctx, deck)
}

// ListRecent returns decks ordered by created_at descending
func (s *SQLiteDeckStore) ListRecent(ctx context.Context, limit int) ([]*models.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM decks ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []*models.Deck
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		var deck models.Deck
		if err := json.Unmarshal([]byte(data), &deck); err != nil {
			return nil, fmt.Errorf("failed to unmarshal deck: %w", err)
		}
		decks = append(decks, &deck)
	}
	return decks, rows.Err()
}

// Delete removes a deck
func (s *SQLiteDeckStore) Delete(ctx context.Context, deckID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE deck_id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if affected == 0 {
		return ErrDeckNotFound
	}
	return nil
}

// Close closes the database handle
func (s *SQLiteDeckStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDeckStore) Close(ctx context.Context) error {
	return s.db.Close()
}
