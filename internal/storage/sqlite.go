// Package storage persists the scraped quote set so the serving corpus can
// be rebuilt after a restart without re-crawling.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/meigen/internal/models"
)

// Archive is a SQLite-backed copy of the latest successfully ingested quote
// set. It is written wholesale after each rebuild and read once at startup;
// the serving path never touches it.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Archive, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Archive{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY,
		text TEXT NOT NULL,
		author TEXT NOT NULL,
		tags TEXT,
		author_about TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_author ON quotes(author);
	`
	_, err := db.Exec(schema)
	return err
}

// ReplaceAll swaps the archived quote set in a single transaction: the old
// rows are deleted and the new set inserted, so a reader of the file never
// sees a mix of two crawls.
func (a *Archive) ReplaceAll(ctx context.Context, quotes []models.Quote) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quotes`); err != nil {
		return fmt.Errorf("clear quotes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quotes (id, text, author, tags, author_about) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		tagsJSON, err := json.Marshal(q.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for quote %d: %w", q.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, q.ID, q.Text, q.Author, string(tagsJSON), q.AuthorAbout); err != nil {
			return fmt.Errorf("insert quote %d: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// LoadAll returns the archived quote set in id order. An empty archive
// returns an empty slice and no error.
func (a *Archive) LoadAll(ctx context.Context) ([]models.Quote, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, text, author, tags, author_about FROM quotes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var q models.Quote
		var tagsJSON sql.NullString
		var about sql.NullString
		if err := rows.Scan(&q.ID, &q.Text, &q.Author, &tagsJSON, &about); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &q.Tags); err != nil {
				return nil, fmt.Errorf("unmarshal tags for quote %d: %w", q.ID, err)
			}
		}
		q.AuthorAbout = about.String
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

// Count returns the number of archived quotes.
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
