package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	t "github.com/repriest/quicklink/internal/storage/types"
)

type pgStorage struct {
	db *sql.DB
}

func NewPgStorage(dsn string) (t.Storage, error) {
	if dsn == "" {
		return nil, errors.New("empty database DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS mappings (
			original_url TEXT PRIMARY KEY,
			short_url TEXT NOT NULL UNIQUE
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table mappings: %w", err)
	}

	return &pgStorage{db: db}, nil
}

func (s *pgStorage) Load() ([]t.Mapping, error) {
	rows, err := s.db.Query("SELECT original_url, short_url FROM mappings")
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var entries []t.Mapping
	for rows.Next() {
		entry := t.Mapping{}
		if err := rows.Scan(&entry.OriginalURL, &entry.ShortURL); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(entries) == 0 {
		return nil, t.ErrNoData
	}
	return entries, nil
}

// Save replaces the stored set with entries in a single transaction.
func (s *pgStorage) Save(entries []t.Mapping) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceAll(tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// replaceAll empties the table and inserts entries with one statement.
func replaceAll(ex execer, entries []t.Mapping) error {
	if _, err := ex.Exec("DELETE FROM mappings"); err != nil {
		return fmt.Errorf("failed to clear mappings: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	originals := make([]string, 0, len(entries))
	shorts := make([]string, 0, len(entries))
	for _, e := range entries {
		originals = append(originals, e.OriginalURL)
		shorts = append(shorts, e.ShortURL)
	}
	_, err := ex.Exec(`
		INSERT INTO mappings (original_url, short_url)
		SELECT * FROM unnest($1::text[], $2::text[])
	`, originals, shorts)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func (s *pgStorage) Close() error {
	return s.db.Close()
}

func classifyError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%w: %s", t.ErrShortURLTaken, pgErr.Detail)
	}
	return fmt.Errorf("failed to insert mapping: %w", err)
}
