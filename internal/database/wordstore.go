package database

import (
	"context"
	"database/sql"
	"fmt"
)

// WordStore keeps the word bank in the words table. It satisfies
// words.BankStore.
type WordStore struct{ db *sql.DB }

func NewWordStore(db *sql.DB) *WordStore { return &WordStore{db: db} }

// Load returns the stored words in insertion order.
func (s *WordStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word FROM words ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load words: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Save replaces the stored bank with list.
func (s *WordStore) Save(ctx context.Context, list []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO words (word, position) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, w := range list {
		if _, err := stmt.ExecContext(ctx, w, i); err != nil {
			return fmt.Errorf("insert word %q: %w", w, err)
		}
	}
	return tx.Commit()
}
