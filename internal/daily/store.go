package daily

import (
	"context"
	"database/sql"
)

type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	WordIndex int    `json:"wordIndex"`
	Guesses   int    `json:"guesses"`
	Incorrect int    `json:"incorrect"`
	ElapsedMs int    `json:"elapsedMs"`
	Won       bool   `json:"won"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, word_index, guesses, incorrect, elapsed_ms, won)
		 VALUES(?,?,?,?,?,?,?)`, r.UserID, r.Date, r.WordIndex, r.Guesses, r.Incorrect, r.ElapsedMs, r.Won,
	)
	return err
}

type LBRow struct {
	UserID    string `json:"userId"`
	Username  string `json:"username,omitempty"` // empty for guests
	Guesses   int    `json:"guesses"`
	Incorrect int    `json:"incorrect"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard ranks a day's winners by fewest misses, then time, then guesses.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, ''), d.guesses, d.incorrect, d.elapsed_ms
		 FROM daily_results d
		 LEFT JOIN users u ON u.id = d.user_id
		 WHERE d.date=? AND d.won=1
		 ORDER BY d.incorrect ASC, d.elapsed_ms ASC, d.guesses ASC, d.created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Guesses, &r.Incorrect, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
