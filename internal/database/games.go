package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

// Owner identifies who played a game: a signed-in user or an anonymous cookie.
type Owner struct {
	UserID      string
	AnonymousID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return `user_id=?`, o.UserID
	}
	return `anonymous_id=?`, o.AnonymousID
}

// GameRow is the persisted summary of a game. The word is only stored
// once the game is finished.
type GameRow struct {
	ID           string `json:"id"`
	Word         string `json:"word,omitempty"`
	MaxIncorrect int    `json:"maxIncorrect"`
	Status       string `json:"status"`
	Guesses      int    `json:"guesses"`
	Incorrect    int    `json:"incorrect"`
	StartedAt    string `json:"startedAt"`
	FinishedAt   string `json:"finishedAt,omitempty"`
}

// Games is the repository for game history rows.
type Games struct{ db *sql.DB }

func NewGames(db *sql.DB) *Games { return &Games{db: db} }

// Insert records a freshly started game for owner. Rows always start
// as playing; Record moves them to their final status.
func (g *Games) Insert(ctx context.Context, owner Owner, st game.State) error {
	var userID, anonID any
	if owner.UserID != "" {
		userID = owner.UserID
	} else {
		anonID = owner.AnonymousID
	}
	_, err := g.db.ExecContext(ctx, `INSERT INTO games (id, user_id, anonymous_id, max_incorrect, status, started_at)
	                                 VALUES (?,?,?,?,?,?)`,
		st.ID, userID, anonID, st.MaxIncorrect, string(game.StatusInProgress), st.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert game %s: %w", st.ID, err)
	}
	return nil
}

// Record persists progress for a game owned by owner. When the game has
// just finished, the final status is stored and (for signed-in owners)
// the user's stats are bumped in the same transaction.
func (g *Games) Record(ctx context.Context, owner Owner, st game.State) error {
	where, arg := owner.clause()
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE games SET guesses=?, incorrect=? WHERE id=? AND `+where,
		st.Guesses, st.IncorrectCount, st.ID, arg); err != nil {
		return fmt.Errorf("update game %s: %w", st.ID, err)
	}

	if st.Status.Finished() {
		res, err := tx.ExecContext(ctx, `UPDATE games SET status=?, word=?, finished_at=?
		                                 WHERE id=? AND status='playing' AND `+where,
			string(st.Status), st.Word, st.EndedAt.UTC().Format(time.RFC3339), st.ID, arg)
		if err != nil {
			return fmt.Errorf("finish game %s: %w", st.ID, err)
		}
		// Only the transition into a terminal state counts towards stats.
		if n, _ := res.RowsAffected(); n == 1 && owner.UserID != "" {
			if err := BumpStats(ctx, tx, owner.UserID, st.Status == game.StatusWon); err != nil {
				return fmt.Errorf("bump stats: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Mine lists a user's most recent games.
func (g *Games) Mine(ctx context.Context, userID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := g.db.QueryContext(ctx, `SELECT id, word, max_incorrect, status, guesses, incorrect, started_at, COALESCE(finished_at,'')
	                                     FROM games WHERE user_id=? ORDER BY started_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var r GameRow
		if err := rows.Scan(&r.ID, &r.Word, &r.MaxIncorrect, &r.Status, &r.Guesses, &r.Incorrect, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonymous transfers anonymous games to a user after sign-in.
func (g *Games) ClaimAnonymous(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := g.db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
