// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's game (creates or reuses a session)
//   - POST /daily/guess       → guess a letter or the word in today's game
//   - GET  /daily/leaderboard → today's (or ?date=) winners, fewest misses first
//
// Every player gets the same word on a given UTC day, chosen by
// HMAC(DAILY_SALT, date) over the sorted word bank the first time the
// day is served; later edits to the bank take effect the next day. Each
// player can finish the daily game once; the result is persisted when
// it ends. Sessions from earlier days are dropped when the date changes.

package httpserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/daily"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	mu       sync.Mutex               // guards the fields below
	sessions map[string]*dailySession // active sessions keyed by owner|date
	word     dailyWord                // word of the day, fixed once served
}

// dailyWord is the word chosen for one date.
type dailyWord struct {
	Date  string
	Index int
	Word  string
}

// dailySession links a player's daily game in the store to its date.
type dailySession struct {
	GameID    string
	Date      string
	WordIndex int
	Recorded  bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		sessions: make(map[string]*dailySession),
	}
	s.dailies = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns today's word, choosing it on the first call of the day.
// A new date also drops the sessions of earlier days.
func (d *dailyServer) today() (dailyWord, error) {
	now := d.srv.now().UTC()
	date := daily.DateKey(now)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.word.Date == date {
		return d.word, nil
	}
	list := d.srv.bank.Sorted()
	if len(list) == 0 {
		return dailyWord{Date: date}, words.ErrNoWords
	}
	idx := daily.WordIndex(now, d.srv.cfg.DailySalt, len(list))
	d.word = dailyWord{Date: date, Index: idx, Word: list[idx]}
	for key, sess := range d.sessions {
		if sess.Date != date {
			delete(d.sessions, key)
		}
	}
	return d.word, nil
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string      `json:"gameId,omitempty"`
	Date   string      `json:"date"`
	Played bool        `json:"played"`
	State  *game.State `json:"state,omitempty"`
}

// handleNew creates or reuses today's session.
// - If the player already has a result for today → Played=true.
// - Otherwise create/reuse an in-memory game and return its state.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	owner := d.srv.owner(w, r)
	uid := ownerKey(owner)
	today, err := d.today()
	if err != nil {
		d.srv.gameError(w, r, err)
		return
	}
	date := today.Date

	if played, err := d.srv.daily.AlreadyPlayed(r.Context(), uid, date); err != nil {
		log.Warn().Err(err).Str("user", uid).Msg("daily: already played")
	} else if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if sess, ok := d.sessions[key]; ok {
		if st, _, err := d.srv.store.Get(r.Context(), sess.GameID); err == nil {
			writeJSON(w, http.StatusOK, dailyNewRes{GameID: sess.GameID, Date: date, Played: st.Status.Finished(), State: &st})
			return
		}
	}

	g, err := game.New(today.Word, d.srv.cfg.MaxIncorrect, game.WithClock(d.srv.now))
	if err != nil {
		d.srv.gameError(w, r, err)
		return
	}
	if err := d.srv.store.Save(r.Context(), store.Entry{Game: g, Owner: uid, Daily: true}); err != nil {
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.sessions[key] = &dailySession{GameID: g.ID(), Date: date, WordIndex: today.Index}
	st := g.Snapshot()
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: g.ID(), Date: date, State: &st})
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessRes struct {
	guessRes
	Date string `json:"date"`
}

// handleGuess applies a guess to today's game and stores the result once
// the game ends.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	uid := ownerKey(d.srv.owner(w, r))
	date := daily.DateKey(d.srv.now())

	d.mu.Lock()
	sess, ok := d.sessions[uid+"|"+date]
	d.mu.Unlock()
	if !ok || sess.GameID != req.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}

	res, err := d.srv.applyGuess(r, req.GameID, req.Guess, true)
	if err != nil {
		d.srv.gameError(w, r, err)
		return
	}

	if res.State.Status.Finished() {
		d.mu.Lock()
		record := !sess.Recorded
		sess.Recorded = true
		d.mu.Unlock()
		if record {
			err := d.srv.daily.InsertResult(r.Context(), daily.Result{
				UserID:    uid,
				Date:      date,
				WordIndex: sess.WordIndex,
				Guesses:   res.State.Guesses,
				Incorrect: res.State.IncorrectCount,
				ElapsedMs: int(res.State.EndedAt.Sub(res.State.StartedAt) / time.Millisecond),
				Won:       res.State.Status == game.StatusWon,
			})
			if err != nil {
				log.Warn().Err(err).Str("user", uid).Msg("daily: insert result")
			}
		}
	}
	writeJSON(w, http.StatusOK, dailyGuessRes{guessRes: res, Date: date})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
