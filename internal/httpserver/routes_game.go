// internal/httpserver/routes_game.go
//
// Free-play game endpoints:
//   - POST /game/new   → start a game (random word, or a supplied one)
//   - POST /game/guess → guess a letter or the whole word
//   - GET  /game/{id}  → current state
//
// Games belong to the signed-in user or, for guests, to the anonymous
// cookie; other callers get 404.

package httpserver

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/hangman/internal/database"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

type newGameReq struct {
	MaxIncorrect int    `json:"maxIncorrect"` // 0 → MAX_INCORRECT
	Word         string `json:"word"`         // optional: a second player's word
}

type gameRes struct {
	GameID string     `json:"gameId"`
	State  game.State `json:"state"`
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type guessRes struct {
	Outcome  game.Outcome `json:"outcome"`
	Revealed int          `json:"revealed"`
	State    game.State   `json:"state"`
}

// owner identifies the caller: the signed-in user, else the anonymous cookie.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) database.Owner {
	if me := currentUser(r); me != nil {
		return database.Owner{UserID: me.ID}
	}
	return database.Owner{AnonymousID: s.ensureAnonID(w, r)}
}

// owns reports whether the caller may see a game owned by id. A player
// who signed in mid-game still owns the games of their anonymous cookie.
func owns(r *http.Request, id string) bool {
	if id == "" {
		return false
	}
	if me := currentUser(r); me != nil && me.ID == id {
		return true
	}
	c, err := r.Cookie(anonCookieName)
	return err == nil && c.Value == id
}

func ownerKey(o database.Owner) string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonymousID
}

// handleNewGame creates a new in-memory game and persists a history row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	maxIncorrect := req.MaxIncorrect
	if maxIncorrect == 0 {
		maxIncorrect = s.cfg.MaxIncorrect
	}

	var (
		g   *game.Game
		err error
	)
	if req.Word != "" {
		g, err = game.New(req.Word, maxIncorrect, game.WithClock(s.now))
	} else {
		g, err = session.NewGame(r.Context(), s.bank, s.gameRand(), maxIncorrect, game.WithClock(s.now))
	}
	if err != nil {
		s.gameError(w, r, err)
		return
	}

	owner := s.owner(w, r)
	if err := s.store.Save(r.Context(), store.Entry{Game: g, Owner: ownerKey(owner)}); err != nil {
		log.Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	st := g.Snapshot()
	if err := s.games.Insert(r.Context(), owner, st); err != nil {
		log.Warn().Err(err).Str("gameId", st.ID).Msg("insert game row")
	}
	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("game.id", st.ID),
		attribute.Int("game.max_incorrect", st.MaxIncorrect),
		attribute.Bool("game.custom_word", req.Word != ""),
	)

	writeJSON(w, http.StatusCreated, gameRes{GameID: st.ID, State: st})
}

// handleGuess applies a guess to an in-memory game and records progress.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	res, err := s.applyGuess(r, req.GameID, req.Guess, false)
	if err != nil {
		s.gameError(w, r, err)
		return
	}

	// Persist counters/history (best effort, non-fatal if it fails)
	if err := s.games.Record(r.Context(), s.owner(w, r), res.State); err != nil {
		log.Warn().Err(err).Str("gameId", res.State.ID).Msg("record guess")
	}
	writeJSON(w, http.StatusOK, res)
}

// gameRand returns a generator of its own for one game, seeded from the
// server's.
func (s *Server) gameRand() *rand.Rand {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return words.NewRand(s.rng.Uint64(), s.rng.Uint64())
}

// applyGuess runs one guess against a stored game owned by the caller.
// One-rune guesses are letters; anything longer is a whole-word guess.
// Daily games are only reachable with daily set, so their results are
// always recorded by the /daily routes.
func (s *Server) applyGuess(r *http.Request, id, guess string, daily bool) (guessRes, error) {
	var res guessRes
	err := s.store.Update(r.Context(), id, func(e store.Entry) error {
		if !owns(r, e.Owner) || e.Daily != daily {
			return store.ErrNotFound
		}
		var err error
		if utf8.RuneCountInString(game.Normalize(guess)) > 1 {
			res.Outcome, err = e.Game.GuessWord(guess)
		} else {
			res.Outcome, err = e.Game.Guess(guess)
		}
		if err != nil {
			return err
		}
		h := e.Game.History()
		res.Revealed = h[len(h)-1].Revealed
		res.State = e.Game.Snapshot()
		return nil
	})
	if err == nil {
		trace.SpanFromContext(r.Context()).SetAttributes(
			attribute.String("game.id", id),
			attribute.String("game.outcome", res.Outcome.String()),
			attribute.String("game.status", res.State.Status.String()),
		)
	}
	return res, err
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	st, owner, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !owns(r, owner) {
		err = store.ErrNotFound
	}
	if err != nil {
		s.gameError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameRes{GameID: st.ID, State: st})
}

// gameError maps engine and store errors onto HTTP statuses.
func (s *Server) gameError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *game.InputError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, "game_over")
	case errors.Is(err, game.ErrInvalidWord), errors.Is(err, game.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, words.ErrNoWords):
		writeError(w, http.StatusServiceUnavailable, "no_words")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("game request failed")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
