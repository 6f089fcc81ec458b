// internal/httpserver/routes_words.go
//
// Word bank endpoints:
//   - GET    /words        → list the bank (public)
//   - POST   /words        → add a word (require auth)
//   - DELETE /words/{word} → remove a word (require auth)

package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/words"
)

type wordReq struct {
	Word string `json:"word"`
}

func (s *Server) mountWords(r chi.Router) {
	r.Get("/words", func(w http.ResponseWriter, r *http.Request) {
		list := s.bank.Sorted()
		writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "words": list})
	})
	r.With(s.requireAuth()).Post("/words", s.handleAddWord)
	r.With(s.requireAuth()).Delete("/words/{word}", s.handleRemoveWord)
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	added, err := s.bank.Add(r.Context(), req.Word)
	if errors.Is(err, words.ErrNoWords) {
		writeError(w, http.StatusBadRequest, "invalid_word")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("add word")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
		log.Info().Str("user", currentUser(r).Username).Msg("word added")
	}
	writeJSON(w, status, map[string]any{"added": added, "count": s.bank.Len()})
}

func (s *Server) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	removed, err := s.bank.Remove(r.Context(), chi.URLParam(r, "word"))
	if err != nil {
		log.Error().Err(err).Msg("remove word")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	log.Info().Str("user", currentUser(r).Username).Msg("word removed")
	writeJSON(w, http.StatusOK, map[string]any{"removed": true, "count": s.bank.Len()})
}
