// Package session ties a word source to a sequence of games played by
// one player: it draws non-repeating words, keeps the current game and
// archives finished or abandoned rounds.
//
// Every front-end owns one Session per player; sessions never share
// mutable state with each other.
package session

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/words"
)

// Round is an archived game.
type Round struct {
	ID      string       `json:"id"`
	Word    string       `json:"word"`
	Status  game.Status  `json:"status"`
	Started time.Time    `json:"started"`
	Ended   time.Time    `json:"ended"`
	Guesses []game.Guess `json:"guesses"`
}

// Session is a single player's run of games. Not safe for concurrent use.
type Session struct {
	source       words.Source
	rotation     *words.Rotation
	maxIncorrect int
	gameOpts     []game.Option

	current *game.Game
	rounds  []Round
}

// Option customises a Session.
type Option func(*Session)

// WithMaxIncorrect sets the incorrect-guess limit for every game.
func WithMaxIncorrect(n int) Option {
	return func(s *Session) { s.maxIncorrect = n }
}

// WithGameOptions forwards options to every game.New call.
func WithGameOptions(opts ...game.Option) Option {
	return func(s *Session) { s.gameOpts = append(s.gameOpts, opts...) }
}

// New returns a session drawing words from src with rng.
func New(src words.Source, rng *rand.Rand, opts ...Option) *Session {
	s := &Session{
		source:       src,
		rotation:     words.NewRotation(rng),
		maxIncorrect: game.DefaultMaxIncorrect,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewGame draws one word from src and starts a game with it.
func NewGame(ctx context.Context, src words.Source, rng *rand.Rand, maxIncorrect int, opts ...game.Option) (*game.Game, error) {
	list, err := src.Words(ctx)
	if err != nil {
		return nil, err
	}
	w, err := words.Pick(list, rng)
	if err != nil {
		return nil, err
	}
	return game.New(w, maxIncorrect, opts...)
}

// Start begins a new game, archiving the current one first. An empty
// word draws the next word from the rotation; otherwise word is used as
// the secret (a second player choosing the word).
func (s *Session) Start(ctx context.Context, word string) (*game.Game, error) {
	if word == "" {
		list, err := s.source.Words(ctx)
		if err != nil {
			return nil, err
		}
		if word, err = s.rotation.Next(list); err != nil {
			return nil, err
		}
	}
	g, err := game.New(word, s.maxIncorrect, s.gameOpts...)
	if err != nil {
		return nil, err
	}
	s.Stop()
	s.current = g
	return g, nil
}

// Stop archives the current game, resigning it if still in progress.
// It returns the archived round and false if there was no current game.
func (s *Session) Stop() (Round, bool) {
	if s.current == nil {
		return Round{}, false
	}
	g := s.current
	g.Resign()
	r := Round{
		ID:      g.ID(),
		Word:    g.Word(),
		Status:  g.Status(),
		Started: g.Started(),
		Ended:   g.Ended(),
		Guesses: g.History(),
	}
	s.rounds = append(s.rounds, r)
	s.current = nil
	return r, true
}

// Current returns the game in play, or nil.
func (s *Session) Current() *game.Game { return s.current }

// Active reports whether the current game is still being played.
func (s *Session) Active() bool {
	return s.current != nil && !s.current.Status().Finished()
}

// Rounds returns the archived rounds, oldest first.
func (s *Session) Rounds() []Round { return slices.Clone(s.rounds) }

// Stats summarises archived rounds.
func (s *Session) Stats() (played, won int) {
	for _, r := range s.rounds {
		played++
		if r.Status == game.StatusWon {
			won++
		}
	}
	return played, won
}
