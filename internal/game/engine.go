// internal/game/engine.go
//
// Core game engine for a single Hangman session.
// Responsibilities:
//   - Create games from a secret word and a bound on incorrect guesses.
//   - Validate and apply letter guesses and whole-word guesses.
//   - Derive status (playing → won/lost) and the masked reveal string.
//
// Notes:
//   - Secrets and guesses are NFC-normalised and lower-cased.
//   - Characters in the secret that are not letters (spaces, hyphens)
//     are always visible and can never be guessed.
//   - The incorrect count is derived from the guessed set; it is never stored.
//   - A Game is not safe for concurrent use; adapters serialise access.
package game

import (
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaskRune replaces letters that have not been guessed yet.
const MaskRune = '_'

// DefaultMaxIncorrect matches the six frames of the classic gallows.
const DefaultMaxIncorrect = 6

// Game holds the state of one round of Hangman.
type Game struct {
	id           string
	secret       []rune
	letters      map[rune]struct{} // distinct letters of the secret
	maxIncorrect int

	guessed    map[rune]struct{}
	wrongWords map[string]struct{}
	history    []Guess
	resigned   bool

	clock   func() time.Time
	started time.Time
	ended   time.Time
}

// Option customises a Game at construction.
type Option func(*Game)

// WithClock injects the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.clock = now }
}

// WithID overrides the generated game identifier.
func WithID(id string) Option {
	return func(g *Game) { g.id = id }
}

// New constructs a game for secret allowing maxIncorrect wrong guesses.
func New(secret string, maxIncorrect int, opts ...Option) (*Game, error) {
	if maxIncorrect <= 0 {
		return nil, ErrInvalidLimit
	}
	word := []rune(Normalize(secret))
	letters := make(map[rune]struct{})
	for _, r := range word {
		if unicode.IsLetter(r) {
			letters[r] = struct{}{}
		}
	}
	if len(letters) == 0 {
		return nil, ErrInvalidWord
	}

	g := &Game{
		id:           uuid.NewString(),
		secret:       word,
		letters:      letters,
		maxIncorrect: maxIncorrect,
		guessed:      make(map[rune]struct{}),
		wrongWords:   make(map[string]struct{}),
		clock:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.started = g.clock()
	return g, nil
}

// Normalize trims s, composes it to NFC and folds it to lower case.
// It is the single normalisation applied to secrets, guesses and word lists.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(s)))
}

// Guess applies a single-letter guess.
//
// Validation rules:
//   - Game must not be finished (ErrGameOver).
//   - Input must be exactly one letter after normalisation (ErrInvalidInput).
//
// A repeated letter is recorded but changes nothing else.
func (g *Game) Guess(letter string) (Outcome, error) {
	if g.Status().Finished() {
		return "", ErrGameOver
	}
	in := Normalize(letter)
	if utf8.RuneCountInString(in) != 1 {
		return "", &InputError{Input: letter, Reason: "must be exactly one letter"}
	}
	r, _ := utf8.DecodeRuneInString(in)
	if !unicode.IsLetter(r) {
		return "", &InputError{Input: letter, Reason: "not a letter"}
	}

	_, inWord := g.letters[r]
	if _, seen := g.guessed[r]; seen {
		out := OutcomeIncorrectRepeat
		if inWord {
			out = OutcomeCorrectRepeat
		}
		g.record(in, out, 0)
		return out, nil
	}

	g.guessed[r] = struct{}{}
	if !inWord {
		g.record(in, OutcomeIncorrectNew, 0)
		return OutcomeIncorrectNew, nil
	}
	revealed := 0
	for _, c := range g.secret {
		if c == r {
			revealed++
		}
	}
	g.record(in, OutcomeCorrectNew, revealed)
	return OutcomeCorrectNew, nil
}

// GuessWord applies a whole-word guess. A correct guess reveals every
// remaining letter; each distinct wrong word costs one incorrect guess.
func (g *Game) GuessWord(word string) (Outcome, error) {
	if g.Status().Finished() {
		return "", ErrGameOver
	}
	in := Normalize(word)
	if utf8.RuneCountInString(in) != len(g.secret) {
		return "", &InputError{Input: word, Reason: "length does not match the word"}
	}
	if !strings.ContainsFunc(in, unicode.IsLetter) {
		return "", &InputError{Input: word, Reason: "no letters"}
	}

	if in == string(g.secret) {
		revealed := g.masked()
		for r := range g.letters {
			g.guessed[r] = struct{}{}
		}
		g.record(in, OutcomeCorrectNew, revealed)
		return OutcomeCorrectNew, nil
	}
	if _, seen := g.wrongWords[in]; seen {
		g.record(in, OutcomeIncorrectRepeat, 0)
		return OutcomeIncorrectRepeat, nil
	}
	g.wrongWords[in] = struct{}{}
	g.record(in, OutcomeIncorrectNew, 0)
	return OutcomeIncorrectNew, nil
}

// Resign ends an in-progress game as lost. Finished games are left alone.
func (g *Game) Resign() {
	if g.Status().Finished() {
		return
	}
	g.resigned = true
	g.ended = g.clock()
}

// record appends to the history and stamps the end time on the
// transition into a terminal state.
func (g *Game) record(guess string, out Outcome, revealed int) {
	now := g.clock()
	g.history = append(g.history, Guess{At: now, Guess: guess, Outcome: out, Revealed: revealed})
	if g.ended.IsZero() && g.Status().Finished() {
		g.ended = now
	}
}

// Status derives the game state. A win is checked before a loss so the
// guess that completes the word always wins.
func (g *Game) Status() Status {
	if g.won() {
		return StatusWon
	}
	if g.resigned || g.IncorrectCount() >= g.maxIncorrect {
		return StatusLost
	}
	return StatusInProgress
}

func (g *Game) won() bool {
	for r := range g.letters {
		if _, ok := g.guessed[r]; !ok {
			return false
		}
	}
	return true
}

// IncorrectCount is the number of guessed letters absent from the secret
// plus the number of distinct wrong whole-word guesses.
func (g *Game) IncorrectCount() int {
	n := len(g.wrongWords)
	for r := range g.guessed {
		if _, ok := g.letters[r]; !ok {
			n++
		}
	}
	return n
}

// Remaining is the number of incorrect guesses left before the game is lost.
func (g *Game) Remaining() int {
	return max(g.maxIncorrect-g.IncorrectCount(), 0)
}

// Reveal returns the secret with unguessed letters replaced by MaskRune.
// It always has the same number of runes as the secret.
func (g *Game) Reveal() string {
	var b strings.Builder
	for _, r := range g.secret {
		if _, ok := g.guessed[r]; ok || !unicode.IsLetter(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(MaskRune)
	}
	return b.String()
}

// masked counts positions still hidden.
func (g *Game) masked() int {
	n := 0
	for _, r := range g.secret {
		if _, ok := g.guessed[r]; !ok && unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// GuessedLetters returns the guessed set in sorted order.
func (g *Game) GuessedLetters() []string {
	out := make([]string, 0, len(g.guessed))
	for r := range g.guessed {
		out = append(out, string(r))
	}
	slices.Sort(out)
	return out
}

// WrongWords returns the distinct incorrect whole-word guesses in sorted order.
func (g *Game) WrongWords() []string {
	out := make([]string, 0, len(g.wrongWords))
	for w := range g.wrongWords {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// History returns a copy of every accepted guess, in order.
func (g *Game) History() []Guess { return slices.Clone(g.history) }

// HasGuessed reports whether guess (letter or word) was already submitted.
func (g *Game) HasGuessed(guess string) bool {
	in := Normalize(guess)
	if utf8.RuneCountInString(in) == 1 {
		r, _ := utf8.DecodeRuneInString(in)
		_, ok := g.guessed[r]
		return ok
	}
	if in == string(g.secret) {
		return g.won()
	}
	_, ok := g.wrongWords[in]
	return ok
}

func (g *Game) ID() string         { return g.id }
func (g *Game) Word() string       { return string(g.secret) }
func (g *Game) MaxIncorrect() int  { return g.maxIncorrect }
func (g *Game) Started() time.Time { return g.started }
func (g *Game) Ended() time.Time   { return g.ended }

// Duration is the elapsed play time, up to now for games still in progress.
func (g *Game) Duration() time.Duration {
	if g.ended.IsZero() {
		return g.clock().Sub(g.started)
	}
	return g.ended.Sub(g.started)
}

// Snapshot returns the adapter-facing view of the game.
func (g *Game) Snapshot() State {
	st := State{
		ID:             g.id,
		Status:         g.Status(),
		Reveal:         g.Reveal(),
		MaxIncorrect:   g.maxIncorrect,
		IncorrectCount: g.IncorrectCount(),
		Remaining:      g.Remaining(),
		GuessedLetters: g.GuessedLetters(),
		WrongWords:     g.WrongWords(),
		Guesses:        len(g.history),
		StartedAt:      g.started,
		EndedAt:        g.ended,
	}
	if st.Status.Finished() {
		st.Word = g.Word()
	}
	return st
}
