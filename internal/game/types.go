// internal/game/types.go
//
// Core type definitions for the Hangman game engine.
// Defines:
//   - Status:  coarse lifecycle state of a game (in progress / won / lost).
//   - Outcome: classification of a single submitted guess.
//   - Guess:   one entry of a game's guess history.
//   - State:   JSON-friendly snapshot handed to adapters.

package game

import "time"

// Status is the lifecycle state of a game.
type Status string

const (
	StatusInProgress Status = "playing"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Finished reports whether s is terminal.
func (s Status) Finished() bool { return s == StatusWon || s == StatusLost }

func (s Status) String() string { return string(s) }

// Outcome classifies a submitted guess relative to the state before it was applied.
//   - "correct":          new letter present in the secret word.
//   - "correct-repeat":   letter already guessed, present in the word.
//   - "incorrect":        new letter (or word) absent from the secret.
//   - "incorrect-repeat": already guessed and absent.
type Outcome string

const (
	OutcomeCorrectNew      Outcome = "correct"
	OutcomeCorrectRepeat   Outcome = "correct-repeat"
	OutcomeIncorrectNew    Outcome = "incorrect"
	OutcomeIncorrectRepeat Outcome = "incorrect-repeat"
)

// Correct reports whether the guessed letter or word is in the secret.
func (o Outcome) Correct() bool { return o == OutcomeCorrectNew || o == OutcomeCorrectRepeat }

// Repeat reports whether the guess had been made before.
func (o Outcome) Repeat() bool { return o == OutcomeCorrectRepeat || o == OutcomeIncorrectRepeat }

func (o Outcome) String() string { return string(o) }

// Guess is a recorded, accepted guess. Repeats are recorded too so that
// adapters can replay exactly what the player typed.
type Guess struct {
	At       time.Time `json:"at"`
	Guess    string    `json:"guess"`
	Outcome  Outcome   `json:"outcome"`
	Revealed int       `json:"revealed"` // positions uncovered by this guess
}

// State is a read-only snapshot of a game. Word is only populated once
// the game is finished so that it can be sent to players safely.
type State struct {
	ID             string    `json:"id"`
	Status         Status    `json:"status"`
	Reveal         string    `json:"reveal"`
	Word           string    `json:"word,omitempty"`
	MaxIncorrect   int       `json:"maxIncorrect"`
	IncorrectCount int       `json:"incorrectCount"`
	Remaining      int       `json:"remaining"`
	GuessedLetters []string  `json:"guessedLetters"`
	WrongWords     []string  `json:"wrongWords,omitempty"`
	Guesses        int       `json:"guesses"`
	StartedAt      time.Time `json:"startedAt"`
	EndedAt        time.Time `json:"endedAt,omitzero"`
}
