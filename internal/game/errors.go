package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a guess is not a single letter
	// (or, for word guesses, not a word of the secret's length).
	ErrInvalidInput = errors.New("invalid guess")

	// ErrGameOver is returned for guesses submitted after the game ended.
	ErrGameOver = errors.New("game finished")

	// ErrInvalidWord is returned by New when the secret has no letters.
	ErrInvalidWord = errors.New("secret word must contain at least one letter")

	// ErrInvalidLimit is returned by New when maxIncorrect is not positive.
	ErrInvalidLimit = errors.New("max incorrect guesses must be positive")
)

// InputError describes a rejected guess. It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Input  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid guess %q: %s", e.Input, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }
