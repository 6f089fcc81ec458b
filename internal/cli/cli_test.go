package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/words"
)

func newApp(t *testing.T, input string, list []string, opts ...session.Option) (*App, *bytes.Buffer, *words.Bank, *session.Session) {
	t.Helper()
	bank, err := words.NewBank(context.Background(), nil, words.Static(list))
	if err != nil {
		t.Fatal(err)
	}
	s := session.New(bank, words.NewRand(1, 2), opts...)
	var out bytes.Buffer
	return New(strings.NewReader(input), &out, bank, s), &out, bank, s
}

func run(t *testing.T, a *App) {
	t.Helper()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n---\n%s", w, out)
		}
	}
}

func TestMenuChoices(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"exit by number", "1\n", []string{"Welcome to Hangman!", "01. Exit", "04. Manage Words", "Thanks for playing!"}},
		{"exit by letter", "a\n", []string{"Thanks for playing!"}},
		{"not a number", "x1\n1\n", []string{"Input must be a number", "Thanks for playing!"}},
		{"out of range", "9\n0\n1\n", []string{"Choice must be between 1 and 4", "Thanks for playing!"}},
		{"end of input", "", []string{"Welcome to Hangman!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, out, _, _ := newApp(t, tt.input, []string{"cat"})
			run(t, a)
			assertContains(t, out.String(), tt.want...)
		})
	}
}

func TestPlayOtherWin(t *testing.T) {
	a, out, _, s := newApp(t, "3\n\ncat\n\nc\nc\nzz\na\ncat\n1\n", nil)
	run(t, a)

	assertContains(t, out.String(),
		"Word required",
		"Guess required",
		"You revealed 1 letter",
		"Already guessed that",
		"Invalid guess: length does not match the word",
		"Word: C A _",
		"Remaining: 6",
		"You won!",
		`to guess "CAT"!`,
		"Thanks for playing!",
	)
	played, won := s.Stats()
	if played != 1 || won != 1 {
		t.Fatalf("Stats() = %d, %d", played, won)
	}
}

func TestPlayComputerLose(t *testing.T) {
	a, out, _, s := newApp(t, "2\nq\n1\n", []string{"dog"}, session.WithMaxIncorrect(1))
	run(t, a)

	assertContains(t, out.String(), "No Q in the word", "You lost!", `couldn't guess "DOG"`)
	rounds := s.Rounds()
	if len(rounds) != 1 || rounds[0].Status != game.StatusLost {
		t.Fatalf("rounds = %+v", rounds)
	}
}

func TestPlayComputerEmptyBank(t *testing.T) {
	a, out, _, _ := newApp(t, "2\n1\n", nil)
	run(t, a)
	assertContains(t, out.String(), "No words in wordbank", "Thanks for playing!")
}

func TestInputClosedMidGame(t *testing.T) {
	a, _, _, s := newApp(t, "3\nzebra\nz\n", nil)
	run(t, a)

	if s.Active() {
		t.Fatal("game still active after input closed")
	}
	rounds := s.Rounds()
	if len(rounds) != 1 || rounds[0].Status != game.StatusLost {
		t.Fatalf("rounds = %+v", rounds)
	}
}

func TestManageWords(t *testing.T) {
	input := strings.Join([]string{
		"4",        // manage
		"2",        // add
		"2", "owl", // add word
		"2", "owl", // again
		"2", "123", // no letters
		"1",          // back
		"3",          // view
		"5", "cat",   // remove
		"5", "cat",   // remove again
		"4",          // clear
		"1", "1", "", // back, exit
	}, "\n")
	a, out, bank, _ := newApp(t, input, []string{"cat", "ant"})
	run(t, a)

	assertContains(t, out.String(),
		"in which there are currently 2 words",
		"Add words or word sources to the wordbank",
		"Word added",
		"Word already in word bank",
		"Words need at least one letter",
		"ANT, CAT, OWL",
		"3 words loaded",
		"Word removed",
		"Word not found",
		"2 words cleared",
	)
	if bank.Len() != 0 {
		t.Fatalf("bank.Len() = %d", bank.Len())
	}
}

func TestAddWordlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(path, []byte("Apple\nbanana\ncat\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(t.TempDir(), "missing.txt")

	input := "4\n2\n3\n" + path + "\n3\n" + missing + "\n1\n1\n1\n"
	a, out, bank, _ := newApp(t, input, []string{"cat"})
	run(t, a)

	assertContains(t, out.String(), "2 words added from", "Exception occurred fetching wordlist from "+missing)
	for _, w := range []string{"apple", "banana", "cat"} {
		if !bank.Contains(w) {
			t.Errorf("bank missing %q", w)
		}
	}
}

func TestClearScreen(t *testing.T) {
	bank, _ := words.NewBank(context.Background(), nil, words.Static{"cat"})
	var out bytes.Buffer
	a := New(strings.NewReader("1\n"), &out, bank, session.New(bank, words.NewRand(1, 2)), WithClearScreen(true))
	run(t, a)
	if !strings.HasPrefix(out.String(), clearSequence) {
		t.Fatalf("output does not start with the clear sequence: %q", out.String())
	}
}
