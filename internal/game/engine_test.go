package game

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func mustNew(t *testing.T, word string, max int) *Game {
	t.Helper()
	g, err := New(word, max, WithClock(fixedClock()), WithID("test"))
	if err != nil {
		t.Fatalf("New(%q, %d): %v", word, max, err)
	}
	return g
}

func guess(t *testing.T, g *Game, letter string, want Outcome) {
	t.Helper()
	got, err := g.Guess(letter)
	if err != nil {
		t.Fatalf("Guess(%q): %v", letter, err)
	}
	if got != want {
		t.Fatalf("Guess(%q) = %s, want %s", letter, got, want)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		word string
		max  int
		want error
	}{
		{"empty word", "", 3, ErrInvalidWord},
		{"no letters", " - ", 3, ErrInvalidWord},
		{"zero limit", "cat", 0, ErrInvalidLimit},
		{"negative limit", "cat", -1, ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.word, tt.max); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewNormalizesCase(t *testing.T) {
	g := mustNew(t, "  ApPle ", 3)
	if g.Word() != "apple" {
		t.Fatalf("Word() = %q, want apple", g.Word())
	}
	guess(t, g, "P", OutcomeCorrectNew)
	if g.Reveal() != "_pp__" {
		t.Fatalf("Reveal() = %q", g.Reveal())
	}
}

func TestAppleExample(t *testing.T) {
	g := mustNew(t, "apple", 3)

	guess(t, g, "a", OutcomeCorrectNew)
	if got := g.Reveal(); got != "a____" {
		t.Fatalf("Reveal() = %q, want a____", got)
	}
	guess(t, g, "z", OutcomeIncorrectNew)
	if g.IncorrectCount() != 1 {
		t.Fatalf("IncorrectCount() = %d, want 1", g.IncorrectCount())
	}
	guess(t, g, "a", OutcomeCorrectRepeat)
	if g.IncorrectCount() != 1 {
		t.Fatalf("repeat changed IncorrectCount() to %d", g.IncorrectCount())
	}
	for _, l := range []string{"p", "l"} {
		guess(t, g, l, OutcomeCorrectNew)
		if g.Status() != StatusInProgress {
			t.Fatalf("status after %q = %s", l, g.Status())
		}
	}
	guess(t, g, "e", OutcomeCorrectNew)
	if g.Status() != StatusWon {
		t.Fatalf("Status() = %s, want won", g.Status())
	}
	if g.Ended().IsZero() {
		t.Fatal("Ended() not stamped on win")
	}
}

func TestCatExample(t *testing.T) {
	g := mustNew(t, "cat", 2)

	guess(t, g, "x", OutcomeIncorrectNew)
	if g.Status() != StatusInProgress {
		t.Fatalf("Status() = %s after one miss", g.Status())
	}
	guess(t, g, "y", OutcomeIncorrectNew)
	if g.Status() != StatusLost {
		t.Fatalf("Status() = %s, want lost", g.Status())
	}

	before := g.Snapshot()
	if _, err := g.Guess("z"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("third guess err = %v, want ErrGameOver", err)
	}
	after := g.Snapshot()
	if after.IncorrectCount != before.IncorrectCount || after.Status != StatusLost || after.Guesses != before.Guesses {
		t.Fatalf("state changed after game over: %+v -> %+v", before, after)
	}
	if after.Word != "cat" {
		t.Fatalf("finished snapshot Word = %q", after.Word)
	}
}

func TestInvalidInputLeavesStateUnchanged(t *testing.T) {
	g := mustNew(t, "gopher", 4)
	guess(t, g, "o", OutcomeCorrectNew)
	before := g.Snapshot()

	for _, in := range []string{"", "  ", "ab", "1", "?", "é1", "go"} {
		_, err := g.Guess(in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Guess(%q) err = %v, want ErrInvalidInput", in, err)
		}
		var ie *InputError
		if !errors.As(err, &ie) || ie.Input != in {
			t.Fatalf("Guess(%q) err = %#v, want *InputError", in, err)
		}
	}

	after := g.Snapshot()
	if after.Reveal != before.Reveal || after.IncorrectCount != before.IncorrectCount ||
		after.Guesses != before.Guesses || strings.Join(after.GuessedLetters, "") != strings.Join(before.GuessedLetters, "") {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}
}

func TestRepeatsNeverChangeCountOrStatus(t *testing.T) {
	g := mustNew(t, "kitty", 3)
	guess(t, g, "m", OutcomeIncorrectNew)
	guess(t, g, "t", OutcomeCorrectNew)
	for i := 0; i < 5; i++ {
		guess(t, g, "m", OutcomeIncorrectRepeat)
		guess(t, g, "T", OutcomeCorrectRepeat)
	}
	if g.IncorrectCount() != 1 || g.Status() != StatusInProgress {
		t.Fatalf("IncorrectCount()=%d Status()=%s", g.IncorrectCount(), g.Status())
	}
}

func TestCoveringAllLettersWins(t *testing.T) {
	words := []string{"a", "banana", "mississippi", "jazz", "queue", "über"}
	for _, w := range words {
		t.Run(w, func(t *testing.T) {
			g := mustNew(t, w, 1)
			seen := map[rune]bool{}
			for _, r := range w {
				if seen[r] {
					continue
				}
				seen[r] = true
				if _, err := g.Guess(string(r)); err != nil {
					t.Fatalf("Guess(%q): %v", r, err)
				}
			}
			if g.Status() != StatusWon {
				t.Fatalf("Status() = %s, want won", g.Status())
			}
			if g.Reveal() != w {
				t.Fatalf("Reveal() = %q, want %q", g.Reveal(), w)
			}
		})
	}
}

func TestMaxDistinctMissesLoses(t *testing.T) {
	for max := 1; max <= 6; max++ {
		g := mustNew(t, "hangman", max)
		misses := "bcdefijkloq"
		for i := 0; i < max; i++ {
			guess(t, g, string(misses[i]), OutcomeIncorrectNew)
		}
		if g.Status() != StatusLost {
			t.Fatalf("max=%d Status() = %s, want lost", max, g.Status())
		}
		if g.IncorrectCount() != max || g.Remaining() != 0 {
			t.Fatalf("max=%d IncorrectCount()=%d Remaining()=%d", max, g.IncorrectCount(), g.Remaining())
		}
	}
}

func TestRevealMasksExactlyUnguessedLetters(t *testing.T) {
	g := mustNew(t, "echo location", 10)
	check := func() {
		t.Helper()
		rev := []rune(g.Reveal())
		word := []rune(g.Word())
		if len(rev) != len(word) {
			t.Fatalf("len(Reveal()) = %d, want %d", len(rev), len(word))
		}
		guessed := map[string]bool{}
		for _, l := range g.GuessedLetters() {
			guessed[l] = true
		}
		for i, r := range word {
			masked := rev[i] == MaskRune
			wantMasked := r != ' ' && !guessed[string(r)]
			if masked != wantMasked {
				t.Fatalf("position %d (%q) masked=%v want %v in %q", i, r, masked, wantMasked, string(rev))
			}
		}
	}
	check()
	for _, l := range []string{"o", "x", "c", "n"} {
		if _, err := g.Guess(l); err != nil {
			t.Fatal(err)
		}
		check()
	}
	if got := g.Reveal(); got != "_c_o _oc___on" {
		t.Fatalf("Reveal() = %q", got)
	}
}

func TestGuessRevealedCounts(t *testing.T) {
	g := mustNew(t, "kitty cat", 5)
	want := []struct {
		in       string
		revealed int
	}{{"m", 0}, {"i", 1}, {"t", 3}}
	for _, w := range want {
		if _, err := g.Guess(w.in); err != nil {
			t.Fatal(err)
		}
	}
	out, err := g.GuessWord("KITTY CAT")
	if err != nil || out != OutcomeCorrectNew {
		t.Fatalf("GuessWord = %s, %v", out, err)
	}
	h := g.History()
	if len(h) != 4 {
		t.Fatalf("len(History()) = %d, want 4", len(h))
	}
	for i, w := range want {
		if h[i].Guess != w.in || h[i].Revealed != w.revealed {
			t.Fatalf("history[%d] = %+v, want %+v", i, h[i], w)
		}
	}
	if h[3].Revealed != 4 {
		t.Fatalf("word guess revealed %d, want 4", h[3].Revealed)
	}
	if g.Status() != StatusWon {
		t.Fatalf("Status() = %s", g.Status())
	}
}

func TestGuessWordWrong(t *testing.T) {
	g := mustNew(t, "cat", 2)
	if _, err := g.GuessWord("ca"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short word err = %v", err)
	}
	if out, _ := g.GuessWord("cot"); out != OutcomeIncorrectNew {
		t.Fatalf("first wrong word = %s", out)
	}
	if out, _ := g.GuessWord("COT"); out != OutcomeIncorrectRepeat {
		t.Fatalf("repeat wrong word = %s", out)
	}
	if g.IncorrectCount() != 1 {
		t.Fatalf("IncorrectCount() = %d", g.IncorrectCount())
	}
	if !g.HasGuessed("cot") || g.HasGuessed("cut") {
		t.Fatal("HasGuessed mismatch")
	}
	if out, _ := g.GuessWord("cut"); out != OutcomeIncorrectNew || g.Status() != StatusLost {
		t.Fatalf("second wrong word: %s %s", out, g.Status())
	}
}

func TestWinTakesPrecedence(t *testing.T) {
	// A single allowed miss: completing the word must still read as won.
	g := mustNew(t, "ab", 1)
	guess(t, g, "a", OutcomeCorrectNew)
	guess(t, g, "b", OutcomeCorrectNew)
	if g.Status() != StatusWon {
		t.Fatalf("Status() = %s", g.Status())
	}
}

func TestResign(t *testing.T) {
	g := mustNew(t, "cat", 3)
	g.Resign()
	if g.Status() != StatusLost {
		t.Fatalf("Status() = %s, want lost", g.Status())
	}
	if _, err := g.Guess("c"); !errors.Is(err, ErrGameOver) {
		t.Fatalf("err = %v", err)
	}

	won := mustNew(t, "a", 3)
	guess(t, won, "a", OutcomeCorrectNew)
	won.Resign()
	if won.Status() != StatusWon {
		t.Fatalf("Resign changed a won game to %s", won.Status())
	}
}

func TestSnapshotHidesWordWhilePlaying(t *testing.T) {
	g := mustNew(t, "secret", 3)
	st := g.Snapshot()
	if st.Word != "" {
		t.Fatalf("Word leaked: %q", st.Word)
	}
	if st.ID != "test" || st.Remaining != 3 || utf8.RuneCountInString(st.Reveal) != 6 {
		t.Fatalf("snapshot = %+v", st)
	}
}

func TestDuration(t *testing.T) {
	g := mustNew(t, "a", 3) // started at +1s
	guess(t, g, "a", OutcomeCorrectNew)
	if got := g.Duration(); got != time.Second {
		t.Fatalf("Duration() = %s, want 1s", got)
	}
}
