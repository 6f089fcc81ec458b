// Package render turns game state into plain text shared by the CLI,
// the terminal UI and the chat-bot: the ASCII gallows, the spaced-out
// word and round summaries.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

var (
	gallowsTop    = "  +---+\n  |   |\n"
	gallowsBottom = "      |\n========="
	frames        = [...]string{
		"      |\n      |\n      |\n",
		"  O   |\n      |\n      |\n",
		"  O   |\n  |   |\n      |\n",
		"  O   |\n /|   |\n      |\n",
		"  O   |\n /|\\  |\n      |\n",
		"  O   |\n /|\\  |\n /    |\n",
		"  O   |\n /|\\  |\n / \\  |\n",
	}
)

// Frames is the number of gallows stages, including the empty one.
const Frames = len(frames)

// Stage maps an incorrect count onto 0..Frames-1, scaling limits other
// than six so the figure is always complete exactly when the game is lost.
func Stage(incorrect, maxIncorrect int) int {
	if maxIncorrect <= 0 || incorrect <= 0 {
		return 0
	}
	if incorrect >= maxIncorrect {
		return Frames - 1
	}
	return incorrect * (Frames - 1) / maxIncorrect
}

// Gallows draws the hangman figure for the given stage.
func Gallows(stage int) string {
	stage = min(max(stage, 0), Frames-1)
	return gallowsTop + frames[stage] + gallowsBottom
}

// GameGallows draws the figure for g.
func GameGallows(g *game.Game) string {
	return Gallows(Stage(g.IncorrectCount(), g.MaxIncorrect()))
}

// Spaced separates the runes of a reveal string so masks are countable.
func Spaced(reveal string) string {
	return strings.Join(strings.Split(reveal, ""), " ")
}

// Guesses lists every guess made so far, in order.
func Guesses(g *game.Game) string {
	h := g.History()
	seen := make(map[string]struct{}, len(h))
	out := make([]string, 0, len(h))
	for _, x := range h {
		if _, ok := seen[x.Guess]; ok {
			continue
		}
		seen[x.Guess] = struct{}{}
		out = append(out, strings.ToUpper(x.Guess))
	}
	return strings.Join(out, ", ")
}

// Feedback describes the outcome of a single guess.
func Feedback(guess string, out game.Outcome, revealed int) string {
	guess = strings.ToUpper(guess)
	switch out {
	case game.OutcomeCorrectNew:
		return fmt.Sprintf("You revealed %d %s", revealed, plural(revealed, "letter", "letters"))
	case game.OutcomeIncorrectNew:
		return fmt.Sprintf("No %s in the word", guess)
	case game.OutcomeCorrectRepeat, game.OutcomeIncorrectRepeat:
		return fmt.Sprintf("You already guessed %s", guess)
	}
	return ""
}

// Summary is the end-of-round message; empty while the game is in play.
func Summary(g *game.Game) string {
	guesses := len(g.History())
	d := g.Duration()
	perGuess := time.Duration(0)
	if guesses > 0 {
		perGuess = d / time.Duration(guesses)
	}
	word := strings.ToUpper(g.Word())
	switch g.Status() {
	case game.StatusWon:
		return fmt.Sprintf("You won!\n\nIt took you %.1f seconds - about %.1f seconds per guess, of which you took %d - to guess %q!",
			d.Seconds(), perGuess.Seconds(), guesses, word)
	case game.StatusLost:
		return fmt.Sprintf("You lost!\n\nYou couldn't guess %q in %.1f seconds, at a rate of %.1f seconds per guess, of which you took %d...",
			word, d.Seconds(), perGuess.Seconds(), guesses)
	}
	return ""
}

// Board is the full text view of a game: word, figure and guesses.
func Board(g *game.Game) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %s\n", strings.ToUpper(Spaced(g.Reveal())))
	b.WriteString(GameGallows(g))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Guesses: %s\n", Guesses(g))
	fmt.Fprintf(&b, "Remaining: %d\n", g.Remaining())
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
