// Package tui is the full-screen terminal front-end, drawn with tcell.
//
// The main menu starts a round against the computer or against a second
// player who types the secret word. During a round, typed characters fill
// an entry line and Enter submits it as a letter or whole-word guess.
// F2 or Ctrl-N starts a new computer round at any time; Esc quits.
package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/render"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/words"
)

type mode int

const (
	modeMenu mode = iota
	modeWord      // second player is typing the secret
	modePlay
	modeOver
)

var (
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleGallows = tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown)
	styleWord    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleMessage = tcell.StyleDefault.Foreground(tcell.ColorLightCoral)
)

// NewScreen creates and initializes a terminal screen.
func NewScreen() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.Clear()
	return s, nil
}

// App draws a session onto an initialized screen.
type App struct {
	screen  tcell.Screen
	session *session.Session

	mode    mode
	input   []rune
	message string
}

// New returns an App for screen and s. The caller finalizes the screen.
func New(screen tcell.Screen, s *session.Session) *App {
	return &App{screen: screen, session: s}
}

// Run draws and handles events until Esc or ctx is done. Any round in
// progress is resigned on the way out.
func (a *App) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-done:
		}
	}()
	defer a.session.Stop()

	for {
		a.draw()
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok {
			return ctx.Err()
		}
		if !a.handle(ctx, ev) {
			return nil
		}
	}
}

// handle applies one event and reports whether to keep running.
func (a *App) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		return a.handleKey(ctx, ev)
	}
	return true
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyF2, tcell.KeyCtrlN:
		a.start(ctx, "")
		return true
	}

	switch a.mode {
	case modeMenu:
		if ev.Key() != tcell.KeyRune {
			break
		}
		switch ev.Rune() {
		case 'c', 'C':
			a.start(ctx, "")
		case 'p', 'P':
			a.mode = modeWord
			a.input = a.input[:0]
			a.message = ""
		}

	case modeWord, modePlay:
		switch ev.Key() {
		case tcell.KeyRune:
			a.input = append(a.input, ev.Rune())
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if n := len(a.input); n > 0 {
				a.input = a.input[:n-1]
			}
		case tcell.KeyEnter:
			text := strings.TrimSpace(string(a.input))
			a.input = a.input[:0]
			if a.mode == modeWord {
				a.submitWord(ctx, text)
			} else {
				a.submitGuess(text)
			}
		}

	case modeOver:
		if ev.Key() == tcell.KeyEnter {
			a.session.Stop()
			a.mode = modeMenu
			a.message = ""
		}
	}
	return true
}

func (a *App) start(ctx context.Context, word string) {
	a.input = a.input[:0]
	if _, err := a.session.Start(ctx, word); err != nil {
		a.mode = modeMenu
		if errors.Is(err, words.ErrNoWords) {
			a.message = "No words in wordbank"
			return
		}
		log.Warn().Err(err).Msg("tui: start round")
		a.message = err.Error()
		return
	}
	a.mode = modePlay
	a.message = ""
}

func (a *App) submitWord(ctx context.Context, w string) {
	if !words.Valid(w) {
		a.message = "Word provided was invalid"
		return
	}
	a.start(ctx, w)
}

func (a *App) submitGuess(in string) {
	g := a.session.Current()
	if in == "" || g == nil {
		return
	}
	if g.HasGuessed(in) {
		a.message = "Already guessed that"
		return
	}

	var (
		out game.Outcome
		err error
	)
	if utf8.RuneCountInString(game.Normalize(in)) > 1 {
		out, err = g.GuessWord(in)
	} else {
		out, err = g.Guess(in)
	}
	var ie *game.InputError
	switch {
	case errors.As(err, &ie):
		a.message = "Invalid guess: " + ie.Reason
		return
	case err != nil:
		a.message = err.Error()
		return
	}
	h := g.History()
	a.message = render.Feedback(in, out, h[len(h)-1].Revealed)
	if g.Status().Finished() {
		a.mode = modeOver
	}
}

// ---------------------------------------------------------------------------
// drawing

func (a *App) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()
	y := a.text(1, 0, "HANGMAN", styleTitle) + 1

	switch a.mode {
	case modeMenu:
		y = a.text(1, y, "P  play against another player", styleText)
		y = a.text(1, y, "C  play against the computer", styleText)
		y = a.text(1, y, "Esc  quit", styleHint)
	case modeWord:
		y = a.text(1, y, "Enter word other player must guess:", styleText)
		y = a.text(1, y, "> "+string(a.input), styleWord)
		y = a.text(1, y+1, "Enter to start, Esc to quit", styleHint)
	case modePlay, modeOver:
		y = a.drawGame(y, width)
	}

	if a.message != "" && y < height {
		a.text(1, max(y+1, height-2), a.message, styleMessage)
	}
	a.screen.Show()
}

func (a *App) drawGame(y, width int) int {
	g := a.session.Current()
	if g == nil {
		return y
	}
	for _, line := range strings.Split(render.GameGallows(g), "\n") {
		y = a.text(1, y, line, styleGallows)
	}
	y++
	y = a.text(1, y, "Word: "+strings.ToUpper(render.Spaced(g.Reveal())), styleWord)
	y = a.text(1, y, "Guesses: "+render.Guesses(g), styleText)

	if a.mode == modePlay {
		y = a.text(1, y, "Remaining: "+strconv.Itoa(g.Remaining()), styleText)
		y++
		y = a.text(1, y, "> "+string(a.input), styleWord)
		return a.text(1, y, "Enter to guess, F2 new word, Esc to quit", styleHint)
	}

	y++
	for _, para := range strings.Split(render.Summary(g), "\n") {
		for _, line := range wrap(para, width-2) {
			y = a.text(1, y, line, styleText)
		}
	}
	y++
	return a.text(1, y, "Enter for the main menu, F2 new word, Esc to quit", styleHint)
}

// text writes s at (x, y) and returns the next row.
func (a *App) text(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return y + 1
}

// wrap breaks s on spaces into lines of at most width runes.
func wrap(s string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return []string{s}
	}
	var (
		lines []string
		cur   strings.Builder
	)
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
