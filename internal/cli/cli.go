// Package cli is the interactive text front-end: numbered menus to play
// against the computer or another player and to manage the word bank.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/render"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/words"
)

const clearSequence = "\x1b[H\x1b[2J"

// errQuit ends the menu loop when input runs out.
var errQuit = errors.New("input closed")

// App runs the menu loop over a reader and writer.
type App struct {
	in      *bufio.Scanner
	out     io.Writer
	bank    *words.Bank
	session *session.Session
	clear   bool

	nextWord string
}

// Option customises an App.
type Option func(*App)

// WithClearScreen clears the terminal between screens.
func WithClearScreen(on bool) Option { return func(a *App) { a.clear = on } }

// New returns an App playing words from bank through s.
func New(in io.Reader, out io.Writer, bank *words.Bank, s *session.Session, opts ...Option) *App {
	a := &App{in: bufio.NewScanner(in), out: out, bank: bank, session: s}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// action runs a menu entry and returns the next menu, or "" to stay.
type action func(ctx context.Context) (string, error)

type option struct {
	label string
	run   action
}

type menu struct {
	prompt  func() string
	options []option
	dynamic action // used instead of options when set
}

func goTo(slug string) action {
	return func(context.Context) (string, error) { return slug, nil }
}

func (a *App) menus() map[string]menu {
	return map[string]menu{
		"main": {options: []option{
			{"Exit", func(context.Context) (string, error) {
				a.println("Thanks for playing!")
				return "", errQuit
			}},
			{"Play Computer", goTo("play")},
			{"Play Other", goTo("play-other")},
			{"Manage Words", goTo("manage-words")},
		}},
		"manage-words": {
			prompt: func() string {
				return fmt.Sprintf("Here you can modify the wordbank used by the program, in which there are currently %d words", a.bank.Len())
			},
			options: []option{
				{"Back", goTo("main")},
				{"Add", goTo("add-words")},
				{"View", a.viewWords},
				{"Clear", a.clearWords},
				{"Remove", a.removeWord},
			},
		},
		"add-words": {
			prompt: func() string { return "Add words or word sources to the wordbank" },
			options: []option{
				{"Back", goTo("manage-words")},
				{"Add Word", a.addWord},
				{"Add Wordlist", a.addWordlist},
			},
		},
		"play":       {dynamic: a.play},
		"play-other": {dynamic: a.playOther},
	}
}

// Run shows the welcome text and drives menus until Exit or end of input.
func (a *App) Run(ctx context.Context) error {
	a.clearScreen()
	a.println("Welcome to Hangman!\nYou can jump straight into a game, or edit the wordbank.\nWhat will it be?\n")

	menus := a.menus()
	slug := "main"
	for slug != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		m := menus[slug]
		if m.prompt != nil {
			a.println(m.prompt())
		}

		run := m.dynamic
		if run == nil {
			labels := make([]string, len(m.options))
			for i, o := range m.options {
				labels[i] = o.label
			}
			i, err := a.choose(labels...)
			if err != nil {
				return a.finish(err)
			}
			run = m.options[i].run
		}

		next, err := run(ctx)
		if err != nil {
			return a.finish(err)
		}
		if next != "" {
			slug = next
		}
	}
	return nil
}

func (a *App) finish(err error) error {
	if errors.Is(err, errQuit) {
		a.session.Stop()
		return nil
	}
	return err
}

// choose prints numbered options and reads a choice by number or letter
// (A is the first option).
func (a *App) choose(options ...string) (int, error) {
	for i, o := range options {
		a.printf("%02d. %s\n", i+1, o)
	}
	for {
		resp, err := a.ask("> ")
		if err != nil {
			return 0, err
		}
		resp = strings.ToUpper(resp)
		n, err := strconv.Atoi(resp)
		if err != nil {
			r, size := utf8.DecodeRuneInString(resp)
			if size != len(resp) || r < 'A' || r > 'Z' {
				a.println("Input must be a number")
				continue
			}
			n = int(r-'A') + 1
		}
		if n <= 0 || n > len(options) {
			a.printf("Choice must be between 1 and %d\n", len(options))
			continue
		}
		return n - 1, nil
	}
}

// ---------------------------------------------------------------------------
// word bank

func (a *App) viewWords(context.Context) (string, error) {
	a.clearScreen()
	list := a.bank.Sorted()
	for i, w := range list {
		list[i] = strings.ToUpper(w)
	}
	a.println(strings.Join(list, ", "))
	a.printf("%d words loaded\n", len(list))
	return "", nil
}

func (a *App) clearWords(ctx context.Context) (string, error) {
	a.clearScreen()
	n, err := a.bank.Clear(ctx)
	if err != nil {
		a.printf("Could not save the wordbank: %v\n", err)
		return "", nil
	}
	a.printf("%d words cleared\n", n)
	return "", nil
}

func (a *App) removeWord(ctx context.Context) (string, error) {
	a.clearScreen()
	w, err := a.ask("Enter the word you wish to remove: ")
	if err != nil {
		return "", err
	}
	removed, err := a.bank.Remove(ctx, w)
	switch {
	case err != nil:
		a.printf("Could not save the wordbank: %v\n", err)
	case removed:
		a.println("Word removed")
	default:
		a.println("Word not found")
	}
	return "", nil
}

func (a *App) addWord(ctx context.Context) (string, error) {
	a.clearScreen()
	w, err := a.ask("Enter word to add: ")
	if err != nil {
		return "", err
	}
	added, err := a.bank.Add(ctx, w)
	switch {
	case errors.Is(err, words.ErrNoWords):
		a.println("Words need at least one letter")
	case err != nil:
		a.printf("Could not save the wordbank: %v\n", err)
	case added:
		a.println("Word added")
	default:
		a.println("Word already in word bank")
	}
	return "", nil
}

func (a *App) addWordlist(ctx context.Context) (string, error) {
	a.clearScreen()
	location, err := a.ask("Enter location of wordlist: ")
	if err != nil {
		return "", err
	}
	n, err := a.bank.Import(ctx, words.Locate(location))
	if err != nil {
		log.Debug().Err(err).Str("location", location).Msg("import wordlist")
		a.printf("Exception occurred fetching wordlist from %s: %v\n", location, err)
		return "", nil
	}
	a.printf("%d words added from %q\n", n, location)
	return "", nil
}

// ---------------------------------------------------------------------------
// play

func (a *App) playOther(context.Context) (string, error) {
	for {
		w, err := a.ask("Enter word for other player to guess: ")
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(w) == "" {
			a.println("Word required")
			continue
		}
		if !words.Valid(w) {
			a.println("Words need at least one letter")
			continue
		}
		a.nextWord = w
		return "play", nil
	}
}

// play shows one screen of the current round and takes one guess.
func (a *App) play(ctx context.Context) (string, error) {
	a.clearScreen()
	if !a.session.Active() {
		word := a.nextWord
		a.nextWord = ""
		if _, err := a.session.Start(ctx, word); err != nil {
			if errors.Is(err, words.ErrNoWords) {
				a.println("No words in wordbank")
				return "main", nil
			}
			return "", err
		}
	}
	g := a.session.Current()

	a.println(render.Board(g))

	if !g.Status().Finished() {
		return "play", a.guess(g)
	}

	a.println("\n" + render.Summary(g) + "\n")
	a.session.Stop()
	return "main", nil
}

func (a *App) guess(g *game.Game) error {
	for {
		in, err := a.ask("Enter Guess: ")
		if err != nil {
			return err
		}
		in = strings.TrimSpace(in)
		switch {
		case in == "":
			a.println("Guess required")
			continue
		case g.HasGuessed(in):
			a.println("Already guessed that")
			continue
		}

		var out game.Outcome
		if utf8.RuneCountInString(game.Normalize(in)) > 1 {
			out, err = g.GuessWord(in)
		} else {
			out, err = g.Guess(in)
		}
		var ie *game.InputError
		if errors.As(err, &ie) {
			a.printf("Invalid guess: %s\n", ie.Reason)
			continue
		}
		if err != nil {
			return err
		}
		h := g.History()
		a.println(render.Feedback(in, out, h[len(h)-1].Revealed))
		return nil
	}
}

// ---------------------------------------------------------------------------
// io

func (a *App) ask(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return a.in.Text(), nil
}

func (a *App) clearScreen() {
	if a.clear {
		fmt.Fprint(a.out, clearSequence)
	}
}

func (a *App) println(s string) { fmt.Fprintln(a.out, s) }

func (a *App) printf(format string, args ...any) { fmt.Fprintf(a.out, format, args...) }
