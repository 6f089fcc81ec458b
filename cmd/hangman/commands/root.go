package commands

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/logging"
	"github.com/robalobadob/hangman/internal/session"
	"github.com/robalobadob/hangman/internal/words"
)

var (
	cfg config.Config

	logLevel     string
	wordsFile    string
	maxIncorrect int
)

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hangman",
		Short:         "Guess the word one letter at a time",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("words") {
				cfg.WordsFile = wordsFile
			}
			if flags.Changed("max-incorrect") {
				if maxIncorrect <= 0 {
					return errors.New("--max-incorrect must be positive")
				}
				cfg.MaxIncorrect = maxIncorrect
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (default LOG_LEVEL, or warn for interactive commands)")
	root.PersistentFlags().StringVar(&wordsFile, "words", "", "word bank file (default WORDS_FILE)")
	root.PersistentFlags().IntVar(&maxIncorrect, "max-incorrect", 0, "incorrect guesses allowed per game (default MAX_INCORRECT)")

	root.AddCommand(playCmd(), tuiCmd(), serveCmd(), wordsCmd())
	return root
}

// interactiveLogging sends console logs to w at warn unless --log-level was given.
func interactiveLogging(cmd *cobra.Command, w io.Writer) {
	level := ""
	if cmd.Flags().Changed("log-level") {
		level = cfg.LogLevel
	}
	logging.Setup(w, level, zerolog.WarnLevel, true)
}

// seedSource supplies the words of an empty bank.
func seedSource() words.Source {
	if cfg.WordsURL != "" {
		return words.Multi{words.Embedded(), words.URL{Location: cfg.WordsURL}}
	}
	return words.Embedded()
}

// fileBank is the bank kept in WORDS_FILE, seeded when the file is missing or empty.
func fileBank(ctx context.Context) (*words.Bank, error) {
	return words.NewBank(ctx, words.FileStore(cfg.WordsFile), seedSource())
}

// wordsFileSource is WORDS_FILE as a read-only source, or nil if it does not exist.
func wordsFileSource() words.Source {
	if cfg.WordsFile == "" {
		return nil
	}
	if _, err := os.Stat(cfg.WordsFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return words.File(cfg.WordsFile)
}

func newSession(src words.Source) *session.Session {
	return session.New(src, words.NewRand(rand.Uint64(), rand.Uint64()), session.WithMaxIncorrect(cfg.MaxIncorrect))
}
