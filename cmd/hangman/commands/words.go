package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/database"
	"github.com/robalobadob/hangman/internal/words"
)

func wordsCmd() *cobra.Command {
	var useDB bool
	cmd := &cobra.Command{
		Use:   "words",
		Short: "List or edit the word bank",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// cobra runs only the closest PersistentPreRunE.
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			interactiveLogging(cmd, cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.PersistentFlags().BoolVar(&useDB, "db", false, "edit the server database (DB_PATH) instead of WORDS_FILE")

	withBank := func(fn func(cmd *cobra.Command, args []string, bank *words.Bank) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			bank, closeFn, err := openBank(cmd.Context(), useDB)
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(cmd, args, bank)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print every word",
			Args:  cobra.NoArgs,
			RunE: withBank(func(cmd *cobra.Command, _ []string, bank *words.Bank) error {
				out := cmd.OutOrStdout()
				list := bank.Sorted()
				if len(list) > 0 {
					fmt.Fprintln(out, strings.Join(list, "\n"))
				}
				fmt.Fprintf(out, "%d words loaded\n", len(list))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add WORD...",
			Short: "Add words",
			Args:  cobra.MinimumNArgs(1),
			RunE: withBank(func(cmd *cobra.Command, args []string, bank *words.Bank) error {
				return eachWord(cmd.OutOrStdout(), args, func(w string) (string, error) {
					added, err := bank.Add(cmd.Context(), w)
					switch {
					case err != nil:
						return "", err
					case added:
						return "Word added", nil
					default:
						return "Word already in word bank", nil
					}
				})
			}),
		},
		&cobra.Command{
			Use:   "remove WORD...",
			Short: "Remove words",
			Args:  cobra.MinimumNArgs(1),
			RunE: withBank(func(cmd *cobra.Command, args []string, bank *words.Bank) error {
				return eachWord(cmd.OutOrStdout(), args, func(w string) (string, error) {
					removed, err := bank.Remove(cmd.Context(), w)
					switch {
					case err != nil:
						return "", err
					case removed:
						return "Word removed", nil
					default:
						return "Word not found", nil
					}
				})
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every word",
			Args:  cobra.NoArgs,
			RunE: withBank(func(cmd *cobra.Command, _ []string, bank *words.Bank) error {
				n, err := bank.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d words cleared\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "import LOCATION",
			Short: "Add every word from a file or http(s) URL",
			Args:  cobra.ExactArgs(1),
			RunE: withBank(func(cmd *cobra.Command, args []string, bank *words.Bank) error {
				n, err := bank.Import(cmd.Context(), words.Locate(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d words added from %q\n", n, args[0])
				return nil
			}),
		},
	)
	return cmd
}

// openBank opens the WORDS_FILE bank, or the database bank with useDB.
func openBank(ctx context.Context, useDB bool) (*words.Bank, func(), error) {
	if !useDB {
		bank, err := fileBank(ctx)
		return bank, func() {}, err
	}
	db, err := database.OpenMigrated(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	bank, err := words.NewBank(ctx, database.NewWordStore(db), seedSource())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return bank, func() { _ = db.Close() }, nil
}

func eachWord(out io.Writer, args []string, fn func(w string) (string, error)) error {
	for _, w := range args {
		msg, err := fn(w)
		if err != nil {
			return fmt.Errorf("%s: %w", w, err)
		}
		fmt.Fprintf(out, "%s: %s\n", w, msg)
	}
	return nil
}
