package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/tui"
)

func tuiCmd() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Play in a full-screen terminal window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The screen owns the terminal, so logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			interactiveLogging(cmd, w)

			bank, err := fileBank(cmd.Context())
			if err != nil {
				return err
			}
			screen, err := tui.NewScreen()
			if err != nil {
				return err
			}
			defer screen.Fini()
			return tui.New(screen, newSession(bank)).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	return cmd
}
