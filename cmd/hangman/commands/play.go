package commands

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hangman/internal/cli"
)

func playCmd() *cobra.Command {
	var noClear bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal with numbered menus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interactiveLogging(cmd, colorable.NewColorableStderr())

			bank, err := fileBank(cmd.Context())
			if err != nil {
				return err
			}
			out, tty := terminalOut(cmd.OutOrStdout())
			app := cli.New(cmd.InOrStdin(), out, bank, newSession(bank),
				cli.WithClearScreen(tty && !noClear))
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "do not clear the screen between menus")
	return cmd
}

// terminalOut wraps a terminal *os.File so ANSI sequences work on Windows
// consoles, and reports whether w is a terminal at all.
func terminalOut(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return w, false
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return w, false
	}
	return colorable.NewColorable(f), true
}
