package cli

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// supportsInteractiveOutput reports whether the command's stdout is a real
// terminal.
func supportsInteractiveOutput(cmd *cobra.Command) bool {
	out := cmd.OutOrStdout()
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
