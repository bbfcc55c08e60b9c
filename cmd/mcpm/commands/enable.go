package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

func init() {
	rootCmd.AddCommand(enableCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a disabled MCP server",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runSetDisabled(os.Stdout, args[0], false)
	},
}

func runSetDisabled(w io.Writer, name string, disabled bool) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	if err := st.SetDisabled(name, disabled); err != nil {
		if errors.Is(err, mcpmerrors.ErrNotFound) {
			return mcpmerrors.NewUserError(err, "run 'mcpm list' to see configured servers")
		}
		return err
	}

	if disabled {
		fmt.Fprintf(w, "%s disabled %s\n", gray("·"), bold(name))
	} else {
		fmt.Fprintf(w, "%s enabled %s\n", green("✓"), bold(name))
	}
	return nil
}
