package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

var removeBackupFirst bool

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().BoolVar(&removeBackupFirst, "backup", true,
		"snapshot the configuration before removing")
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove an MCP server from the configuration",
	Long: `Remove the named server descriptor.

By default a snapshot of the configuration is created first, so the
removal can be undone with 'mcpm backup restore'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runRemove(os.Stdout, args[0])
	},
}

func runRemove(w io.Writer, name string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	if removeBackupFirst {
		cfg, err := st.Load()
		if err == nil {
			snap, err := openBackups().Create(cfg, "", "before removing "+name)
			if err != nil {
				return errors.Wrap(err, "creating pre-removal snapshot")
			}
			fmt.Fprintf(w, "%s snapshot %s\n", gray("·"), snap.ID)
		}
	}

	if err := st.RemoveServer(name); err != nil {
		if errors.Is(err, mcpmerrors.ErrNotFound) {
			return mcpmerrors.NewUserError(err, "run 'mcpm list' to see configured servers")
		}
		return err
	}

	fmt.Fprintf(w, "%s removed %s\n", green("✓"), bold(name))
	return nil
}
