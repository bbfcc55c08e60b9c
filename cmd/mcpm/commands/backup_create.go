package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

var backupCreateName string

func init() {
	backupCmd.AddCommand(backupCreateCmd)

	backupCreateCmd.Flags().StringVarP(&backupCreateName, "name", "n", "",
		"label to attach to the snapshot")
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBackupCreate(os.Stdout)
	},
}

func runBackupCreate(w io.Writer) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	cfg, err := st.Load()
	if err != nil {
		if errors.Is(err, mcpmerrors.ErrNotFound) {
			return mcpmerrors.NewUserError(err, "nothing to snapshot yet")
		}
		return err
	}

	snap, err := openBackups().Create(cfg, backupCreateName, "manual")
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s snapshot %s (%d servers)\n",
		green("✓"), bold(snap.ID), len(snap.Config.Servers))
	return nil
}
