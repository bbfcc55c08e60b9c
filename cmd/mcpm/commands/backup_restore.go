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
	backupCmd.AddCommand(backupRestoreCmd)
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore the configuration from a snapshot",
	Long: `Replace the live configuration with the document stored in the
named snapshot. A snapshot of the current state is taken first, so a
restore is itself undoable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runBackupRestore(os.Stdout, args[0])
	},
}

func runBackupRestore(w io.Writer, id string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	mgr := openBackups()

	cfg, err := mgr.Restore(id)
	if err != nil {
		if errors.Is(err, mcpmerrors.ErrNotFound) {
			return mcpmerrors.NewUserError(err, "run 'mcpm backup list' to see snapshot ids")
		}
		return err
	}

	// The current state gets its own snapshot so the restore can be
	// undone.
	if current, err := st.Load(); err == nil {
		snap, err := mgr.Create(current, "", "before restoring "+id)
		if err != nil {
			return errors.Wrap(err, "creating pre-restore snapshot")
		}
		fmt.Fprintf(w, "%s snapshot %s\n", gray("·"), snap.ID)
	}

	if err := st.Save(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s restored %s (%d servers) to %s\n",
		green("✓"), bold(id), len(cfg.Servers), st.Path())
	return nil
}
