package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	backupKeep      int
	backupOlderThan time.Duration
)

func init() {
	backupCmd.AddCommand(backupPruneCmd)

	backupPruneCmd.Flags().IntVar(&backupKeep, "keep", 0,
		"snapshots to keep (0 uses the configured retention)")
	backupPruneCmd.Flags().DurationVar(&backupOlderThan, "older-than", 0,
		"also delete snapshots older than this age, e.g. 168h (0 disables)")
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old snapshots, keeping the most recent",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBackupPrune(os.Stdout)
	},
}

func runBackupPrune(w io.Writer) error {
	keep := backupKeep
	if keep <= 0 {
		keep = resolvedSettings().BackupKeep
	}

	removed, failures := openBackups().Prune(keep, backupOlderThan)
	for _, failure := range failures {
		fmt.Fprintf(w, "%s %v\n", yellow("!"), failure)
	}

	fmt.Fprintf(w, "%s removed %d snapshots, kept %d most recent\n",
		green("✓"), removed, keep)
	return nil
}
