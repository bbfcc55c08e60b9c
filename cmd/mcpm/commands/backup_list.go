package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var backupListLimit int

func init() {
	backupCmd.AddCommand(backupListCmd)

	backupListCmd.Flags().IntVar(&backupListLimit, "limit", 0,
		"maximum snapshots to list (0 for the default)")
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List snapshots, newest first",
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runBackupList(os.Stdout)
	},
}

func runBackupList(w io.Writer) error {
	mgr := openBackups()

	summaries, failures := mgr.List(backupListLimit)
	for _, failure := range failures {
		fmt.Fprintf(w, "%s %v\n", yellow("!"), failure)
	}
	if len(summaries) == 0 {
		fmt.Fprintf(w, "No snapshots in %s\n", mgr.Dir())
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", bold("ID"), bold("SERVERS"), bold("NAME"))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.ID, s.Servers, s.Metadata["name"])
	}
	return tw.Flush()
}
