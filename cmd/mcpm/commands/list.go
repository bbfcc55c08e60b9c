package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/store"
)

var (
	listType       string
	listAllServers bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listType, "type", "t", "",
		"only show servers of this type: stdio, http, sse")
	listCmd.Flags().BoolVarP(&listAllServers, "all", "a", false,
		"include disabled servers")
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List configured MCP servers",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runList(os.Stdout)
	},
}

func runList(w io.Writer) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	if _, err := st.Load(); err != nil {
		if errors.Is(err, mcpmerrors.ErrNotFound) {
			fmt.Fprintf(w, "No configuration at %s\n", st.Path())
			return nil
		}
		if errors.Is(err, mcpmerrors.ErrCorrupted) {
			return mcpmerrors.NewUserError(err,
				"the file is damaged; run 'mcpm backup list' and 'mcpm backup restore <id>'")
		}
		return err
	}

	servers := st.ListServers(store.Filter{Type: listType, IncludeDisabled: listAllServers})
	if len(servers) == 0 {
		fmt.Fprintln(w, "No servers configured.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bold("NAME"), bold("TYPE"), bold("ENDPOINT"), bold("STATE"))
	for _, name := range sortedNames(servers) {
		srv := servers[name]
		state := green("enabled")
		if srv.Disabled {
			state = gray("disabled")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, srv.Type, truncate(endpoint(srv), 60), state)
	}
	return tw.Flush()
}
