package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/health"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/store"
)

func init() {
	rootCmd.AddCommand(healthCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health [name]",
	Short: "Probe configured servers",
	Long: `Check that configured servers are reachable: stdio servers by
resolving and starting their command, remote servers by an HTTP
request. With no argument every enabled server is probed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return runHealth(cmd.Context(), os.Stdout, name)
	},
}

func runHealth(ctx context.Context, w io.Writer, name string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	if _, err := st.Load(); err != nil {
		if errors.Is(err, mcpmerrors.ErrNotFound) {
			return mcpmerrors.NewUserError(err, "run 'mcpm add' to create a configuration")
		}
		return err
	}

	var servers map[string]*mcp.Server
	if name != "" {
		srv := st.GetServer(name)
		if srv == nil {
			return mcpmerrors.NewUserError(
				errors.Wrapf(mcpmerrors.ErrNotFound, "server %q", name),
				"run 'mcpm list' to see configured servers")
		}
		servers = map[string]*mcp.Server{name: srv}
	} else {
		servers = st.ListServers(store.Filter{})
	}

	checker := health.New(health.WithTimeout(resolvedSettings().HealthTimeout))

	unhealthy := 0
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, srvName := range sortedNames(servers) {
		result := checker.Check(ctx, servers[srvName])
		switch result.Status {
		case health.StatusHealthy:
			fmt.Fprintf(tw, "%s\t%s\t\n", srvName, green(string(result.Status)))
		case health.StatusUnhealthy:
			unhealthy++
			fmt.Fprintf(tw, "%s\t%s\t%s\n", srvName, red(string(result.Status)), result.Detail)
		default:
			fmt.Fprintf(tw, "%s\t%s\t%s\n", srvName, gray(string(result.Status)), result.Detail)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if unhealthy > 0 {
		return mcpmerrors.NewUserError(
			errors.Newf("%d of %d servers unhealthy", unhealthy, len(servers)),
			"run 'mcpm show <name>' to inspect a failing descriptor")
	}
	return nil
}
