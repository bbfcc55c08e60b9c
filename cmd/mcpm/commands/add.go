package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

var (
	addType    string
	addCommand string
	addArgs    []string
	addEnv     map[string]string
	addURL     string
	addHeaders map[string]string
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addType, "type", "t", mcp.TypeStdio,
		"server type: stdio, http, sse")
	addCmd.Flags().StringVar(&addCommand, "command", "",
		"executable for stdio servers")
	addCmd.Flags().StringArrayVar(&addArgs, "arg", nil,
		"command argument (repeatable, order preserved)")
	addCmd.Flags().StringToStringVar(&addEnv, "env", nil,
		"environment variable as KEY=VALUE (repeatable)")
	addCmd.Flags().StringVar(&addURL, "url", "",
		"endpoint for http/sse servers")
	addCmd.Flags().StringToStringVar(&addHeaders, "header", nil,
		"HTTP header as KEY=VALUE (repeatable)")
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an MCP server to the configuration",
	Long: `Add a server descriptor under the given name.

The descriptor is validated before anything is written: the name must
be a lowercase identifier, stdio servers need a command that is
allow-listed or installed, and http/sse servers need a valid absolute
URL. Dangerous environment variables are reported as warnings.`,
	Example: `  # Local stdio server
  mcpm add time --command uvx --arg mcp-server-time

  # Remote server with an auth header
  mcpm add github --type http --url https://api.githubcopilot.com/mcp/ \
    --header "Authorization=Bearer $GITHUB_TOKEN"`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runAdd(os.Stdout, args[0])
	},
}

func runAdd(w io.Writer, name string) error {
	st, err := openStore()
	if err != nil {
		return err
	}

	srv := &mcp.Server{
		Type:    addType,
		Command: addCommand,
		Args:    addArgs,
		Env:     addEnv,
		URL:     addURL,
		Headers: addHeaders,
	}

	result, err := st.AddServer(name, srv)
	for _, warning := range result.Warnings() {
		fmt.Fprintf(w, "%s %s\n", yellow("!"), warning.Message)
	}
	if err != nil {
		if !result.Accepted() {
			for _, issue := range result.Errors() {
				fmt.Fprintf(w, "%s %s\n", red("✗"), issue.Message)
			}
			return errors.NewUserError(err, "fix the descriptor and retry")
		}
		return err
	}

	fmt.Fprintf(w, "%s added %s (%s) to %s\n", green("✓"), bold(name), srv.Type, st.Path())
	return nil
}
