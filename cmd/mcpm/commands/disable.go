package commands

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(disableCmd)
}

var disableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable an MCP server without removing it",
	Long: `Mark the named server as disabled. The descriptor stays in the
configuration and can be re-enabled with 'mcpm enable'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runSetDisabled(os.Stdout, args[0], true)
	},
}
