package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/template"
)

var templateInstallAs string

func init() {
	templateCmd.AddCommand(templateInstallCmd)

	templateInstallCmd.Flags().StringVar(&templateInstallAs, "as", "",
		"server name to install under (defaults to the template name)")
}

var templateInstallCmd = &cobra.Command{
	Use:   "install <template>",
	Short: "Add a server from a template",
	Example: `  mcpm template install time
  mcpm template install github --as gh`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runTemplateInstall(os.Stdout, args[0])
	},
}

func runTemplateInstall(w io.Writer, tplName string) error {
	catalog, err := template.Load()
	if err != nil {
		return err
	}

	srv, err := catalog.Get(tplName)
	if err != nil {
		if errors.Is(err, mcpmerrors.ErrNotFound) {
			return mcpmerrors.NewUserError(err, "run 'mcpm template list' to see the catalog")
		}
		return err
	}

	name := tplName
	if templateInstallAs != "" {
		name = templateInstallAs
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	result, err := st.AddServer(name, srv)
	for _, warning := range result.Warnings() {
		fmt.Fprintf(w, "%s %s\n", yellow("!"), warning.Message)
	}
	if err != nil {
		if errors.Is(err, mcpmerrors.ErrAlreadyExists) {
			return mcpmerrors.NewUserError(err, "pick a different name with --as")
		}
		if !result.Accepted() {
			for _, issue := range result.Errors() {
				fmt.Fprintf(w, "%s %s\n", red("✗"), issue.Message)
			}
			return mcpmerrors.NewUserError(err, "the template's command may not be installed")
		}
		return err
	}

	fmt.Fprintf(w, "%s added %s (%s) to %s\n", green("✓"), bold(name), srv.Type, st.Path())
	return nil
}
