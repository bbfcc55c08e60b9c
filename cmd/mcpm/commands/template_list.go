package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/template"
)

func init() {
	templateCmd.AddCommand(templateListCmd)
}

var templateListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available templates",
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTemplateList(os.Stdout)
	},
}

func runTemplateList(w io.Writer) error {
	catalog, err := template.Load()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", bold("NAME"), bold("DESCRIPTION"))
	for _, tpl := range catalog.List() {
		fmt.Fprintf(tw, "%s\t%s\n", tpl.Name, tpl.Description)
	}
	return tw.Flush()
}
