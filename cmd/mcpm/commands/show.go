package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	mcpmerrors "github.com/thoreinstein/mcpm/internal/errors"
)

var showJSON bool

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false,
		"print the raw descriptor as JSON")
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a server's full descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runShow(os.Stdout, args[0])
	},
}

func runShow(w io.Writer, name string) error {
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

	srv := st.GetServer(name)
	if srv == nil {
		return mcpmerrors.NewUserError(
			errors.Wrapf(mcpmerrors.ErrNotFound, "server %q", name),
			"run 'mcpm list' to see configured servers")
	}

	if showJSON {
		data, err := json.MarshalIndent(srv, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding descriptor")
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	fmt.Fprintf(w, "%s %s\n", bold(name), gray("("+srv.Type+")"))
	if srv.IsLocal() {
		fmt.Fprintf(w, "  command: %s\n", srv.Command)
		for _, arg := range srv.Args {
			fmt.Fprintf(w, "  arg:     %s\n", arg)
		}
		printSortedPairs(w, "env", srv.Env)
	} else {
		fmt.Fprintf(w, "  url: %s\n", srv.URL)
		printSortedPairs(w, "header", srv.Headers)
	}
	if srv.Disabled {
		fmt.Fprintf(w, "  state: %s\n", gray("disabled"))
	}
	return nil
}

func printSortedPairs(w io.Writer, label string, pairs map[string]string) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s:     %s=%s\n", label, k, pairs[k])
	}
}
