package commands

import (
	"os"
	"sort"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/mcp"
	"github.com/thoreinstein/mcpm/internal/store"
)

func init() {
	// Color is for humans; pipes get plain text.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// openStore builds a Store for the current flags and settings.
func openStore() (*store.Store, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return store.New(path, store.WithLockTimeout(resolvedSettings().LockTimeout)), nil
}

// openBackups builds the backup Manager for the current settings.
func openBackups() *backup.Manager {
	s := resolvedSettings()
	return backup.NewManager(
		backup.WithDir(s.BackupDir),
		backup.WithLockTimeout(s.LockTimeout),
	)
}

// sortedNames returns server names in stable display order.
func sortedNames(servers map[string]*mcp.Server) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// endpoint returns the display endpoint for a server: its command or
// its URL.
func endpoint(srv *mcp.Server) string {
	if srv.IsLocal() {
		return srv.Command
	}
	return srv.URL
}

// truncate shortens a string to maxLen characters, adding "..." if
// truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
