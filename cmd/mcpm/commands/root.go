// Package commands implements the CLI commands for mcpm.
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/paths"
	"github.com/thoreinstein/mcpm/internal/settings"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flag values.
var (
	scopeFlag  string
	configFlag string
	verbosity  int
	quiet      bool
	logFormat  string
)

// appSettings holds the settings resolved during initialization.
var appSettings *settings.Settings

// settingsLoadErr holds any error that occurred during settings loading.
var settingsLoadErr error

func init() {
	cobra.OnInitialize(initSettings)

	rootCmd.PersistentFlags().StringVarP(&scopeFlag, "scope", "s", string(paths.ScopeUser),
		"configuration scope: user, project, local")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"explicit configuration file path (overrides --scope)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mcpm version {{.Version}}\n")

	// Silence errors and usage so main controls error output.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initSettings() {
	settings.Init()
	appSettings, settingsLoadErr = settings.Load()
}

var rootCmd = &cobra.Command{
	Use:   "mcpm",
	Short: "Manage MCP server configurations",
	Long: `mcpm manages Model Context Protocol server entries across the
well-known configuration files: the user-wide ~/.claude.json, the
project-shared .mcp.json, and the project-local .claude/settings.json.

Every write is atomic and serialized with advisory file locks, so
concurrent invocations never corrupt a configuration file. Fields
owned by other tools are preserved verbatim on every save.`,
	Example: `  # Add a stdio server to the user scope
  mcpm add time --command uvx --arg mcp-server-time

  # List servers in the project scope
  mcpm list --scope project

  # Snapshot the current configuration
  mcpm backup create --name "before upgrade"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return validateScopeFlag(cmd, args)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// setupLogging configures the default logger from the verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(
			fmt.Errorf("--quiet and --verbose are mutually exclusive"),
			"drop one of the two flags")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		level = logging.LevelFromVerbosity(verbosity)
	}

	logger := logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx != nil {
		cmd.SetContext(logging.NewContext(ctx, logger))
	}

	return nil
}

// validateScopeFlag checks the --scope value and any settings error.
func validateScopeFlag(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	if settingsLoadErr != nil {
		return errors.NewUserError(settingsLoadErr, "check "+paths.SettingsDir()+"/config.yaml")
	}

	if configFlag != "" {
		return nil
	}
	if !paths.ValidScope(scopeFlag) {
		err := fmt.Errorf("invalid scope %q (valid: %s)", scopeFlag,
			strings.Join(scopeNames(), ", "))
		return errors.NewUserError(err, "run 'mcpm --help' to see valid scopes")
	}
	return nil
}

func scopeNames() []string {
	var out []string
	for _, s := range paths.Scopes() {
		out = append(out, string(s))
	}
	return out
}

// configPath resolves the configuration file targeted by the current
// flags: --config wins, otherwise the scope resolves to its well-known
// location.
func configPath() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	return paths.ConfigPath(paths.Scope(scopeFlag))
}

// resolvedSettings returns the loaded settings, falling back to
// defaults when initialization has not run (tests).
func resolvedSettings() *settings.Settings {
	if appSettings != nil {
		return appSettings
	}
	return &settings.Settings{
		LockTimeout:   settings.DefaultLockTimeout,
		BackupDir:     paths.BackupDir(),
		BackupKeep:    settings.DefaultBackupKeep,
		HealthTimeout: settings.DefaultHealthTimeout,
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteArgs runs the root command with explicit arguments.
// Used by tests.
func ExecuteArgs(args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
