// Package cli wires the devc command tree. Commands stay thin: they load
// configuration, construct the involved components, and translate errors
// into operator output; all behavior lives in pkg/.
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/radikalliberal/devcontainer/internal/version"
	"github.com/radikalliberal/devcontainer/pkg/config"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
	"github.com/radikalliberal/devcontainer/pkg/preflight"
)

// ExitError carries a child process's exit code up to main so the tool's
// final status mirrors the session's.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		project   string
	)

	rootCmd := &cobra.Command{
		Use:   "devc",
		Short: "Reusable containerized development environment",
		Long: `devc provisions a containerized development environment: it builds the
environment image, launches an interactive session for a project, and
initializes the session's identity (SSH key, dotfiles, git configuration)
before handing over an interactive shell.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "Project name (default \"default\")")

	rootCmd.AddCommand(newBootstrapCmd(&project))
	rootCmd.AddCommand(newBuildCmd(&project))
	rootCmd.AddCommand(newRunCmd(&project))
	rootCmd.AddCommand(newShellCmd(&project))
	rootCmd.AddCommand(newStopCmd(&project))
	rootCmd.AddCommand(newCleanCmd(&project))
	rootCmd.AddCommand(newCleanAllCmd(&project))
	rootCmd.AddCommand(newLogsCmd(&project))
	rootCmd.AddCommand(newRestartCmd(&project))
	rootCmd.AddCommand(newUpdateCmd(&project))
	rootCmd.AddCommand(newStatusCmd(&project))
	rootCmd.AddCommand(newImagesCmd())
	rootCmd.AddCommand(newInfoCmd(&project))
	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGuideCmd())

	return rootCmd
}

// loadConfig builds the effective configuration, applying the project flag
// and an optional positional project argument (highest precedence).
func loadConfig(projectFlag string, args []string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if projectFlag != "" {
		cfg.Project = projectFlag
	}
	if len(args) > 0 && args[0] != "" {
		cfg.Project = args[0]
	}
	return cfg, nil
}

// runner is the process-wide external command runner.
var runner execx.Runner = execx.NewOSRunner()

// newPreflightChecker builds the host preflight checker. A variable so
// tests can substitute a checker with a fake daemon connection.
var newPreflightChecker = preflight.NewChecker
