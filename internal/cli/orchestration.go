package cli

import (
	"github.com/spf13/cobra"

	"github.com/radikalliberal/devcontainer/pkg/compose"
	"github.com/radikalliberal/devcontainer/pkg/config"
	"github.com/radikalliberal/devcontainer/pkg/launch"
	"github.com/radikalliberal/devcontainer/pkg/output"
)

// composeFor builds the compose wrapper for the current checkout. The
// orchestration subcommands run from inside the environment repository, so
// the project directory is the working directory.
func composeFor(cfg config.Config) *compose.Compose {
	return compose.New(runner, "", cfg.Project)
}

// exitFrom converts a child exit code into the command result.
func exitFrom(code int, err error) error {
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func newBuildCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the environment image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			if err := composeFor(cfg).Build(cmd.Context()); err != nil {
				return err
			}
			output.Success("environment image ready")
			return nil
		},
	}
}

func newRunCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run [project]",
		Short: "Start an interactive session",
		Long: `Run builds the image if needed and starts an interactive session for the
project. Sessions for different project names run in separate containers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, args)
			if err != nil {
				return err
			}
			launcher := launch.New(composeFor(cfg))
			if err := launcher.Build(cmd.Context()); err != nil {
				return err
			}
			return exitFrom(launcher.Launch(cmd.Context()))
		},
	}
}

func newShellCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [project]",
		Short: "Open a shell in the running session container",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, args)
			if err != nil {
				return err
			}
			return exitFrom(composeFor(cfg).Shell(cmd.Context(), compose.DefaultStdio()))
		},
	}
}

func newStopCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the project's containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			return composeFor(cfg).Stop(cmd.Context())
		},
	}
}

func newCleanCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the project's containers and volumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			return composeFor(cfg).Clean(cmd.Context())
		},
	}
}

func newCleanAllCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clean-all",
		Short: "Remove containers, volumes, and the built image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			return composeFor(cfg).CleanAll(cmd.Context())
		},
	}
}

func newLogsCmd(project *string) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the project's container logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			return exitFrom(composeFor(cfg).Logs(cmd.Context(), compose.DefaultStdio(), follow))
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	return cmd
}

func newRestartCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Restart the project's containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			return composeFor(cfg).Restart(cmd.Context())
		},
	}
}

func newUpdateCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Pull base images and rebuild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			comp := composeFor(cfg)
			if err := comp.Pull(cmd.Context()); err != nil {
				return err
			}
			if err := comp.Build(cmd.Context()); err != nil {
				return err
			}
			output.Success("environment updated")
			return nil
		},
	}
}
