package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/radikalliberal/devcontainer/pkg/compose"
	"github.com/radikalliberal/devcontainer/pkg/fetch"
	"github.com/radikalliberal/devcontainer/pkg/launch"
	"github.com/radikalliberal/devcontainer/pkg/output"
)

func newBootstrapCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Provision and start a session on a fresh host",
		Long: `Bootstrap verifies the host (docker present, daemon reachable, workspace
directory in place), fetches the environment sources into a transient
directory, builds the image, and launches an interactive session. The
transient checkout is removed when the session ends, whatever its exit
code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}
			output.Info("bootstrapping project %q", cfg.Project)

			checker := newPreflightChecker(runner)
			if err := checker.CheckRuntime(ctx); err != nil {
				return err
			}
			if err := checker.CheckWorkspace(cfg.Workspace); err != nil {
				return err
			}
			output.Success("host preflight passed")

			tmp, err := os.MkdirTemp("", "devc-src-*")
			if err != nil {
				return err
			}
			// Guaranteed on every exit path below, session failure included.
			defer fetch.Cleanup(tmp)

			if err := fetch.New(runner).Fetch(ctx, cfg.SourceRepo, tmp); err != nil {
				return err
			}

			comp := compose.New(runner, tmp, cfg.Project)
			launcher := launch.New(comp)

			if err := launcher.Build(ctx); err != nil {
				return err
			}
			output.Success("environment image ready")

			code, err := launcher.Launch(ctx)
			if err != nil {
				return err
			}
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}
