package cli

import (
	"github.com/spf13/cobra"

	"github.com/radikalliberal/devcontainer/pkg/output"
	"github.com/radikalliberal/devcontainer/pkg/session"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "init",
		Hidden: true,
		Short:  "Initialize the session identity (container entrypoint)",
		Long: `Init runs inside the launched container: it discovers and validates the
mounted SSH key, promotes it into the session's writable key directory,
applies the dotfile bundle, configures the git identity, and then hands
control to an interactive shell. Any fatal step aborts before the shell
starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig("", nil)
			if err != nil {
				return err
			}

			init := session.New(cfg, runner)
			res, err := init.Run(ctx)
			if err != nil {
				return err
			}
			output.Success("session identity ready, starting shell")

			return exitFrom(init.StartShell(ctx, res))
		},
	}
}
