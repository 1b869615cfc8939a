package cli

import (
	"github.com/spf13/cobra"

	"github.com/radikalliberal/devcontainer/pkg/compose"
	"github.com/radikalliberal/devcontainer/pkg/output"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <project>",
		Short: "Create a per-project compose override",
		Long: `New writes a docker-compose.<project>.yml override pinning the project's
container name and workspace mount, so sessions for different projects
stay isolated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("", nil)
			if err != nil {
				return err
			}

			path, err := compose.WriteProjectOverride(".", args[0], cfg.Workspace)
			if err != nil {
				return err
			}
			output.Success("wrote %s", path)
			output.Info("start the session with: devc run %s", args[0])
			return nil
		},
	}
}
