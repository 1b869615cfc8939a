package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/radikalliberal/devcontainer/internal/version"
	"github.com/radikalliberal/devcontainer/pkg/compose"
	"github.com/radikalliberal/devcontainer/pkg/dockerx"
	"github.com/radikalliberal/devcontainer/pkg/ui"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1a5fb4", Dark: "#62a0ea"})
	labelStyle  = lipgloss.NewStyle().Width(12).Foreground(lipgloss.AdaptiveColor{Light: "#5e5c64", Dark: "#9a9996"})
	runningTag  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#26a269", Dark: "#57e389"})
	stoppedTag  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#c01c28", Dark: "#f66151"})
)

// plainWhenPiped disables styling for non-terminal output.
func plainWhenPiped(s lipgloss.Style, text string) string {
	if ui.DetectFormat(os.Stdout) != ui.FormatTerminal {
		return text
	}
	return s.Render(text)
}

func newStatusCmd(project *string) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session container status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}

			client, err := dockerx.Connect()
			if err != nil {
				return err
			}
			defer client.Close()

			filter := cfg.Project
			if all {
				filter = ""
			}
			containers, err := client.Containers(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if len(containers) == 0 {
				fmt.Println("no session containers found")
				return nil
			}

			fmt.Println(plainWhenPiped(headerStyle, "SESSIONS"))
			for _, ctr := range containers {
				tag := stoppedTag
				if ctr.State == "running" {
					tag = runningTag
				}
				fmt.Printf("%s %s  %s (%s)\n",
					plainWhenPiped(tag, fmt.Sprintf("%-8s", ctr.State)),
					ctr.Name, ctr.Image, ctr.Status)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show sessions for every project")
	return cmd
}

func newImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List environment images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("", nil)
			if err != nil {
				return err
			}

			client, err := dockerx.Connect()
			if err != nil {
				return err
			}
			defer client.Close()

			images, err := client.Images(cmd.Context(), cfg.Image)
			if err != nil {
				return err
			}

			if len(images) == 0 {
				fmt.Println("no environment images found; run 'devc build' first")
				return nil
			}
			for _, img := range images {
				fmt.Printf("%-40s %-14s %10s  %s\n", img.Tag, img.ID, img.Size, img.Created)
			}
			return nil
		},
	}
}

func newInfoCmd(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show effective configuration and host state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*project, nil)
			if err != nil {
				return err
			}

			rows := [][2]string{
				{"version", fmt.Sprintf("%s (%s, %s)", version.Version, version.Commit, version.Date)},
				{"project", cfg.Project},
				{"workspace", cfg.Workspace},
				{"image", cfg.Image},
				{"source", cfg.SourceRepo},
				{"dotfiles", cfg.DotfilesRepo},
				{"identity", cfg.IdentityHost},
				{"sentinel", cfg.SentinelHost},
				{"compose", compose.New(runner, "", cfg.Project).ProjectName()},
			}

			daemon := "unreachable"
			if client, err := dockerx.Connect(); err == nil {
				if client.Ping(cmd.Context()) == nil {
					daemon = "reachable"
				}
				client.Close()
			}
			rows = append(rows, [2]string{"daemon", daemon})

			var b strings.Builder
			for _, row := range rows {
				b.WriteString(plainWhenPiped(labelStyle, row[0]))
				b.WriteString(" ")
				b.WriteString(row[1])
				b.WriteString("\n")
			}
			fmt.Print(b.String())
			return nil
		},
	}
}
