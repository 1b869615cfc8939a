package cli

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/radikalliberal/devcontainer/pkg/ui"
)

//go:embed docs/*.md
var guideFS embed.FS

func guideTopics() []string {
	entries, err := guideFS.ReadDir("docs")
	if err != nil {
		return nil
	}
	var topics []string
	for _, e := range entries {
		topics = append(topics, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(topics)
	return topics
}

// renderMarkdown renders with glamour on a terminal and falls back to the
// raw markdown when piped or when rendering fails.
func renderMarkdown(content string) string {
	if ui.DetectFormat(os.Stdout) != ui.FormatTerminal {
		return content
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "guide [topic]",
		Short:     "Show a usage guide",
		ValidArgs: guideTopics(),
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Println("available guides:")
				for _, t := range guideTopics() {
					fmt.Printf("  devc guide %s\n", t)
				}
				return nil
			}

			content, err := guideFS.ReadFile("docs/" + args[0] + ".md")
			if err != nil {
				return fmt.Errorf("unknown guide %q, run 'devc guide' for the list", args[0])
			}
			fmt.Print(renderMarkdown(string(content)))
			return nil
		},
	}
}
