package compose

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/radikalliberal/devcontainer/pkg/errors"
)

// OverrideFile is the per-project compose override written by `devc new`.
type OverrideFile struct {
	Services map[string]OverrideService `yaml:"services"`
}

// OverrideService pins the container name and workspace mount for one
// project so concurrent projects stay isolated.
type OverrideService struct {
	ContainerName string   `yaml:"container_name"`
	Volumes       []string `yaml:"volumes,omitempty"`
	Environment   []string `yaml:"environment,omitempty"`
}

// NewProjectOverride builds the override content for a project.
func NewProjectOverride(project, workspace string) OverrideFile {
	return OverrideFile{
		Services: map[string]OverrideService{
			ServiceName: {
				ContainerName: fmt.Sprintf("devcontainer-%s", project),
				Volumes: []string{
					fmt.Sprintf("%s:/home/dev/workspace", workspace),
				},
				Environment: []string{
					fmt.Sprintf("DEVC_PROJECT=%s", project),
				},
			},
		},
	}
}

// WriteProjectOverride renders the override YAML into dir as
// docker-compose.<project>.yml and returns the file path.
func WriteProjectOverride(dir, project, workspace string) (string, error) {
	override := NewProjectOverride(project, workspace)

	data, err := yaml.Marshal(override)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "cannot render compose override")
	}

	path := filepath.Join(dir, fmt.Sprintf("docker-compose.%s.yml", project))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "cannot write %s", path)
	}
	return path, nil
}
