// pkg/compose/compose_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Fake runner, temp directories
// PURPOSE: Test compose argv construction, project namespacing, and override rendering

package compose

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
)

func TestProjectNamespacing(t *testing.T) {
	c := New(execx.NewFakeRunner(), "/tmp/src", "api")
	assert.Equal(t, "devcontainer-api", c.ProjectName())
}

func TestBuildArgv(t *testing.T) {
	runner := execx.NewFakeRunner()
	c := New(runner, "/tmp/src", "default")

	require.NoError(t, c.Build(context.Background()))
	require.Len(t, runner.Calls, 1)
	assert.Equal(t,
		"docker compose --project-name devcontainer-default --project-directory /tmp/src build",
		runner.Calls[0])
}

func TestSubcommandArgv(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Compose) error
		want string
	}{
		{"stop", func(c *Compose) error { return c.Stop(context.Background()) }, "stop"},
		{"down", func(c *Compose) error { return c.Down(context.Background()) }, "down"},
		{"clean", func(c *Compose) error { return c.Clean(context.Background()) }, "down --volumes"},
		{"clean_all", func(c *Compose) error { return c.CleanAll(context.Background()) }, "down --volumes --rmi local"},
		{"restart", func(c *Compose) error { return c.Restart(context.Background()) }, "restart"},
		{"pull", func(c *Compose) error { return c.Pull(context.Background()) }, "pull"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := execx.NewFakeRunner()
			c := New(runner, "/tmp/src", "default")

			require.NoError(t, tt.call(c))
			require.Len(t, runner.Calls, 1)
			assert.True(t, strings.HasSuffix(runner.Calls[0], tt.want),
				"argv %q should end with %q", runner.Calls[0], tt.want)
		})
	}
}

func TestRunSessionPropagatesExitCode(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Default = execx.FakeResponse{ExitCode: 42}
	c := New(runner, "/tmp/src", "default")

	code, err := c.RunSession(context.Background(), execx.Stdio{})
	require.NoError(t, err)
	assert.Equal(t, 42, code)
	assert.True(t, runner.CalledWith("run --rm --service-ports dev"))
}

func TestBuildFailureCarriesCode(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Default = execx.FakeResponse{Output: "failed to solve", ExitCode: 17}
	c := New(runner, "/tmp/src", "default")

	err := c.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBuildFailed))
}

func TestWriteProjectOverride(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteProjectOverride(dir, "api", "/home/u/dev")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docker-compose.api.yml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed OverrideFile
	require.NoError(t, yaml.Unmarshal(data, &parsed))

	svc, ok := parsed.Services[ServiceName]
	require.True(t, ok)
	assert.Equal(t, "devcontainer-api", svc.ContainerName)
	assert.Contains(t, svc.Volumes, "/home/u/dev:/home/dev/workspace")
	assert.Contains(t, svc.Environment, "DEVC_PROJECT=api")
}
