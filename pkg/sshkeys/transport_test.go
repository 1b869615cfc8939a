// pkg/sshkeys/transport_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Temp directories, fake runner
// PURPOSE: Test transport config generation and soft agent registration

package sshkeys

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radikalliberal/devcontainer/pkg/execx"
)

func TestWriteTransportConfig(t *testing.T) {
	dir := t.TempDir()
	key := Promoted{
		Name:        "id_ed25519",
		PrivatePath: filepath.Join(dir, "id_ed25519"),
		PublicPath:  filepath.Join(dir, "id_ed25519.pub"),
	}

	path, err := WriteTransportConfig(dir, key, "github.com")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "Host github.com")
	assert.Contains(t, content, "IdentityFile "+key.PrivatePath)
	assert.Contains(t, content, "Host *", "all other hosts must fall back to the promoted key")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRegisterWithAgent(t *testing.T) {
	key := Promoted{Name: "id_ed25519", PrivatePath: "/keys/id_ed25519"}

	t.Run("success", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		assert.NoError(t, RegisterWithAgent(context.Background(), runner, key))
		assert.True(t, runner.CalledWith("ssh-add /keys/id_ed25519"))
	})

	t.Run("agent_unavailable_is_soft", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.Default = execx.FakeResponse{Output: "Could not open a connection to your authentication agent.", ExitCode: 2}

		err := RegisterWithAgent(context.Background(), runner, key)
		assert.Error(t, err, "caller decides this is a warning, not a fatal")
	})

	t.Run("missing_binary", func(t *testing.T) {
		runner := execx.NewFakeRunner()
		runner.Default = execx.FakeResponse{Err: fmt.Errorf("exec: ssh-add: not found")}

		assert.Error(t, RegisterWithAgent(context.Background(), runner, key))
	})
}
