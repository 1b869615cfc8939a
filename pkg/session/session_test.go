// pkg/session/session_test.go
// TEST TYPE: Integration Test (filesystem + fake runner)
// DEPENDENCIES: Temp directories, fake runner
// PURPOSE: Test the identity pipeline's ordering, fatal aborts, and soft failures

package session

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/radikalliberal/devcontainer/pkg/config"
	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/output"
	"github.com/radikalliberal/devcontainer/pkg/ui"
)

const authenticatedOutput = "Hi user! You've successfully authenticated, but GitHub does not provide shell access."

// newSessionFixture builds a home with a mounted ed25519 pair and a runner
// scripted for the happy path.
func newSessionFixture(t *testing.T) (config.Config, *execx.FakeRunner) {
	t.Helper()

	home := t.TempDir()
	sourceDir := filepath.Join(home, ".ssh-host")
	require.NoError(t, os.MkdirAll(sourceDir, 0755))

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "id_ed25519"), []byte("private"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "id_ed25519.pub"), ssh.MarshalAuthorizedKey(sshPub), 0644))

	cfg := config.Config{
		Home:          home,
		Project:       "default",
		IdentityHost:  "github.com",
		SentinelHost:  "gw.corp.example",
		GitName:       "Jan Schulte",
		WorkEmail:     "jan@corp.example",
		PersonalEmail: "jan@example.com",
		DotfilesRepo:  "https://example.com/dotfiles.git",
		KeySourceDir:  sourceDir,
		KeyDir:        filepath.Join(home, ".ssh"),
	}

	runner := execx.NewFakeRunner()
	runner.Respond(
		"ssh -T -o BatchMode=yes -o StrictHostKeyChecking=accept-new -o ConnectTimeout=5 -i "+
			filepath.Join(sourceDir, "id_ed25519")+" git@github.com",
		execx.FakeResponse{Output: authenticatedOutput, ExitCode: 1},
	)
	runner.Respond("gh auth token", execx.FakeResponse{Output: "gho_token\n"})

	return cfg, runner
}

func newQuietInitializer(cfg config.Config, runner *execx.FakeRunner, probe func(string) bool) *Initializer {
	var buf bytes.Buffer
	return New(cfg, runner).
		WithConsole(output.New(&buf, ui.FormatText)).
		WithProber(probe)
}

func TestRunHappyPath(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	init := newQuietInitializer(cfg, runner, func(string) bool { return false })

	res, err := init.Run(context.Background())
	require.NoError(t, err)

	// Key promoted with tightened permissions.
	info, err := os.Stat(res.Key.PrivatePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Transport configured for the identity host.
	data, err := os.ReadFile(res.TransportConfig)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Host github.com")

	// Sentinel unreachable selects the personal email.
	assert.Equal(t, "jan@example.com", res.Email)
	assert.Equal(t, "gho_token", res.Token)

	assert.True(t, runner.CalledWith("chezmoi init --apply"))
	assert.True(t, runner.CalledWith("git config --global user.email jan@example.com"))
}

func TestRunSelectsWorkEmailOnWorkNetwork(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	init := newQuietInitializer(cfg, runner, func(string) bool { return true })

	res, err := init.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jan@corp.example", res.Email)
}

func TestRunAbortsWhenNoKeysMounted(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	cfg.KeySourceDir = filepath.Join(t.TempDir(), "absent")
	init := newQuietInitializer(cfg, runner, func(string) bool { return false })

	_, err := init.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoMountedKeys))

	// The pipeline aborted before any external command ran.
	assert.Empty(t, runner.Calls)
}

func TestRunAbortsOnRejectedKey(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	runner.Responses = map[string]execx.FakeResponse{} // drop the success probe
	runner.Default = execx.FakeResponse{Output: "Permission denied (publickey).", ExitCode: 255}
	init := newQuietInitializer(cfg, runner, func(string) bool { return false })

	_, err := init.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrKeyNotRegistered))

	// Rejection must abort before promotion.
	_, statErr := os.Stat(filepath.Join(cfg.KeyDir, "id_ed25519"))
	assert.True(t, os.IsNotExist(statErr))
	assert.False(t, runner.CalledWith("chezmoi"))
}

func TestRunSkipsValidationWhenConfigured(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	cfg.SkipKeyValidation = true
	runner.Responses = map[string]execx.FakeResponse{} // no probe response needed
	init := newQuietInitializer(cfg, runner, func(string) bool { return false })

	_, err := init.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, runner.CalledWith("ssh -T"), "validation probe must not run when skipped")
}

func TestRunDotfilesFailureIsFatal(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	runner.Respond("chezmoi init --apply "+cfg.DotfilesRepo,
		execx.FakeResponse{Output: "clone failed", ExitCode: 1})
	init := newQuietInitializer(cfg, runner, func(string) bool { return false })

	_, err := init.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDotfilesApply))
}

func TestRunAgentFailureIsSoft(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	runner.Respond("ssh-add "+filepath.Join(cfg.KeyDir, "id_ed25519"),
		execx.FakeResponse{Output: "Could not open a connection to your authentication agent.", ExitCode: 2})
	init := newQuietInitializer(cfg, runner, func(string) bool { return false })

	_, err := init.Run(context.Background())
	assert.NoError(t, err, "agent registration failure must not abort the session")
}

func TestRunTokenFailureYieldsEmptyToken(t *testing.T) {
	cfg, runner := newSessionFixture(t)
	runner.Respond("gh auth token", execx.FakeResponse{ExitCode: 1})
	init := newQuietInitializer(cfg, runner, func(string) bool { return false })

	res, err := init.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", res.Token)
}
