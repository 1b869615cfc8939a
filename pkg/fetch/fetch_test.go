// pkg/fetch/fetch_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Temp directories, fake runner
// PURPOSE: Test clone-to-temp semantics, pre-clearing, and best-effort cleanup

package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
)

func TestFetchInvokesShallowClone(t *testing.T) {
	runner := execx.NewFakeRunner()
	f := New(runner)
	dest := filepath.Join(t.TempDir(), "src")

	require.NoError(t, f.Fetch(context.Background(), "https://example.com/env.git", dest))
	assert.True(t, runner.CalledWith("git clone --depth 1 https://example.com/env.git "+dest))
}

func TestFetchClearsPreexistingDestination(t *testing.T) {
	runner := execx.NewFakeRunner()
	f := New(runner)

	dest := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "stale"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale", "old.txt"), []byte("x"), 0644))

	require.NoError(t, f.Fetch(context.Background(), "ref", dest))

	// The fake runner creates nothing, so the pre-clear must have removed
	// the stale tree entirely.
	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchFailureIsFatalWithOutput(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Default = execx.FakeResponse{Output: "fatal: repository not found", ExitCode: 128}
	f := New(runner)

	err := f.Fetch(context.Background(), "ref", filepath.Join(t.TempDir(), "src"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailed))
}

func TestFetchStartFailure(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Default = execx.FakeResponse{Err: fmt.Errorf("git not found")}
	f := New(runner)

	err := f.Fetch(context.Background(), "ref", filepath.Join(t.TempDir(), "src"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetchFailed))
}

func TestCleanupRemovesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transient")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))

	Cleanup(dir)

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupToleratesAbsentDirectory(t *testing.T) {
	// Must not panic or fail the run.
	Cleanup(filepath.Join(t.TempDir(), "never-existed"))
	Cleanup("")
}
