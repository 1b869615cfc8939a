// pkg/sshkeys/validate_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Fake runner, temp directories
// PURPOSE: Test marker-based validation independent of probe exit status

package sshkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
)

func TestMarkerPresent(t *testing.T) {
	tests := []struct {
		name string
		res  execx.Result
		want bool
	}{
		{
			name: "marker_with_nonzero_exit",
			res: execx.Result{
				Output:   "Hi user! You've successfully authenticated, but GitHub does not provide shell access.",
				ExitCode: 1,
			},
			want: true,
		},
		{
			name: "zero_exit_without_marker",
			res:  execx.Result{Output: "Permission denied (publickey).", ExitCode: 0},
			want: false,
		},
		{
			name: "empty_output",
			res:  execx.Result{ExitCode: 255},
			want: false,
		},
		{
			name: "marker_with_zero_exit",
			res:  execx.Result{Output: "successfully authenticated", ExitCode: 0},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkerPresent(tt.res))
		})
	}
}

func TestValidateAcceptsMarkerDespiteExitCode(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Default = execx.FakeResponse{
		Output:   "Hi user! You've successfully authenticated, but GitHub does not provide shell access.",
		ExitCode: 1,
	}
	v := NewValidator(runner, "github.com")
	cand := writeTestKeyPair(t, t.TempDir(), "id_ed25519")

	assert.NoError(t, v.Validate(context.Background(), cand))
}

func TestValidateProbeArgv(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Default = execx.FakeResponse{Output: "successfully authenticated"}
	v := NewValidator(runner, "github.com")
	cand := writeTestKeyPair(t, t.TempDir(), "id_ed25519")

	require.NoError(t, v.Validate(context.Background(), cand))
	require.Len(t, runner.Calls, 1)

	argv := runner.Calls[0]
	assert.Contains(t, argv, "BatchMode=yes", "probe must be non-interactive")
	assert.Contains(t, argv, "ConnectTimeout=5", "probe must be bounded")
	assert.Contains(t, argv, "-i "+cand.PrivatePath)
	assert.Contains(t, argv, "git@github.com")
}

func TestValidateRejectionSurfacesKeyMaterial(t *testing.T) {
	runner := execx.NewFakeRunner()
	runner.Default = execx.FakeResponse{Output: "Permission denied (publickey).", ExitCode: 255}
	v := NewValidator(runner, "github.com")
	cand := writeTestKeyPair(t, t.TempDir(), "id_ed25519")

	err := v.Validate(context.Background(), cand)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrKeyNotRegistered))

	var devcErr *errors.DevcError
	require.ErrorAs(t, err, &devcErr)
	assert.Contains(t, devcErr.Details["public_key"], "ssh-ed25519")
	assert.Contains(t, devcErr.Details["fingerprint"], "SHA256:")
	assert.Contains(t, errors.Remediation(err), "https://github.com/settings/ssh/new")
}
