package sshkeys

import (
	"context"
	"fmt"
	"strings"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// SuccessMarker is the substring GitHub prints on a successful
// shell-authentication attempt. The probe's exit code is useless here:
// GitHub closes `ssh -T` with a non-zero status even when authentication
// succeeded, so success is detected from the output text alone.
const SuccessMarker = "successfully authenticated"

// probeTimeoutSeconds bounds the single validation attempt.
const probeTimeoutSeconds = 5

// MarkerPresent is the isolated success predicate over a probe result:
// true iff the marker appears in the combined output, independent of the
// numeric exit status.
func MarkerPresent(res execx.Result) bool {
	return strings.Contains(res.Output, SuccessMarker)
}

// Validator checks a candidate key against the identity host.
type Validator struct {
	runner execx.Runner
	host   string
}

// NewValidator creates a Validator for the given identity host.
func NewValidator(runner execx.Runner, host string) *Validator {
	return &Validator{runner: runner, host: host}
}

// Validate issues one non-interactive, short-timeout connection attempt
// with the candidate key. No retries. On rejection the returned error
// carries the public key material and the registration URL so the operator
// can act; automatic registration is deliberately not attempted.
func (v *Validator) Validate(ctx context.Context, cand Candidate) error {
	log := logging.GetLogger("sshkeys")

	res, err := v.runner.Run(ctx, "ssh",
		"-T",
		"-o", "BatchMode=yes",
		"-o", "StrictHostKeyChecking=accept-new",
		"-o", fmt.Sprintf("ConnectTimeout=%d", probeTimeoutSeconds),
		"-i", cand.PrivatePath,
		"git@"+v.host,
	)
	if err != nil {
		return errors.Wrapf(err, errors.ErrKeyNotRegistered, "cannot probe %s", v.host)
	}

	if !MarkerPresent(res) {
		keyErr := errors.Newf(errors.ErrKeyNotRegistered, "key %s is not registered with %s", cand.Name, v.host).
			WithDetail("output", res.Output).
			WithRemediation(fmt.Sprintf("add the public key to your account: https://%s/settings/ssh/new", v.host))

		if pub, readErr := cand.PublicKey(); readErr == nil {
			keyErr = keyErr.WithDetail("public_key", strings.TrimSpace(pub))
		}
		if keyType, fp, fpErr := cand.Fingerprint(); fpErr == nil {
			keyErr = keyErr.WithDetail("fingerprint", fmt.Sprintf("%s %s", keyType, fp))
		}
		return keyErr
	}

	log.Info().Str("key", cand.Name).Str("host", v.host).Msg("key accepted by identity host")
	return nil
}
