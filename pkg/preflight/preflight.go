// Package preflight verifies the host can run a session: the container
// runtime must exist and its daemon must answer, and the workspace
// directory must exist (it is created when absent). Failures are fatal and
// carry remediation text for the operator.
package preflight

import (
	"context"
	"os"

	"github.com/radikalliberal/devcontainer/pkg/dockerx"
	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// Pinger is the daemon-reachability probe, satisfied by *dockerx.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker runs host preflight checks.
type Checker struct {
	runner  execx.Runner
	connect func() (Pinger, error)
}

// NewChecker creates a Checker using the given runner and the real Docker
// client.
func NewChecker(runner execx.Runner) *Checker {
	return NewCheckerWith(runner, func() (Pinger, error) {
		return dockerx.Connect()
	})
}

// NewCheckerWith creates a Checker with an explicit daemon connector.
func NewCheckerWith(runner execx.Runner, connect func() (Pinger, error)) *Checker {
	return &Checker{runner: runner, connect: connect}
}

// CheckRuntime verifies the docker binary is on PATH and the daemon is
// reachable. No retries; both failures are fatal.
func (c *Checker) CheckRuntime(ctx context.Context) error {
	log := logging.GetLogger("preflight")

	if !c.runner.LookPath("docker") {
		return errors.New(errors.ErrRuntimeMissing, "docker binary not found on PATH").
			WithRemediation("install Docker Desktop or docker-ce, then re-run: https://docs.docker.com/get-docker/")
	}

	client, err := c.connect()
	if err != nil {
		return errors.Wrap(err, errors.ErrDaemonUnreachable, "cannot create docker client").
			WithRemediation("check that the Docker daemon is running (systemctl start docker, or open Docker Desktop)")
	}
	if closer, ok := client.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if err := client.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrDaemonUnreachable, "docker daemon did not respond").
			WithRemediation("check that the Docker daemon is running (systemctl start docker, or open Docker Desktop)")
	}

	log.Debug().Msg("docker daemon reachable")
	return nil
}

// CheckWorkspace ensures the host workspace directory exists, creating it
// when absent.
func (c *Checker) CheckWorkspace(path string) error {
	log := logging.GetLogger("preflight")

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errors.Newf(errors.ErrWorkspaceCreate, "workspace path %s exists but is not a directory", path).
			WithRemediation("move the file aside or point DEVC_WORKSPACE at a directory")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrWorkspaceCreate, "cannot create workspace directory %s", path)
	}
	log.Info().Str("path", path).Msg("created workspace directory")
	return nil
}
