// Package compose wraps `docker compose` invocations for the environment's
// orchestration layer. Every operation is namespaced by project name so
// sessions for different projects run in separate containers.
package compose

import (
	"context"
	"fmt"
	"os"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// ServiceName is the compose service providing the development session.
const ServiceName = "dev"

// Compose drives the orchestration layer in a checkout directory.
type Compose struct {
	runner  execx.Runner
	dir     string
	project string
}

// New creates a Compose bound to the given checkout directory and project.
func New(runner execx.Runner, dir, project string) *Compose {
	return &Compose{runner: runner, dir: dir, project: project}
}

// ProjectName returns the namespaced compose project name.
func (c *Compose) ProjectName() string {
	return fmt.Sprintf("devcontainer-%s", c.project)
}

// args prefixes a compose subcommand with the project and directory scope.
func (c *Compose) args(sub ...string) []string {
	base := []string{"compose", "--project-name", c.ProjectName()}
	if c.dir != "" {
		base = append(base, "--project-directory", c.dir)
	}
	return append(base, sub...)
}

// run executes a non-interactive compose subcommand, wrapping a non-zero
// exit into the given error code.
func (c *Compose) run(ctx context.Context, code errors.ErrorCode, sub ...string) error {
	res, err := c.runner.Run(ctx, "docker", c.args(sub...)...)
	if err != nil {
		return errors.Wrapf(err, code, "cannot run docker compose %s", sub[0])
	}
	if !res.Succeeded() {
		return errors.Newf(code, "docker compose %s failed", sub[0]).
			WithDetail("output", res.Output)
	}
	return nil
}

// Build builds the environment image. Docker's layer cache makes this a
// no-op when the image is already current.
func (c *Compose) Build(ctx context.Context) error {
	log := logging.GetLogger("compose")
	log.Info().Str("project", c.ProjectName()).Msg("building environment image")
	return c.run(ctx, errors.ErrBuildFailed, "build")
}

// RunSession starts an interactive one-off session container attached to
// the given stdio streams and returns the session's exit code.
func (c *Compose) RunSession(ctx context.Context, stdio execx.Stdio) (int, error) {
	args := c.args("run", "--rm", "--service-ports", ServiceName)
	return c.runner.RunInteractive(ctx, stdio, "docker", args...)
}

// Shell opens a shell in the already-running session container.
func (c *Compose) Shell(ctx context.Context, stdio execx.Stdio) (int, error) {
	args := c.args("exec", ServiceName, "/bin/zsh")
	return c.runner.RunInteractive(ctx, stdio, "docker", args...)
}

// Stop stops the project's containers without removing them.
func (c *Compose) Stop(ctx context.Context) error {
	return c.run(ctx, errors.ErrInternal, "stop")
}

// Down removes the project's containers and network.
func (c *Compose) Down(ctx context.Context) error {
	return c.run(ctx, errors.ErrInternal, "down")
}

// Clean removes containers, network, and the project's volumes.
func (c *Compose) Clean(ctx context.Context) error {
	return c.run(ctx, errors.ErrInternal, "down", "--volumes")
}

// CleanAll additionally removes the built image.
func (c *Compose) CleanAll(ctx context.Context) error {
	return c.run(ctx, errors.ErrInternal, "down", "--volumes", "--rmi", "local")
}

// Restart restarts the project's containers.
func (c *Compose) Restart(ctx context.Context) error {
	return c.run(ctx, errors.ErrInternal, "restart")
}

// Pull refreshes the base images referenced by the compose file.
func (c *Compose) Pull(ctx context.Context) error {
	return c.run(ctx, errors.ErrInternal, "pull")
}

// Logs streams the project's logs to the given stdio.
func (c *Compose) Logs(ctx context.Context, stdio execx.Stdio, follow bool) (int, error) {
	sub := []string{"logs"}
	if follow {
		sub = append(sub, "--follow")
	}
	return c.runner.RunInteractive(ctx, stdio, "docker", c.args(sub...)...)
}

// Ps prints the project's container status to the given stdio.
func (c *Compose) Ps(ctx context.Context, stdio execx.Stdio) (int, error) {
	return c.runner.RunInteractive(ctx, stdio, "docker", c.args("ps")...)
}

// DefaultStdio returns stdio attached to the invoking process's streams.
func DefaultStdio() execx.Stdio {
	return execx.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}
