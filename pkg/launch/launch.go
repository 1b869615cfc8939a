// Package launch builds the environment image and starts the interactive
// session. Its one subtle responsibility: when the tool itself was started
// with a non-interactive stdin (the `curl | bash` bootstrap idiom), the
// consumed stream must not be forwarded into the nested interactive shell.
// The launcher reopens the controlling terminal and attaches the session to
// it instead.
package launch

import (
	"context"
	"os"

	"github.com/radikalliberal/devcontainer/pkg/compose"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
	"github.com/radikalliberal/devcontainer/pkg/ui"
)

// Launcher builds and launches sessions.
type Launcher struct {
	compose *compose.Compose

	// Overridable in tests.
	isInteractive func(*os.File) bool
	openTTY       func() (*os.File, error)
}

// New creates a Launcher driving the given compose wrapper.
func New(c *compose.Compose) *Launcher {
	return &Launcher{
		compose:       c,
		isInteractive: ui.IsInteractive,
		openTTY: func() (*os.File, error) {
			return os.OpenFile("/dev/tty", os.O_RDWR, 0)
		},
	}
}

// Build builds the environment image; a no-op when already current.
func (l *Launcher) Build(ctx context.Context) error {
	return l.compose.Build(ctx)
}

// Launch starts the interactive session and returns its exit code. The
// session's stdio is the invoking terminal: inherited when stdin is a TTY,
// reattached to /dev/tty when it is not.
func (l *Launcher) Launch(ctx context.Context) (int, error) {
	stdio, cleanup, err := l.sessionStdio()
	if err != nil {
		return -1, err
	}
	defer cleanup()

	return l.compose.RunSession(ctx, stdio)
}

// sessionStdio selects the streams the session is attached to.
func (l *Launcher) sessionStdio() (execx.Stdio, func(), error) {
	log := logging.GetLogger("launch")

	if l.isInteractive(os.Stdin) {
		return execx.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, func() {}, nil
	}

	// stdin was consumed by whatever piped this tool; the interactive shell
	// inside the session needs the controlling terminal instead.
	tty, err := l.openTTY()
	if err != nil {
		log.Warn().Err(err).Msg("no controlling terminal available, session will inherit non-interactive stdio")
		return execx.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, func() {}, nil
	}

	log.Debug().Msg("stdin is not a terminal, reattaching session to /dev/tty")
	return execx.Stdio{In: tty, Out: tty, Err: tty}, func() { tty.Close() }, nil
}
