// Package identity configures git identity metadata and queries GitHub CLI
// authentication state for the session. Email selection is decided by a
// single bounded network probe of the sentinel host: reachable means the
// operator is on the work network.
package identity

import (
	"context"
	"net"
	"time"

	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// probeTimeout bounds the sentinel reachability probe. On timeout the probe
// is a definitive negative, never retried.
const probeTimeout = 3 * time.Second

// sentinelPort is the port probed on the sentinel host.
const sentinelPort = "443"

// Prober reports whether a host answers within the bounded timeout.
type Prober func(host string) bool

// TCPProber dials host:443 once with the bounded timeout.
func TCPProber(host string) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, sentinelPort), probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// SelectEmail returns workEmail when the sentinel host is reachable and
// personalEmail otherwise. Probe failure never fails the session, and no
// result is memoized across runs.
func SelectEmail(probe Prober, sentinelHost, workEmail, personalEmail string) string {
	log := logging.GetLogger("identity")

	if sentinelHost != "" && probe(sentinelHost) {
		log.Debug().Str("host", sentinelHost).Msg("sentinel reachable, selecting work email")
		return workEmail
	}
	log.Debug().Str("host", sentinelHost).Msg("sentinel unreachable, selecting personal email")
	return personalEmail
}

// Configurator applies git configuration and queries gh auth state.
type Configurator struct {
	runner execx.Runner
}

// New creates a Configurator.
func New(runner execx.Runner) *Configurator {
	return &Configurator{runner: runner}
}

// ConfigureGit sets the global git user name and email.
func (c *Configurator) ConfigureGit(ctx context.Context, name, email string) error {
	for _, kv := range [][2]string{
		{"user.name", name},
		{"user.email", email},
	} {
		res, err := c.runner.Run(ctx, "git", "config", "--global", kv[0], kv[1])
		if err != nil {
			return err
		}
		if !res.Succeeded() {
			return &gitConfigError{key: kv[0], output: res.Output}
		}
	}
	return nil
}

type gitConfigError struct {
	key    string
	output string
}

func (e *gitConfigError) Error() string {
	return "git config " + e.key + " failed: " + execx.FirstLine(e.output)
}

// Authenticated reports whether the GitHub CLI holds a valid login. A
// negative or failed query is soft: the caller logs a warning and the
// session continues.
func (c *Configurator) Authenticated(ctx context.Context) bool {
	res, err := c.runner.Run(ctx, "gh", "auth", "status")
	return err == nil && res.Succeeded()
}

// Token retrieves the GitHub CLI auth token. Retrieval failure yields an
// empty string; the session tolerates running without a token.
func (c *Configurator) Token(ctx context.Context) string {
	res, err := c.runner.Run(ctx, "gh", "auth", "token")
	if err != nil || !res.Succeeded() {
		return ""
	}
	return execx.FirstLine(res.Output)
}
