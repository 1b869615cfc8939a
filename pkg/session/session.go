// Package session runs the per-session identity initialization inside the
// launched container: key search, validation, promotion, transport setup,
// dotfile application, and identity configuration, strictly in that order.
// Any fatal step aborts before the interactive shell is reached; there is
// no partial-success mode.
package session

import (
	"context"
	"fmt"
	"os"

	"github.com/radikalliberal/devcontainer/pkg/config"
	"github.com/radikalliberal/devcontainer/pkg/dotfiles"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/identity"
	"github.com/radikalliberal/devcontainer/pkg/logging"
	"github.com/radikalliberal/devcontainer/pkg/output"
	"github.com/radikalliberal/devcontainer/pkg/sshkeys"
)

// Result is the prepared session state handed to the interactive shell.
type Result struct {
	// Key is the promoted session credential.
	Key sshkeys.Promoted
	// TransportConfig is the generated ssh configuration path.
	TransportConfig string
	// Email is the selected git identity email.
	Email string
	// Token is the identity-service auth token; empty when retrieval
	// failed (tolerated).
	Token string
}

// Initializer drives the identity pipeline.
type Initializer struct {
	cfg     config.Config
	runner  execx.Runner
	console *output.Console
	probe   identity.Prober
}

// New creates an Initializer.
func New(cfg config.Config, runner execx.Runner) *Initializer {
	return &Initializer{
		cfg:     cfg,
		runner:  runner,
		console: output.Default,
		probe:   identity.TCPProber,
	}
}

// Run executes the pipeline and returns the prepared session state. A nil
// error means the session is Ready: fully initialized identity, shell may
// start.
func (i *Initializer) Run(ctx context.Context) (Result, error) {
	log := logging.GetLogger("session")
	var res Result

	// KeySearch
	cand, err := sshkeys.Discover(i.cfg.KeySourceDir)
	if err != nil {
		return res, err
	}
	i.console.Info("using key pair %s from %s", cand.Name, i.cfg.KeySourceDir)

	// KeyValidation (skippable)
	if i.cfg.SkipKeyValidation {
		i.console.Warn("key validation skipped (DEVC_SKIP_KEY_VALIDATION)")
	} else {
		validator := sshkeys.NewValidator(i.runner, i.cfg.IdentityHost)
		if err := validator.Validate(ctx, cand); err != nil {
			return res, err
		}
		i.console.Success("key registered with %s", i.cfg.IdentityHost)
	}

	// KeyPromotion
	res.Key, err = sshkeys.Promote(cand, i.cfg.KeyDir)
	if err != nil {
		return res, err
	}

	// TransportSetup
	res.TransportConfig, err = sshkeys.WriteTransportConfig(i.cfg.KeyDir, res.Key, i.cfg.IdentityHost)
	if err != nil {
		return res, err
	}
	if err := sshkeys.RegisterWithAgent(ctx, i.runner, res.Key); err != nil {
		i.console.Warn("ssh agent registration failed: %v (key remains usable directly)", err)
	}

	// DotfileApplication
	applier := dotfiles.New(i.runner, i.cfg.Home)
	if err := applier.Apply(ctx, i.cfg.DotfilesRepo); err != nil {
		return res, err
	}
	i.console.Success("dotfiles applied from %s", i.cfg.DotfilesRepo)

	// IdentityConfig: display name unconditionally, email by sentinel
	// reachability. Never fails the session.
	conf := identity.New(i.runner)
	res.Email = identity.SelectEmail(i.probe, i.cfg.SentinelHost, i.cfg.WorkEmail, i.cfg.PersonalEmail)
	if err := conf.ConfigureGit(ctx, i.cfg.GitName, res.Email); err != nil {
		i.console.Warn("git identity configuration failed: %v", err)
	} else {
		i.console.Info("git identity: %s <%s>", i.cfg.GitName, res.Email)
	}

	// Ready
	if !conf.Authenticated(ctx) {
		i.console.Warn("gh is not authenticated; run 'gh auth login' for API access")
	}
	res.Token = conf.Token(ctx)
	if res.Token == "" {
		log.Debug().Msg("no auth token available, exporting empty GITHUB_TOKEN")
	}

	return res, nil
}

// StartShell hands control to the interactive shell with the session's
// token exported, propagating the shell's exit code.
func (i *Initializer) StartShell(ctx context.Context, res Result) (int, error) {
	env := append(os.Environ(), fmt.Sprintf("GITHUB_TOKEN=%s", res.Token))
	stdio := execx.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr, Env: env}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/zsh"
	}
	return i.runner.RunInteractive(ctx, stdio, shell, "-l")
}

// WithConsole overrides the operator console, for tests.
func (i *Initializer) WithConsole(c *output.Console) *Initializer {
	i.console = c
	return i
}

// WithProber overrides the sentinel prober, for tests.
func (i *Initializer) WithProber(p identity.Prober) *Initializer {
	i.probe = p
	return i
}
