// Package dotfiles applies the personalization bundle with chezmoi. Prior
// chezmoi state is discarded before application, so the session always
// reflects the remote bundle exactly.
package dotfiles

import (
	"context"
	"os"
	"path/filepath"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// Applier applies a dotfile bundle into a home directory.
type Applier struct {
	runner execx.Runner
	home   string
}

// New creates an Applier for the given home directory.
func New(runner execx.Runner, home string) *Applier {
	return &Applier{runner: runner, home: home}
}

// stateDirs are the chezmoi-local directories purged before application.
func (a *Applier) stateDirs() []string {
	return []string{
		filepath.Join(a.home, ".local", "share", "chezmoi"),
		filepath.Join(a.home, ".config", "chezmoi"),
	}
}

// Apply purges any pre-existing chezmoi state, then initializes from the
// bundle repository and applies it. Failure is fatal: the session is not
// considered usable without personalization applied.
func (a *Applier) Apply(ctx context.Context, repoURL string) error {
	log := logging.GetLogger("dotfiles")

	for _, dir := range a.stateDirs() {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, errors.ErrDotfilesApply, "cannot clear chezmoi state %s", dir)
		}
	}

	res, err := a.runner.Run(ctx, "chezmoi", "init", "--apply", repoURL)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDotfilesApply, "cannot run chezmoi for %s", repoURL)
	}
	if !res.Succeeded() {
		return errors.Newf(errors.ErrDotfilesApply, "chezmoi init --apply %s failed", repoURL).
			WithDetail("output", res.Output).
			WithRemediation("check that the dotfiles repository is reachable and applies cleanly")
	}

	log.Info().Str("repo", repoURL).Msg("dotfiles applied")
	return nil
}
