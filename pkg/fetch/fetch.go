// Package fetch retrieves the environment's build sources into a transient
// directory and removes them again after the session ends. Re-runs are
// safe: any pre-existing artifact at the destination is cleared before
// cloning, and a failed clone leaves nothing behind.
package fetch

import (
	"context"
	"os"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// Fetcher clones environment sources.
type Fetcher struct {
	runner execx.Runner
}

// New creates a Fetcher.
func New(runner execx.Runner) *Fetcher {
	return &Fetcher{runner: runner}
}

// Fetch clones sourceRef into dest. The destination is removed first so a
// previous partial or stale checkout never survives. Fatal on failure.
func (f *Fetcher) Fetch(ctx context.Context, sourceRef, dest string) error {
	log := logging.GetLogger("fetch")

	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrapf(err, errors.ErrFetchFailed, "cannot clear destination %s", dest)
	}

	res, err := f.runner.Run(ctx, "git", "clone", "--depth", "1", sourceRef, dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFetchFailed, "cannot run git clone for %s", sourceRef)
	}
	if !res.Succeeded() {
		return errors.Newf(errors.ErrFetchFailed, "git clone of %s failed", sourceRef).
			WithDetail("output", res.Output).
			WithRemediation("check network connectivity and that the repository URL is reachable")
	}

	log.Info().Str("source", sourceRef).Str("dest", dest).Msg("sources fetched")
	return nil
}

// Cleanup removes the transient fetch directory. It is best-effort and
// never fails the run; callers defer it immediately after a successful
// Fetch so it executes on every exit path.
func Cleanup(path string) {
	log := logging.GetLogger("fetch")

	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not remove transient fetch directory")
		return
	}
	log.Debug().Str("path", path).Msg("transient fetch directory removed")
}
