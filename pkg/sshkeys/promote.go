package sshkeys

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// Promoted is a candidate copied into the writable working directory with
// tightened permissions. The pair is never mutated after promotion.
type Promoted struct {
	Name        string
	PrivatePath string
	PublicPath  string
}

// Promote copies both halves of the candidate into destDir, creating the
// directory owner-only when absent. The private half ends up 0600, the
// public half 0644, regardless of the source files' modes. Failures are
// fatal; permission and disk errors are not transient here.
func Promote(cand Candidate, destDir string) (Promoted, error) {
	log := logging.GetLogger("sshkeys")

	if err := os.MkdirAll(destDir, 0700); err != nil {
		return Promoted{}, errors.Wrapf(err, errors.ErrKeyPromotion, "cannot create key directory %s", destDir)
	}

	p := Promoted{
		Name:        cand.Name,
		PrivatePath: filepath.Join(destDir, cand.Name),
		PublicPath:  filepath.Join(destDir, cand.Name+".pub"),
	}

	if err := copyWithMode(cand.PrivatePath, p.PrivatePath, 0600); err != nil {
		return Promoted{}, errors.Wrapf(err, errors.ErrKeyPromotion, "cannot promote private key %s", cand.Name)
	}
	if err := copyWithMode(cand.PublicPath, p.PublicPath, 0644); err != nil {
		return Promoted{}, errors.Wrapf(err, errors.ErrKeyPromotion, "cannot promote public key %s", cand.Name)
	}

	log.Info().Str("key", cand.Name).Str("dir", destDir).Msg("key promoted")
	return p, nil
}

// copyWithMode copies src to dst and forces the destination mode. Chmod is
// applied explicitly after the write: the umask and the source mode must
// not leak into the destination.
func copyWithMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	if err := os.Chmod(dst, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", dst, err)
	}
	return nil
}
