// Package sshkeys discovers a usable credential key pair from a read-only
// mounted source, validates it against the identity host, and promotes it
// into a writable, permission-tightened working directory.
package sshkeys

import (
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"

	"github.com/radikalliberal/devcontainer/pkg/errors"
)

// PreferredTypes is the fixed key-type preference order, most modern first.
// The first name for which both private and public files exist wins.
var PreferredTypes = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// Candidate is a discovered private/public key pair eligible for use as the
// session credential. At most one Candidate is ever active per session.
type Candidate struct {
	Name        string
	PrivatePath string
	PublicPath  string
}

// SelectCandidate is the pure fixed-order search: it returns the first
// preferred key name for which the existence predicate holds for both
// halves. Later-preferred but incomplete pairs are skipped.
func SelectCandidate(dir string, exists func(string) bool) (Candidate, bool) {
	for _, name := range PreferredTypes {
		priv := filepath.Join(dir, name)
		pub := priv + ".pub"
		if exists(priv) && exists(pub) {
			return Candidate{Name: name, PrivatePath: priv, PublicPath: pub}, true
		}
	}
	return Candidate{}, false
}

// Discover finds the session's candidate key in the mounted source
// directory. It distinguishes an unusable mount (absent, or containing no
// public keys at all) from a mount with keys but no complete pair.
func Discover(sourceDir string) (Candidate, error) {
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return Candidate{}, errors.Newf(errors.ErrNoMountedKeys, "key source directory %s is not mounted", sourceDir).
			WithRemediation("mount your ~/.ssh directory read-only into the container (see docker-compose.yml)")
	}

	pubs, err := filepath.Glob(filepath.Join(sourceDir, "*.pub"))
	if err != nil || len(pubs) == 0 {
		return Candidate{}, errors.Newf(errors.ErrNoMountedKeys, "no public keys found in %s", sourceDir).
			WithRemediation("generate a key pair on the host first: ssh-keygen -t ed25519")
	}

	cand, ok := SelectCandidate(sourceDir, func(path string) bool {
		fi, statErr := os.Stat(path)
		return statErr == nil && fi.Mode().IsRegular()
	})
	if !ok {
		return Candidate{}, errors.Newf(errors.ErrNoUsableKeyPair,
			"no complete key pair (%v) in %s", PreferredTypes, sourceDir).
			WithRemediation("ensure both the private key and its .pub counterpart are present")
	}
	return cand, nil
}

// PublicKey returns the candidate's public key material in authorized_keys
// format.
func (c Candidate) PublicKey() (string, error) {
	data, err := os.ReadFile(c.PublicPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Fingerprint returns the key type and SHA256 fingerprint of the
// candidate's public half, for operator-facing reporting.
func (c Candidate) Fingerprint() (keyType, fingerprint string, err error) {
	data, err := os.ReadFile(c.PublicPath)
	if err != nil {
		return "", "", err
	}
	parsed, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return "", "", err
	}
	return parsed.Type(), ssh.FingerprintSHA256(parsed), nil
}
