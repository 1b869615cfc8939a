package sshkeys

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/execx"
	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// transportConfigName is the generated ssh client configuration file inside
// the promoted-key directory.
const transportConfigName = "config"

// WriteTransportConfig writes the session's ssh configuration: the identity
// host, and every other host as a fallback, use the promoted private key.
// The file lives next to the promoted pair and is session-scoped.
func WriteTransportConfig(destDir string, key Promoted, identityHost string) (string, error) {
	log := logging.GetLogger("sshkeys")

	content := fmt.Sprintf(`# Generated by devc; do not edit.
Host %s
    IdentityFile %s
    IdentitiesOnly yes

Host *
    IdentityFile %s
`, identityHost, key.PrivatePath, key.PrivatePath)

	path := filepath.Join(destDir, transportConfigName)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", errors.Wrapf(err, errors.ErrTransportConfig, "cannot write ssh config %s", path)
	}

	log.Debug().Str("path", path).Str("host", identityHost).Msg("transport config written")
	return path, nil
}

// RegisterWithAgent offers the promoted key to the local ssh agent. Failure
// is a soft condition: downstream tools can still use the key directly via
// the transport config, so the caller only logs a warning.
func RegisterWithAgent(ctx context.Context, runner execx.Runner, key Promoted) error {
	res, err := runner.Run(ctx, "ssh-add", key.PrivatePath)
	if err != nil {
		return fmt.Errorf("ssh-add could not start: %w", err)
	}
	if !res.Succeeded() {
		return fmt.Errorf("ssh-add exited %d: %s", res.ExitCode, execx.FirstLine(res.Output))
	}
	return nil
}
