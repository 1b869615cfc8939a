package main

import (
	"errors"
	"os"

	"github.com/radikalliberal/devcontainer/internal/cli"
	devcerrors "github.com/radikalliberal/devcontainer/pkg/errors"
	"github.com/radikalliberal/devcontainer/pkg/output"
)

func main() {
	rootCmd := cli.NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	// A session's own exit code passes through unchanged and silently.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	output.Error("%v", err)
	if hint := devcerrors.Remediation(err); hint != "" {
		output.Info("hint: %s", hint)
	}
	var devcErr *devcerrors.DevcError
	if errors.As(err, &devcErr) {
		if pub, ok := devcErr.Details["public_key"].(string); ok {
			output.Info("public key:\n%s", pub)
		}
	}
	os.Exit(1)
}
