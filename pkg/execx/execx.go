// Package execx is a thin abstraction over external processes. Every
// component that shells out (git, docker compose, ssh, chezmoi, gh) does so
// through the Runner interface, so tests can substitute a fake and assert on
// the argv without spawning anything.
package execx

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/radikalliberal/devcontainer/pkg/logging"
)

// Result is the outcome of one external process invocation. Output holds
// combined stdout+stderr. ExitCode is -1 when the process could not be
// started at all.
type Result struct {
	Output   string
	ExitCode int
}

// Succeeded reports whether the process exited zero. Callers that need
// marker-based success detection (the identity-host probe) inspect Output
// instead; see sshkeys.MarkerPresent.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args and captures combined output. A non-zero
	// exit is NOT an error; err is non-nil only when the process could not
	// be started or the context was cancelled.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// RunInteractive executes name with args attached to the given stdio
	// streams and returns the child's exit code.
	RunInteractive(ctx context.Context, stdio Stdio, name string, args ...string) (int, error)

	// LookPath reports whether name resolves to an executable on PATH.
	LookPath(name string) bool
}

// Stdio describes the streams an interactive child process is attached to.
type Stdio struct {
	In  *os.File
	Out *os.File
	Err *os.File
	// Env, when non-nil, replaces the child's environment.
	Env []string
	// Dir, when non-empty, is the child's working directory.
	Dir string
}

// OSRunner runs commands with os/exec.
type OSRunner struct{}

// NewOSRunner returns a Runner backed by os/exec.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run implements Runner.
func (r *OSRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	res := Result{Output: string(out), ExitCode: -1}

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	// An ExitError means the process ran to completion with a non-zero
	// status; that is a Result, not a transport failure.
	if _, isExit := err.(*exec.ExitError); isExit {
		return res, nil
	}
	return res, err
}

// RunInteractive implements Runner.
func (r *OSRunner) RunInteractive(ctx context.Context, stdio Stdio, name string, args ...string) (int, error) {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	cmd.Env = stdio.Env
	cmd.Dir = stdio.Dir

	err := cmd.Run()
	if cmd.ProcessState != nil {
		code := cmd.ProcessState.ExitCode()
		if _, isExit := err.(*exec.ExitError); isExit {
			return code, nil
		}
		return code, err
	}
	return -1, err
}

// LookPath implements Runner.
func (r *OSRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// FirstLine returns the first line of s with surrounding space trimmed,
// useful for single-value command output like `gh auth token`.
func FirstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
