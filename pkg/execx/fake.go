package execx

import (
	"context"
	"fmt"
	"strings"
)

// FakeRunner is a scriptable Runner for tests. Responses are keyed by the
// joined "name args..." string; unmatched commands fall back to Default.
type FakeRunner struct {
	// Responses maps a full command line to its canned result.
	Responses map[string]FakeResponse
	// Partials maps a command-line substring to its canned result, for
	// commands whose argv contains unpredictable paths. Exact responses
	// win over partial ones.
	Partials map[string]FakeResponse
	// Default is used when no response matches.
	Default FakeResponse
	// Missing lists binary names LookPath should report as absent.
	Missing []string
	// Calls records every command line passed to Run or RunInteractive.
	Calls []string
	// Stdios records the streams passed to each RunInteractive call.
	Stdios []Stdio
	// Hook, when set, is called with each command line before its response
	// is resolved. Tests use it to simulate a command's side effects.
	Hook func(cmdline string)
}

// FakeResponse is one canned invocation outcome.
type FakeResponse struct {
	Output   string
	ExitCode int
	Err      error
}

// NewFakeRunner returns a FakeRunner whose unmatched commands succeed with
// empty output.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]FakeResponse),
		Default:   FakeResponse{ExitCode: 0},
	}
}

// Respond registers a canned response for the exact command line.
func (f *FakeRunner) Respond(cmdline string, resp FakeResponse) {
	f.Responses[cmdline] = resp
}

// RespondPartial registers a canned response for any command line
// containing the given substring.
func (f *FakeRunner) RespondPartial(substr string, resp FakeResponse) {
	if f.Partials == nil {
		f.Partials = make(map[string]FakeResponse)
	}
	f.Partials[substr] = resp
}

func (f *FakeRunner) lookup(name string, args []string) FakeResponse {
	key := name
	if len(args) > 0 {
		key = name + " " + strings.Join(args, " ")
	}
	if resp, ok := f.Responses[key]; ok {
		return resp
	}
	for substr, resp := range f.Partials {
		if strings.Contains(key, substr) {
			return resp
		}
	}
	return f.Default
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (Result, error) {
	cmdline := commandLine(name, args)
	f.Calls = append(f.Calls, cmdline)
	if f.Hook != nil {
		f.Hook(cmdline)
	}
	resp := f.lookup(name, args)
	return Result{Output: resp.Output, ExitCode: resp.ExitCode}, resp.Err
}

// RunInteractive implements Runner.
func (f *FakeRunner) RunInteractive(_ context.Context, stdio Stdio, name string, args ...string) (int, error) {
	cmdline := commandLine(name, args)
	f.Calls = append(f.Calls, cmdline)
	f.Stdios = append(f.Stdios, stdio)
	if f.Hook != nil {
		f.Hook(cmdline)
	}
	resp := f.lookup(name, args)
	return resp.ExitCode, resp.Err
}

// LookPath implements Runner.
func (f *FakeRunner) LookPath(name string) bool {
	for _, m := range f.Missing {
		if m == name {
			return false
		}
	}
	return true
}

// CalledWith reports whether any recorded call contains the given substring.
func (f *FakeRunner) CalledWith(substr string) bool {
	for _, c := range f.Calls {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, strings.Join(args, " "))
}
