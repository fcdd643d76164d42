package testutil

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dotup/pkg/runner"
)

// FakeRunner is a scripted runner.Runner. Commands are keyed by their full
// command line ("name arg1 arg2 ..."); unscripted captured commands return
// an error the way a missing binary would.
type FakeRunner struct {
	// Responses maps command lines to captured results.
	Responses map[string]runner.Result

	// InteractiveErrs maps command lines to RunInteractive failures.
	// Unscripted interactive commands succeed.
	InteractiveErrs map[string]error

	// InteractiveHooks run when a matching interactive command executes,
	// letting tests simulate a command's side effects (a tool appearing
	// on the path after an install, say).
	InteractiveHooks map[string]func()

	// Binaries maps executable names to the paths LookPath reports.
	Binaries map[string]string

	// Calls and InteractiveCalls record every invocation in order.
	Calls            []string
	InteractiveCalls []string
}

// NewFakeRunner returns an empty scripted runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses:        make(map[string]runner.Result),
		InteractiveErrs:  make(map[string]error),
		InteractiveHooks: make(map[string]func()),
		Binaries:         make(map[string]string),
	}
}

// On scripts a successful captured command printing stdout.
func (f *FakeRunner) On(cmdline, stdout string) *FakeRunner {
	f.Responses[cmdline] = runner.Result{Stdout: stdout}
	return f
}

// OnFail scripts a captured command exiting non-zero.
func (f *FakeRunner) OnFail(cmdline string, exitCode int) *FakeRunner {
	f.Responses[cmdline] = runner.Result{ExitCode: exitCode}
	return f
}

// WithBinary registers an executable for LookPath.
func (f *FakeRunner) WithBinary(name, path string) *FakeRunner {
	f.Binaries[name] = path
	return f
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(name string, args ...string) (runner.Result, error) {
	line := cmdline(name, args)
	f.Calls = append(f.Calls, line)

	if result, ok := f.Responses[line]; ok {
		return result, nil
	}
	return runner.Result{ExitCode: -1}, fmt.Errorf("fake runner: no script for %q", line)
}

// RunInteractive implements runner.Runner.
func (f *FakeRunner) RunInteractive(name string, args ...string) error {
	line := cmdline(name, args)
	f.InteractiveCalls = append(f.InteractiveCalls, line)
	if hook, ok := f.InteractiveHooks[line]; ok {
		hook()
	}
	return f.InteractiveErrs[line]
}

// LookPath implements runner.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	if path, ok := f.Binaries[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("fake runner: executable %q not found", name)
}

// CallCount returns how many captured invocations matched the command line.
func (f *FakeRunner) CallCount(line string) int {
	n := 0
	for _, c := range f.Calls {
		if c == line {
			n++
		}
	}
	return n
}

// InteractiveCallCount returns how many interactive invocations matched.
func (f *FakeRunner) InteractiveCallCount(line string) int {
	n := 0
	for _, c := range f.InteractiveCalls {
		if c == line {
			n++
		}
	}
	return n
}

func cmdline(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
