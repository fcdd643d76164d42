// Package runner abstracts external command execution so that components
// exercising package managers and installers can be tested against a
// scripted fake instead of the real binaries.
package runner

import (
	"bytes"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/dotup/pkg/logging"
)

// Result holds the outcome of a finished external command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the command exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// FirstLine returns the first line of stdout, trimmed.
func (r Result) FirstLine() string {
	line, _, _ := strings.Cut(r.Stdout, "\n")
	return strings.TrimSpace(line)
}

// Runner executes external commands. Run captures output for parsing;
// RunInteractive inherits the process stdio so package managers can prompt
// and stream progress.
type Runner interface {
	Run(name string, args ...string) (Result, error)
	RunInteractive(name string, args ...string) error
	LookPath(name string) (string, error)
}

// OSRunner is the production Runner backed by os/exec.
type OSRunner struct{}

// NewOS returns a Runner that executes real commands.
func NewOS() *OSRunner {
	return &OSRunner{}
}

// Run executes the command with captured output. The locale is forced to C
// because metadata parsers depend on stable field labels and positions.
func (r *OSRunner) Run(name string, args ...string) (Result, error) {
	logging.LogCommand(name, args)

	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C", "LANG=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// A non-zero exit is data, not a transport failure.
			return result, nil
		}
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}

// RunInteractive executes the command attached to the caller's terminal.
func (r *OSRunner) RunInteractive(name string, args ...string) error {
	logging.LogCommand(name, args)

	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// LookPath reports the path of an executable on the search path.
func (r *OSRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
