// Package provision guarantees that required command-line tools are present
// at a minimum version. It prefers the system package manager and falls back
// to tool-specific installers when the repositories cannot satisfy the
// minimum.
package provision

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/pkgmgr"
	"github.com/arthur-debert/dotup/pkg/runner"
	"github.com/arthur-debert/dotup/pkg/version"
)

// ToolRequirement declares one tool the environment must provide.
type ToolRequirement struct {
	// Command is the executable name checked on the search path.
	Command string

	// Package is the name the package manager knows the tool by.
	Package string

	// MinVersion is the lowest acceptable version.
	MinVersion string

	// Fallback installs the tool when the package manager cannot satisfy
	// MinVersion.
	Fallback Installer
}

// OutcomeKind says which step of the cascade satisfied a requirement.
type OutcomeKind string

const (
	// Satisfied means the locally installed tool already met the minimum.
	Satisfied OutcomeKind = "satisfied"

	// Installed means the package manager provided an acceptable version.
	Installed OutcomeKind = "installed"

	// FallbackUsed means the tool's own installer had to step in.
	FallbackUsed OutcomeKind = "fallback"
)

// Outcome reports how a requirement was met.
type Outcome struct {
	Kind    OutcomeKind
	Version string
}

// Provisioner runs the ensure cascade against one detected strategy.
type Provisioner struct {
	runner   runner.Runner
	strategy pkgmgr.Strategy
	localBin string
	logger   zerolog.Logger
}

// New creates a Provisioner. localBin is the user's private executable
// directory; a binary there is authoritative over any same-named binary
// elsewhere on the search path.
func New(r runner.Runner, strategy pkgmgr.Strategy, localBin string) *Provisioner {
	return &Provisioner{
		runner:   r,
		strategy: strategy,
		localBin: localBin,
		logger:   logging.GetLogger("provision"),
	}
}

// Ensure walks the cascade for one requirement: local version check, then
// package-manager candidate and install with re-verification, then the
// declared fallback. Only a failing fallback is fatal.
func (p *Provisioner) Ensure(req ToolRequirement) (Outcome, error) {
	local := p.LocalVersion(req.Command)
	if local != "" && version.AtLeast(local, req.MinVersion) {
		p.logger.Info().
			Str("tool", req.Command).
			Str("version", local).
			Msg("Tool already satisfies minimum version")
		return Outcome{Kind: Satisfied, Version: local}, nil
	}

	p.logger.Info().
		Str("tool", req.Command).
		Str("local", local).
		Str("minimum", req.MinVersion).
		Msg("Tool missing or below minimum version")

	if outcome, ok := p.tryManagerInstall(req); ok {
		return outcome, nil
	}

	return p.runFallback(req)
}

// tryManagerInstall attempts step two of the cascade. It reports ok=false
// whenever control should fall through to the fallback installer.
func (p *Provisioner) tryManagerInstall(req ToolRequirement) (Outcome, bool) {
	candidate := p.strategy.ResolveCandidate(p.runner, req.Package)
	if candidate == "" || !version.AtLeast(candidate, req.MinVersion) {
		p.logger.Info().
			Str("tool", req.Command).
			Str("candidate", candidate).
			Str("minimum", req.MinVersion).
			Msg("No usable package-manager candidate")
		return Outcome{}, false
	}

	if err := p.strategy.Install(p.runner, req.Package); err != nil {
		p.logger.Warn().
			Err(err).
			Str("tool", req.Command).
			Msg("Package manager install failed, using fallback")
		return Outcome{}, false
	}

	// The manager promised the candidate version; verify it delivered.
	// If not, the repository is untrusted for this tool from here on and
	// the fallback takes over. The manager's copy is left in place.
	installed := p.LocalVersion(req.Command)
	if installed == "" || !version.AtLeast(installed, req.MinVersion) {
		p.logger.Warn().
			Str("tool", req.Command).
			Str("candidate", candidate).
			Str("installed", installed).
			Msg("Installed version does not meet the promised minimum, using fallback")
		return Outcome{}, false
	}

	p.logger.Info().
		Str("tool", req.Command).
		Str("version", installed).
		Msg("Tool installed via package manager")
	return Outcome{Kind: Installed, Version: installed}, true
}

func (p *Provisioner) runFallback(req ToolRequirement) (Outcome, error) {
	if req.Fallback == nil {
		return Outcome{}, errors.Newf(errors.ErrFallbackInstall,
			"no fallback installer declared for %s", req.Command)
	}

	p.logger.Info().
		Str("tool", req.Command).
		Str("installer", req.Fallback.Name()).
		Msg("Running fallback installer")

	if err := req.Fallback.Install(p.runner); err != nil {
		return Outcome{}, errors.Wrapf(err, errors.ErrFallbackInstall,
			"fallback install of %s failed", req.Command)
	}

	installed := p.LocalVersion(req.Command)
	p.logger.Info().
		Str("tool", req.Command).
		Str("version", installed).
		Msg("Tool installed via fallback")
	return Outcome{Kind: FallbackUsed, Version: installed}, nil
}

// LocalVersion reports the version of the tool as currently installed, or
// empty when the tool is absent. The private bin directory takes priority
// over the search path so a stale system copy cannot shadow a user-local
// one.
func (p *Provisioner) LocalVersion(command string) string {
	path := filepath.Join(p.localBin, command)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		found, err := p.runner.LookPath(command)
		if err != nil {
			return ""
		}
		path = found
	}

	result, err := p.runner.Run(path, "--version")
	if err != nil || !result.Success() {
		return ""
	}

	output := result.Stdout
	if output == "" {
		output = result.Stderr
	}
	return ParseToolVersion(command, output)
}
