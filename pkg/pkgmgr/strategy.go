// Package pkgmgr selects the host's package-manager backend and answers
// read-only metadata questions about it. The chosen Strategy is an
// immutable value threaded through the provisioner and orchestrator.
package pkgmgr

import (
	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/runner"
)

// Kind identifies a package-manager backend.
type Kind string

const (
	KindApt    Kind = "apt"
	KindDnf    Kind = "dnf"
	KindPacman Kind = "pacman"
	KindBrew   Kind = "brew"
)

// Strategy describes the selected backend: how to refresh metadata, how to
// install, which baseline packages the distro needs, and whether commands
// must be escalated.
type Strategy struct {
	Kind        Kind
	DisplayName string

	// Binary is the executable probed for during detection.
	Binary string

	// NeedsSudo reports whether mutating commands require escalation.
	NeedsSudo bool

	// HasSudo records whether sudo was found on this host.
	HasSudo bool

	updateCmd  []string
	installCmd []string
	queryCmd   []string

	// Baseline lists the distro-specific packages installed before any
	// version-gated tool.
	Baseline []string

	// BinaryQuirks maps binaries the distro installs under a different
	// name to the command name tools expect (Debian's fdfind and batcat).
	BinaryQuirks map[string]string
}

// Probe order is a deliberate popularity ranking, not alphabetical.
var strategies = []Strategy{
	{
		Kind:        KindApt,
		DisplayName: "APT (Debian/Ubuntu)",
		Binary:      "apt-get",
		NeedsSudo:   true,
		updateCmd:   []string{"apt-get", "update"},
		installCmd:  []string{"apt-get", "install", "-y"},
		queryCmd:    []string{"apt-cache", "policy"},
		Baseline:    []string{"git", "curl", "zsh", "unzip", "fd-find", "bat", "ripgrep"},
		BinaryQuirks: map[string]string{
			"fdfind": "fd",
			"batcat": "bat",
		},
	},
	{
		Kind:        KindDnf,
		DisplayName: "DNF (Fedora/RHEL)",
		Binary:      "dnf",
		NeedsSudo:   true,
		updateCmd:   []string{"dnf", "makecache"},
		installCmd:  []string{"dnf", "install", "-y"},
		queryCmd:    []string{"dnf", "info"},
		Baseline:    []string{"git", "curl", "zsh", "unzip", "fd-find", "bat", "ripgrep"},
	},
	{
		Kind:        KindPacman,
		DisplayName: "Pacman (Arch)",
		Binary:      "pacman",
		NeedsSudo:   true,
		updateCmd:   []string{"pacman", "-Sy"},
		installCmd:  []string{"pacman", "-S", "--noconfirm"},
		queryCmd:    []string{"pacman", "-Si"},
		Baseline:    []string{"git", "curl", "zsh", "unzip", "fd", "bat", "ripgrep"},
	},
	{
		Kind:        KindBrew,
		DisplayName: "Homebrew",
		Binary:      "brew",
		NeedsSudo:   false,
		updateCmd:   []string{"brew", "update"},
		installCmd:  []string{"brew", "install"},
		queryCmd:    []string{"brew", "info"},
		Baseline:    []string{"git", "curl", "zsh", "unzip", "fd", "bat", "ripgrep"},
	},
}

// Detect probes for package-manager executables in fixed priority order and
// returns the Strategy of the first one found. When the host offers sudo,
// it is pre-authenticated once so later installs do not each prompt; a
// failed pre-auth is ignored since every escalated command can prompt on
// its own.
func Detect(r runner.Runner) (Strategy, error) {
	logger := logging.GetLogger("pkgmgr")

	_, sudoErr := r.LookPath("sudo")
	hasSudo := sudoErr == nil

	for _, s := range strategies {
		if _, err := r.LookPath(s.Binary); err != nil {
			continue
		}

		s.HasSudo = hasSudo
		logger.Info().
			Str("manager", string(s.Kind)).
			Bool("sudo", hasSudo).
			Msg("Package manager detected")

		if s.NeedsSudo && hasSudo {
			if err := r.RunInteractive("sudo", "-v"); err != nil {
				logger.Warn().Err(err).Msg("sudo pre-authentication failed, commands will prompt individually")
			}
		}
		return s, nil
	}

	return Strategy{}, errors.New(errors.ErrUnsupportedEnvironment,
		"no supported package manager found (looked for apt-get, dnf, pacman, brew)")
}

// Update refreshes the manager's package metadata.
func (s Strategy) Update(r runner.Runner) error {
	cmd := s.escalate(s.updateCmd)
	if err := r.RunInteractive(cmd[0], cmd[1:]...); err != nil {
		return errors.Wrapf(err, errors.ErrPackageInstall, "%s metadata update failed", s.Kind)
	}
	return nil
}

// Install installs the given packages through the manager.
func (s Strategy) Install(r runner.Runner, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}
	cmd := s.escalate(append(append([]string{}, s.installCmd...), packages...))
	if err := r.RunInteractive(cmd[0], cmd[1:]...); err != nil {
		return errors.Wrapf(err, errors.ErrPackageInstall, "%s install of %v failed", s.Kind, packages)
	}
	return nil
}

func (s Strategy) escalate(cmd []string) []string {
	if s.NeedsSudo && s.HasSudo {
		return append([]string{"sudo"}, cmd...)
	}
	return cmd
}
