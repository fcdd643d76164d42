package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/runner"
)

// Installer is a manager-independent installation path for one tool. The
// provisioner invokes it only when package-manager provisioning cannot
// satisfy the minimum version; which variant backs it is the tool's
// business, not the provisioner's.
type Installer interface {
	// Name identifies the installer in logs and error messages.
	Name() string

	// Install performs the installation. Failures are fatal for the run.
	Install(r runner.Runner) error
}

// ScriptInstaller runs a vendor-provided install script piped from curl.
// The script receives args directing it into the user's private bin dir.
type ScriptInstaller struct {
	Tool string
	URL  string
	Args []string
}

// Name implements Installer.
func (s ScriptInstaller) Name() string {
	return fmt.Sprintf("script(%s)", s.URL)
}

// Install implements Installer.
func (s ScriptInstaller) Install(r runner.Runner) error {
	logger := logging.GetLogger("provision")
	logger.Info().Str("tool", s.Tool).Str("url", s.URL).Msg("Running vendor install script")

	script := fmt.Sprintf("curl -fsSL %s | sh -s", s.URL)
	if len(s.Args) > 0 {
		script += " -- " + strings.Join(s.Args, " ")
	}
	if err := r.RunInteractive("sh", "-c", script); err != nil {
		return errors.Wrapf(err, errors.ErrFallbackInstall,
			"vendor install script for %s failed", s.Tool)
	}
	return nil
}

// CloneBuildInstaller clones a repository to a deterministic path, runs its
// build step, and symlinks the produced binary into the private bin dir.
type CloneBuildInstaller struct {
	Tool string

	// RepoURL is cloned shallowly into CloneDir; an existing clone is
	// fast-forwarded instead so re-runs stay idempotent.
	RepoURL  string
	CloneDir string

	// BuildCmd is run with the clone as working directory.
	BuildCmd string

	// BinaryRel locates the built binary relative to CloneDir.
	BinaryRel string

	// BinDir receives a symlink named after the tool.
	BinDir string
}

// Name implements Installer.
func (c CloneBuildInstaller) Name() string {
	return fmt.Sprintf("clone-build(%s)", c.RepoURL)
}

// Install implements Installer.
func (c CloneBuildInstaller) Install(r runner.Runner) error {
	logger := logging.GetLogger("provision")
	logger.Info().Str("tool", c.Tool).Str("repo", c.RepoURL).Msg("Building tool from source")

	if _, err := os.Stat(c.CloneDir); os.IsNotExist(err) {
		if err := r.RunInteractive("git", "clone", "--depth", "1", c.RepoURL, c.CloneDir); err != nil {
			return errors.Wrapf(err, errors.ErrFallbackInstall,
				"cloning %s failed", c.RepoURL)
		}
	} else {
		if err := r.RunInteractive("git", "-C", c.CloneDir, "pull", "--ff-only"); err != nil {
			return errors.Wrapf(err, errors.ErrFallbackInstall,
				"updating existing clone %s failed", c.CloneDir)
		}
	}

	if err := r.RunInteractive("sh", "-c", fmt.Sprintf("cd %s && %s", c.CloneDir, c.BuildCmd)); err != nil {
		return errors.Wrapf(err, errors.ErrFallbackInstall,
			"building %s failed", c.Tool)
	}

	return c.linkBinary()
}

// linkBinary places the built binary on the user's path under the expected
// command name.
func (c CloneBuildInstaller) linkBinary() error {
	if err := os.MkdirAll(c.BinDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", c.BinDir)
	}

	source := filepath.Join(c.CloneDir, c.BinaryRel)
	link := filepath.Join(c.BinDir, c.Tool)

	if _, err := os.Lstat(link); err == nil {
		if err := os.Remove(link); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to replace %s", link)
		}
	}
	if err := os.Symlink(source, link); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate,
			"failed to link %s -> %s", link, source)
	}
	return nil
}
