// Package bootstrap sequences a full dotup run: detect the environment,
// install baseline packages, provision version-gated tools, fix platform
// naming quirks, synchronize symlinks, and secure sensitive permissions.
// Each phase is fatal on error except where a component's contract absorbs
// failures; every phase is idempotent or additive, so re-running after a
// failure is always safe.
package bootstrap

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotup/pkg/config"
	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/pkgmgr"
	"github.com/arthur-debert/dotup/pkg/provision"
	"github.com/arthur-debert/dotup/pkg/runner"
	"github.com/arthur-debert/dotup/pkg/symlink"
	"github.com/arthur-debert/dotup/pkg/version"
)

// securedDirMode locks the sensitive directory to its owner.
const securedDirMode = 0700

// Options configures a bootstrap run.
type Options struct {
	Runner runner.Runner
	Paths  *paths.Paths
	Config *config.Config
	DryRun bool
}

// ToolReport records how one tool requirement ended up.
type ToolReport struct {
	Command string
	Outcome provision.Outcome

	// WouldProvision is set on dry runs for tools that a real run would
	// have installed.
	WouldProvision bool
}

// Summary is the full account of a run, consumed by the CLI renderer.
type Summary struct {
	Strategy  pkgmgr.Strategy
	Tools     []ToolReport
	Links     []symlink.LinkResult
	BackupDir string
}

// BackupUsed reports whether any link displaced pre-existing content.
func (s *Summary) BackupUsed() bool {
	for _, link := range s.Links {
		if link.Action == symlink.ActionBackedUp {
			return true
		}
	}
	return false
}

// Bootstrap runs the phases in order against one immutable strategy.
type Bootstrap struct {
	runner runner.Runner
	paths  *paths.Paths
	config *config.Config
	dryRun bool
	logger zerolog.Logger
}

// New creates a Bootstrap from options.
func New(opts Options) *Bootstrap {
	return &Bootstrap{
		runner: opts.Runner,
		paths:  opts.Paths,
		config: opts.Config,
		dryRun: opts.DryRun,
		logger: logging.GetLogger("bootstrap"),
	}
}

// Run executes the whole sequence and returns its summary. The returned
// error names the phase that failed; the process is expected to exit
// non-zero on it and the user to re-invoke after fixing the cause.
func (b *Bootstrap) Run() (*Summary, error) {
	summary := &Summary{}

	strategy, err := pkgmgr.Detect(b.runner)
	if err != nil {
		return nil, err
	}
	summary.Strategy = strategy

	if err := b.installBaseline(strategy); err != nil {
		return nil, err
	}

	if err := b.provisionTools(strategy, summary); err != nil {
		return nil, err
	}

	b.fixBinaryQuirks(strategy)

	if err := b.syncLinks(summary); err != nil {
		return nil, err
	}

	if err := b.securePermissions(); err != nil {
		return nil, err
	}

	b.logger.Info().Msg("Bootstrap complete")
	return summary, nil
}

// installBaseline refreshes metadata and installs the strategy's baseline
// packages. These come first: later tools may depend on them.
func (b *Bootstrap) installBaseline(strategy pkgmgr.Strategy) error {
	if b.dryRun {
		b.logger.Info().
			Strs("packages", strategy.Baseline).
			Msg("Dry run: would install baseline packages")
		return nil
	}

	if err := strategy.Update(b.runner); err != nil {
		return err
	}
	return strategy.Install(b.runner, strategy.Baseline...)
}

func (b *Bootstrap) provisionTools(strategy pkgmgr.Strategy, summary *Summary) error {
	requirements, err := b.config.ToolRequirements(b.paths)
	if err != nil {
		return err
	}

	prov := provision.New(b.runner, strategy, b.paths.LocalBin())
	for _, req := range requirements {
		if b.dryRun {
			summary.Tools = append(summary.Tools, PlanTool(prov, req))
			continue
		}

		outcome, err := prov.Ensure(req)
		if err != nil {
			return err
		}
		summary.Tools = append(summary.Tools, ToolReport{Command: req.Command, Outcome: outcome})
	}
	return nil
}

// PlanTool reports what a real run would do for one requirement without
// mutating anything. Only the local version is consulted, a read-only check.
func PlanTool(prov *provision.Provisioner, req provision.ToolRequirement) ToolReport {
	local := prov.LocalVersion(req.Command)
	if local != "" && version.AtLeast(local, req.MinVersion) {
		return ToolReport{
			Command: req.Command,
			Outcome: provision.Outcome{Kind: provision.Satisfied, Version: local},
		}
	}
	return ToolReport{
		Command:        req.Command,
		Outcome:        provision.Outcome{Version: local},
		WouldProvision: true,
	}
}

// fixBinaryQuirks creates compatibility symlinks for binaries the distro
// installs under a different name (Debian's fdfind for fd). Quirk failures
// are cosmetic and never abort the run.
func (b *Bootstrap) fixBinaryQuirks(strategy pkgmgr.Strategy) {
	installedNames := make([]string, 0, len(strategy.BinaryQuirks))
	for name := range strategy.BinaryQuirks {
		installedNames = append(installedNames, name)
	}
	sort.Strings(installedNames)

	for _, installed := range installedNames {
		expected := strategy.BinaryQuirks[installed]

		installedPath, err := b.runner.LookPath(installed)
		if err != nil {
			continue
		}
		if _, err := b.runner.LookPath(expected); err == nil {
			continue
		}

		link := filepath.Join(b.paths.LocalBin(), expected)
		if b.dryRun {
			b.logger.Info().
				Str("link", link).
				Str("target", installedPath).
				Msg("Dry run: would create compatibility symlink")
			continue
		}

		if err := os.MkdirAll(b.paths.LocalBin(), 0755); err != nil {
			b.logger.Warn().Err(err).Str("link", link).Msg("Skipping compatibility symlink")
			continue
		}
		if _, err := os.Lstat(link); err == nil {
			continue
		}
		if err := os.Symlink(installedPath, link); err != nil {
			b.logger.Warn().Err(err).Str("link", link).Msg("Skipping compatibility symlink")
			continue
		}

		b.logger.Info().
			Str("link", link).
			Str("target", installedPath).
			Msg("Created compatibility symlink")
	}
}

func (b *Bootstrap) syncLinks(summary *Summary) error {
	specs, err := b.config.LinkSpecs(b.paths)
	if err != nil {
		return err
	}

	backupDir := b.paths.NewBackupDir(time.Now())
	summary.BackupDir = backupDir

	syncer := symlink.New(backupDir, b.paths.HomeRelative, b.dryRun)
	summary.Links = syncer.Sync(specs)
	return nil
}

// securePermissions tightens the configured sensitive directory and, when
// the process runs elevated on behalf of another user, hands ownership
// back to them.
func (b *Bootstrap) securePermissions() error {
	dir, err := b.config.SecureDir(b.paths)
	if err != nil {
		return err
	}
	if dir == "" {
		return nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		b.logger.Debug().Str("dir", dir).Msg("Secured directory does not exist, skipping")
		return nil
	}

	if b.dryRun {
		b.logger.Info().Str("dir", dir).Msg("Dry run: would tighten permissions")
		return nil
	}

	if err := os.Chmod(dir, securedDirMode); err != nil {
		return errors.Wrapf(err, errors.ErrPermission, "failed to secure %s", dir)
	}

	if actingUser := paths.ActingUser(); os.Geteuid() == 0 && actingUser != "" && actingUser != "root" {
		if err := b.runner.RunInteractive("chown", "-R", actingUser+":"+actingUser, dir); err != nil {
			b.logger.Warn().Err(err).Str("dir", dir).Msg("Failed to restore ownership")
		}
	}

	b.logger.Info().Str("dir", dir).Msg("Permissions secured")
	return nil
}
