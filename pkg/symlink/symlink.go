// Package symlink materializes a declarative list of symlinks, displacing
// pre-existing content into a per-run backup directory instead of deleting
// it. Every spec is applied independently; one bad link never blocks the
// rest, and re-running with the same inputs is a filesystem no-op.
package symlink

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
)

// LinkSpec declares one desired symlink from Target to Source.
type LinkSpec struct {
	// Source is the absolute path inside the dotfiles tree.
	Source string

	// Target is the absolute path the symlink lives at.
	Target string
}

// Action says what Sync did for one spec.
type Action string

const (
	// ActionUnchanged means the target was already the correct symlink.
	ActionUnchanged Action = "unchanged"

	// ActionLinked means the symlink was created at a free path.
	ActionLinked Action = "linked"

	// ActionRelinked means an existing symlink was replaced. Symlinks
	// carry no unique data, so no backup is taken.
	ActionRelinked Action = "relinked"

	// ActionBackedUp means pre-existing content was moved into the backup
	// set before linking.
	ActionBackedUp Action = "backed-up"

	// ActionSkipped means this spec failed and was left alone.
	ActionSkipped Action = "skipped"
)

// LinkResult reports the outcome for one spec.
type LinkResult struct {
	Spec       LinkSpec
	Action     Action
	BackupPath string
	Err        error
}

// Syncer applies LinkSpecs against the real filesystem.
type Syncer struct {
	// backupDir is the per-run backup directory. It is created lazily on
	// the first displacement, so an all-clean run leaves no trace.
	backupDir string

	// backupKey namespaces displaced entries inside the backup directory
	// so two targets sharing a basename cannot collide.
	backupKey func(target string) string

	dryRun bool
	logger zerolog.Logger
}

// New creates a Syncer writing displaced content under backupDir, keyed by
// backupKey (typically the target's home-relative path).
func New(backupDir string, backupKey func(string) string, dryRun bool) *Syncer {
	if backupKey == nil {
		backupKey = filepath.Base
	}
	return &Syncer{
		backupDir: backupDir,
		backupKey: backupKey,
		dryRun:    dryRun,
		logger:    logging.GetLogger("symlink"),
	}
}

// BackupDir returns the per-run backup directory path.
func (s *Syncer) BackupDir() string {
	return s.backupDir
}

// Sync applies each spec independently and reports per-spec results. It
// never returns an error itself; failures surface as skipped results.
func (s *Syncer) Sync(links []LinkSpec) []LinkResult {
	results := make([]LinkResult, 0, len(links))
	for _, spec := range links {
		result := s.apply(spec)

		event := s.logger.Info()
		if result.Err != nil {
			event = s.logger.Warn().Err(result.Err)
		}
		event.
			Str("target", spec.Target).
			Str("source", spec.Source).
			Str("action", string(result.Action)).
			Msg("Link processed")

		results = append(results, result)
	}
	return results
}

func (s *Syncer) apply(spec LinkSpec) LinkResult {
	result := LinkResult{Spec: spec}

	info, lstatErr := os.Lstat(spec.Target)
	exists := lstatErr == nil
	isLink := exists && info.Mode()&os.ModeSymlink != 0

	// A correctly pointing symlink is a true no-op: no backup, no write.
	if isLink {
		if current, err := os.Readlink(spec.Target); err == nil && current == spec.Source {
			result.Action = ActionUnchanged
			return result
		}
	}

	switch {
	case !exists:
		result.Action = ActionLinked
	case isLink:
		result.Action = ActionRelinked
	default:
		result.Action = ActionBackedUp
		result.BackupPath = filepath.Join(s.backupDir, s.backupKey(spec.Target))
	}

	if s.dryRun {
		return result
	}

	if err := os.MkdirAll(filepath.Dir(spec.Target), 0755); err != nil {
		result.Action = ActionSkipped
		result.Err = errors.Wrapf(err, errors.ErrDirCreate,
			"failed to create parent directory for %s", spec.Target)
		return result
	}

	switch result.Action {
	case ActionBackedUp:
		if err := s.displace(spec.Target, result.BackupPath); err != nil {
			result.Action = ActionSkipped
			result.Err = err
			return result
		}
	case ActionRelinked:
		if err := os.Remove(spec.Target); err != nil {
			result.Action = ActionSkipped
			result.Err = errors.Wrapf(err, errors.ErrSymlinkCreate,
				"failed to remove existing symlink %s", spec.Target)
			return result
		}
	}

	if err := os.Symlink(spec.Source, spec.Target); err != nil {
		result.Action = ActionSkipped
		result.Err = errors.Wrapf(err, errors.ErrSymlinkCreate,
			"failed to link %s -> %s", spec.Target, spec.Source)
		return result
	}
	return result
}

// displace moves pre-existing content whole into the backup set.
func (s *Syncer) displace(target, backupPath string) error {
	if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkConflict,
			"failed to create backup location for %s", target)
	}
	if err := os.Rename(target, backupPath); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkConflict,
			"failed to move %s into backup set", target)
	}

	s.logger.Info().
		Str("target", target).
		Str("backup", backupPath).
		Msg("Displaced pre-existing content into backup set")
	return nil
}
