// Package paths provides centralized path handling for dotup.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/dotup/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the primary environment variable for dotfiles location
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvActingUser names the user on whose behalf dotup runs when the
	// process itself is elevated (sudo sets it automatically)
	EnvActingUser = "SUDO_USER"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// DefaultDotfilesDir is the default directory name for dotfiles
	DefaultDotfilesDir = "dotfiles"

	// DotupDirName is the directory name for dotup-specific files
	DotupDirName = "dotup"

	// ConfigFileName is the base name of the optional user config file
	ConfigFileName = "dotup"

	// BackupDirPrefix is the prefix of per-run backup directories
	BackupDirPrefix = ".dotup-backup-"

	// backupTimestampLayout keys one backup directory per run
	backupTimestampLayout = "20060102-150405"
)

// Paths provides centralized path management for dotup
type Paths struct {
	home         string
	dotfilesRoot string
	xdgConfig    string
	xdgData      string
	xdgCache     string
	xdgState     string
	localBin     string
}

// New creates a new Paths instance. If dotfilesRoot is empty it is resolved
// from DOTFILES_ROOT, defaulting to ~/dotfiles.
func New(dotfilesRoot string) (*Paths, error) {
	home, err := GetHomeDirectory()
	if err != nil {
		return nil, err
	}

	p := &Paths{home: home}

	if dotfilesRoot == "" {
		dotfilesRoot = os.Getenv(EnvDotfilesRoot)
	}
	if dotfilesRoot == "" {
		dotfilesRoot = filepath.Join(home, DefaultDotfilesDir)
	}
	expanded, err := p.ExpandHome(dotfilesRoot)
	if err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for dotfiles root")
	}
	p.dotfilesRoot = absRoot

	p.setupXDGDirs()
	p.localBin = filepath.Join(home, ".local", "bin")

	return p, nil
}

// setupXDGDirs initializes the four XDG base directories. Environment
// variables are read live so a value exported mid-process wins; the xdg
// package supplies spec-compliant defaults for the unset ones.
func (p *Paths) setupXDGDirs() {
	p.xdgConfig = envOr("XDG_CONFIG_HOME", xdg.ConfigHome)
	p.xdgData = envOr("XDG_DATA_HOME", xdg.DataHome)
	p.xdgCache = envOr("XDG_CACHE_HOME", xdg.CacheHome)
	p.xdgState = envOr("XDG_STATE_HOME", filepath.Join(p.home, ".local", "state"))
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// Home returns the user's home directory
func (p *Paths) Home() string {
	return p.home
}

// DotfilesRoot returns the root directory of the dotfiles tree
func (p *Paths) DotfilesRoot() string {
	return p.dotfilesRoot
}

// ConfigDir returns the XDG config directory
func (p *Paths) ConfigDir() string {
	return p.xdgConfig
}

// DataDir returns the XDG data directory
func (p *Paths) DataDir() string {
	return p.xdgData
}

// CacheDir returns the XDG cache directory
func (p *Paths) CacheDir() string {
	return p.xdgCache
}

// StateDir returns the XDG state directory
func (p *Paths) StateDir() string {
	return p.xdgState
}

// LocalBin returns the user's private executable directory. Fallback
// installers place binaries and compatibility symlinks here.
func (p *Paths) LocalBin() string {
	return p.localBin
}

// ConfigFilePaths returns the candidate user config file paths in lookup
// order. The first one that exists wins.
func (p *Paths) ConfigFilePaths() []string {
	dir := filepath.Join(p.xdgConfig, DotupDirName)
	return []string{
		filepath.Join(dir, ConfigFileName+".toml"),
		filepath.Join(dir, ConfigFileName+".yaml"),
	}
}

// NewBackupDir returns the path of a fresh per-run backup directory under
// the home directory, keyed by the given run time. The directory is not
// created; callers create it lazily on first displacement.
func (p *Paths) NewBackupDir(runTime time.Time) string {
	return filepath.Join(p.home, BackupDirPrefix+runTime.Format(backupTimestampLayout))
}

// SourcePath resolves a dotfiles-relative source path to an absolute path
// inside the dotfiles tree.
func (p *Paths) SourcePath(rel string) string {
	return filepath.Join(p.dotfilesRoot, rel)
}

// ExpandHome expands a leading ~ to the user's home directory.
func (p *Paths) ExpandHome(path string) (string, error) {
	if path == "~" {
		return p.home, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(p.home, path[2:]), nil
	}
	return path, nil
}

// HomeRelative returns path relative to the home directory when it is under
// it, else the path with separators flattened. Backup entries are keyed by
// this so two targets sharing a basename cannot collide.
func (p *Paths) HomeRelative(path string) string {
	if rel, err := filepath.Rel(p.home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return strings.TrimPrefix(strings.ReplaceAll(path, string(filepath.Separator), "_"), "_")
}

// ActingUser returns the user on whose behalf the process runs: SUDO_USER
// when elevated, else the current user from the environment.
func ActingUser() string {
	if u := os.Getenv(EnvActingUser); u != "" {
		return u
	}
	return os.Getenv("USER")
}

// GetHomeDirectory returns the user's home directory.
// It first tries os.UserHomeDir(), then falls back to the HOME environment
// variable. If both fail, it returns an error rather than using dangerous
// defaults.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}

	homeDir = os.Getenv(EnvHome)
	if homeDir != "" {
		return homeDir, nil
	}

	return "", errors.New(errors.ErrFileAccess, "unable to determine home directory: neither os.UserHomeDir() nor HOME environment variable are available")
}

// String returns a human-readable summary, useful in debug logs.
func (p *Paths) String() string {
	return fmt.Sprintf("dotfiles=%s home=%s localBin=%s", p.dotfilesRoot, p.home, p.localBin)
}
