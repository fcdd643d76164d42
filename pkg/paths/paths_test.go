package paths

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPaths(t *testing.T) *Paths {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOTFILES_ROOT", "")
	p, err := New("")
	require.NoError(t, err)
	return p
}

func TestNewDefaultsDotfilesRootUnderHome(t *testing.T) {
	p := newTestPaths(t)
	assert.Equal(t, filepath.Join(p.Home(), "dotfiles"), p.DotfilesRoot())
}

func TestNewHonorsDotfilesRootEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOTFILES_ROOT", "~/src/dotfiles")

	p, err := New("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "src", "dotfiles"), p.DotfilesRoot())
}

func TestNewExplicitRootWinsOverEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOTFILES_ROOT", "/elsewhere")

	p, err := New("~/my-dots")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "my-dots"), p.DotfilesRoot())
}

func TestExpandHome(t *testing.T) {
	p := newTestPaths(t)

	expanded, err := p.ExpandHome("~/.config/nvim")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Home(), ".config", "nvim"), expanded)

	expanded, err = p.ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, p.Home(), expanded)

	expanded, err = p.ExpandHome("/absolute/path")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path", expanded)
}

func TestNewBackupDirIsTimestamped(t *testing.T) {
	p := newTestPaths(t)

	runTime := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	dir := p.NewBackupDir(runTime)

	assert.Equal(t, filepath.Join(p.Home(), ".dotup-backup-20240315-103045"), dir)
}

func TestSourcePath(t *testing.T) {
	p := newTestPaths(t)
	assert.Equal(t, filepath.Join(p.DotfilesRoot(), "zsh", "zshrc"), p.SourcePath("zsh/zshrc"))
}

func TestHomeRelative(t *testing.T) {
	p := newTestPaths(t)

	assert.Equal(t, ".vimrc", p.HomeRelative(filepath.Join(p.Home(), ".vimrc")))
	assert.Equal(t,
		filepath.Join(".config", "nvim"),
		p.HomeRelative(filepath.Join(p.Home(), ".config", "nvim")))

	// Outside-home paths are flattened, never dot-dot relative.
	outside := p.HomeRelative("/etc/profile")
	assert.False(t, strings.Contains(outside, ".."))
	assert.Equal(t, "etc_profile", outside)
}

func TestActingUserPrefersSudoUser(t *testing.T) {
	t.Setenv("USER", "root")
	t.Setenv("SUDO_USER", "alice")
	assert.Equal(t, "alice", ActingUser())

	t.Setenv("SUDO_USER", "")
	assert.Equal(t, "root", ActingUser())
}

func TestConfigFilePathsOrder(t *testing.T) {
	p := newTestPaths(t)

	candidates := p.ConfigFilePaths()
	require.Len(t, candidates, 2)
	assert.True(t, strings.HasSuffix(candidates[0], filepath.Join("dotup", "dotup.toml")))
	assert.True(t, strings.HasSuffix(candidates[1], filepath.Join("dotup", "dotup.yaml")))
}
