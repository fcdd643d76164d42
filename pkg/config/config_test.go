package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/provision"
	"github.com/arthur-debert/dotup/pkg/testutil"
)

func newTestPaths(t *testing.T) *paths.Paths {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOTFILES_ROOT", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	p, err := paths.New("")
	require.NoError(t, err)
	return p
}

func TestLoadDefaults(t *testing.T) {
	p := newTestPaths(t)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Links)
	assert.NotEmpty(t, cfg.Tools)
	assert.Equal(t, "~/.ssh", cfg.Secure.Dir)

	commands := make([]string, 0, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		commands = append(commands, tool.Command)
	}
	assert.Contains(t, commands, "fzf")
	assert.Contains(t, commands, "starship")
}

func TestLoadTomlOverrideReplacesSections(t *testing.T) {
	p := newTestPaths(t)

	override := `
[[links]]
source = "tmux/tmux.conf"
target = "~/.tmux.conf"
`
	testutil.CreateFile(t, filepath.Join(p.ConfigDir(), "dotup"), "dotup.toml", override)

	cfg, err := Load(p)
	require.NoError(t, err)

	// Declared links replace the defaults wholesale...
	require.Len(t, cfg.Links, 1)
	assert.Equal(t, "tmux/tmux.conf", cfg.Links[0].Source)
	// ...while undeclared sections keep their defaults.
	assert.NotEmpty(t, cfg.Tools)
	assert.Equal(t, "~/.ssh", cfg.Secure.Dir)
}

func TestLoadYamlOverride(t *testing.T) {
	p := newTestPaths(t)

	override := `
secure:
  dir: ~/.gnupg
`
	testutil.CreateFile(t, filepath.Join(p.ConfigDir(), "dotup"), "dotup.yaml", override)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "~/.gnupg", cfg.Secure.Dir)
}

func TestLoadTomlWinsOverYaml(t *testing.T) {
	p := newTestPaths(t)

	testutil.CreateFile(t, filepath.Join(p.ConfigDir(), "dotup"), "dotup.toml", `[secure]
dir = "~/.ssh"`)
	testutil.CreateFile(t, filepath.Join(p.ConfigDir(), "dotup"), "dotup.yaml", `secure:
  dir: ~/.gnupg`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "~/.ssh", cfg.Secure.Dir)
}

func TestLoadRejectsInvalidOverride(t *testing.T) {
	p := newTestPaths(t)
	testutil.CreateFile(t, filepath.Join(p.ConfigDir(), "dotup"), "dotup.toml", "not [valid toml")

	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoadUnreadableOverrideFails(t *testing.T) {
	p := newTestPaths(t)
	// A directory at the override path is a read failure, not a missing
	// file, and must not be silently skipped.
	testutil.CreateDir(t, filepath.Join(p.ConfigDir(), "dotup"), "dotup.toml")

	_, err := Load(p)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigLoad))
}

func TestLinkSpecsResolvePaths(t *testing.T) {
	p := newTestPaths(t)
	cfg := &Config{Links: []Link{{Source: "zsh/zshrc", Target: "~/.zshrc"}}}

	specs, err := cfg.LinkSpecs(p)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, filepath.Join(p.DotfilesRoot(), "zsh", "zshrc"), specs[0].Source)
	assert.Equal(t, filepath.Join(p.Home(), ".zshrc"), specs[0].Target)
}

func TestToolRequirementsWireInstallers(t *testing.T) {
	p := newTestPaths(t)

	cfg, err := Load(p)
	require.NoError(t, err)

	reqs, err := cfg.ToolRequirements(p)
	require.NoError(t, err)
	require.NotEmpty(t, reqs)

	byCommand := make(map[string]provision.ToolRequirement)
	for _, req := range reqs {
		byCommand[req.Command] = req
	}

	fzf := byCommand["fzf"]
	require.IsType(t, provision.CloneBuildInstaller{}, fzf.Fallback)
	cloneBuild := fzf.Fallback.(provision.CloneBuildInstaller)
	assert.Equal(t, p.LocalBin(), cloneBuild.BinDir)
	assert.Contains(t, cloneBuild.CloneDir, filepath.Join("dotup", "src", "fzf"))

	starship := byCommand["starship"]
	require.IsType(t, provision.ScriptInstaller{}, starship.Fallback)
	script := starship.Fallback.(provision.ScriptInstaller)
	assert.Contains(t, script.Args, p.LocalBin(), "script args must expand ~")
}

func TestToolRequirementsRejectUnknownFallbackType(t *testing.T) {
	p := newTestPaths(t)
	cfg := &Config{Tools: []Tool{{
		Command:  "mystery",
		Fallback: Fallback{Type: "carrier-pigeon"},
	}}}

	_, err := cfg.ToolRequirements(p)
	assert.Error(t, err)
}

func TestSecureDir(t *testing.T) {
	p := newTestPaths(t)

	cfg := &Config{Secure: Secure{Dir: "~/.ssh"}}
	dir, err := cfg.SecureDir(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Home(), ".ssh"), dir)

	empty := &Config{}
	dir, err = empty.SecureDir(p)
	require.NoError(t, err)
	assert.Equal(t, "", dir)
}

func TestDefaultConfigContent(t *testing.T) {
	assert.Contains(t, DefaultConfigContent(), "[[links]]")
}
