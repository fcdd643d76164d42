// Package config owns dotup's declarative inputs: the link specs, the tool
// requirements, and the secured directory. Defaults are embedded; users
// override them with a file under their XDG config directory.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotup/pkg/errors"
	"github.com/arthur-debert/dotup/pkg/logging"
	"github.com/arthur-debert/dotup/pkg/paths"
	"github.com/arthur-debert/dotup/pkg/provision"
	"github.com/arthur-debert/dotup/pkg/symlink"
)

// Link declares one symlink as written in the config file: a source path
// relative to the dotfiles root and a target that may start with ~.
type Link struct {
	Source string `toml:"source" yaml:"source"`
	Target string `toml:"target" yaml:"target"`
}

// Fallback declares how a tool is installed when the package manager
// cannot deliver the minimum version.
type Fallback struct {
	// Type selects the installer variant: "script" or "clone-build".
	Type string `toml:"type" yaml:"type"`

	// URL and Args configure the script variant.
	URL  string   `toml:"url" yaml:"url"`
	Args []string `toml:"args" yaml:"args"`

	// Repo, BuildCmd and Binary configure the clone-build variant.
	Repo     string `toml:"repo" yaml:"repo"`
	BuildCmd string `toml:"build_cmd" yaml:"build_cmd"`
	Binary   string `toml:"binary" yaml:"binary"`
}

// Tool declares one version-gated tool requirement.
type Tool struct {
	Command    string   `toml:"command" yaml:"command"`
	Package    string   `toml:"package" yaml:"package"`
	MinVersion string   `toml:"min_version" yaml:"min_version"`
	Fallback   Fallback `toml:"fallback" yaml:"fallback"`
}

// Secure names the directory whose permissions are tightened at the end of
// a run.
type Secure struct {
	Dir string `toml:"dir" yaml:"dir"`
}

// Config is the full declarative input set.
type Config struct {
	Links  []Link `toml:"links" yaml:"links"`
	Tools  []Tool `toml:"tools" yaml:"tools"`
	Secure Secure `toml:"secure" yaml:"secure"`
}

// Load returns the embedded defaults, overlaid section by section with the
// user's config file when one exists. A user file that declares links
// replaces the default links wholesale, same for tools and secure.
func Load(p *paths.Paths) (*Config, error) {
	logger := logging.GetLogger("config")

	cfg := &Config{}
	if err := toml.Unmarshal(defaultConfig, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "embedded default config is invalid")
	}

	for _, candidate := range p.ConfigFilePaths() {
		data, err := os.ReadFile(candidate)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read %s", candidate)
		}

		override := &Config{}
		if strings.HasSuffix(candidate, ".yaml") {
			err = yaml.Unmarshal(data, override)
		} else {
			err = toml.Unmarshal(data, override)
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", candidate)
		}

		logger.Info().Str("path", candidate).Msg("User config loaded")
		cfg.merge(override)
		break
	}

	return cfg, nil
}

func (c *Config) merge(override *Config) {
	if len(override.Links) > 0 {
		c.Links = override.Links
	}
	if len(override.Tools) > 0 {
		c.Tools = override.Tools
	}
	if override.Secure.Dir != "" {
		c.Secure = override.Secure
	}
}

// LinkSpecs resolves the declared links against the dotfiles root and the
// home directory into absolute symlink specs, preserving declaration order.
func (c *Config) LinkSpecs(p *paths.Paths) ([]symlink.LinkSpec, error) {
	specs := make([]symlink.LinkSpec, 0, len(c.Links))
	for _, link := range c.Links {
		target, err := p.ExpandHome(link.Target)
		if err != nil {
			return nil, err
		}
		specs = append(specs, symlink.LinkSpec{
			Source: p.SourcePath(link.Source),
			Target: target,
		})
	}
	return specs, nil
}

// ToolRequirements builds the provisioner's requirements, wiring each
// declared fallback to its installer variant.
func (c *Config) ToolRequirements(p *paths.Paths) ([]provision.ToolRequirement, error) {
	reqs := make([]provision.ToolRequirement, 0, len(c.Tools))
	for _, tool := range c.Tools {
		installer, err := c.buildInstaller(tool, p)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, provision.ToolRequirement{
			Command:    tool.Command,
			Package:    tool.Package,
			MinVersion: tool.MinVersion,
			Fallback:   installer,
		})
	}
	return reqs, nil
}

// SecureDir resolves the secured directory to an absolute path, or empty
// when none is declared.
func (c *Config) SecureDir(p *paths.Paths) (string, error) {
	if c.Secure.Dir == "" {
		return "", nil
	}
	return p.ExpandHome(c.Secure.Dir)
}

func (c *Config) buildInstaller(tool Tool, p *paths.Paths) (provision.Installer, error) {
	switch tool.Fallback.Type {
	case "script":
		args := make([]string, 0, len(tool.Fallback.Args))
		for _, arg := range tool.Fallback.Args {
			expanded, err := p.ExpandHome(arg)
			if err != nil {
				return nil, err
			}
			args = append(args, expanded)
		}
		return provision.ScriptInstaller{
			Tool: tool.Command,
			URL:  tool.Fallback.URL,
			Args: args,
		}, nil
	case "clone-build":
		return provision.CloneBuildInstaller{
			Tool:      tool.Command,
			RepoURL:   tool.Fallback.Repo,
			CloneDir:  filepath.Join(p.DataDir(), paths.DotupDirName, "src", tool.Command),
			BuildCmd:  tool.Fallback.BuildCmd,
			BinaryRel: tool.Fallback.Binary,
			BinDir:    p.LocalBin(),
		}, nil
	case "":
		return nil, nil
	default:
		return nil, errors.Newf(errors.ErrConfigParse,
			"unknown fallback type %q for tool %s", tool.Fallback.Type, tool.Command)
	}
}
