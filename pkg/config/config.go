// Package config holds the explicit configuration struct threaded through
// every component. Nothing below the CLI reads the process environment
// directly; precedence is defaults, then an optional devc.toml, then
// DEVC_* environment variables, then flags applied by the CLI.
package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/radikalliberal/devcontainer/pkg/errors"
)

// DefaultProject is the project name used when none is supplied.
const DefaultProject = "default"

// ConfigFileName is the optional per-project configuration file, looked up
// in the working directory and then in the user config directory.
const ConfigFileName = "devc.toml"

// Config is the full runtime configuration.
type Config struct {
	// Home is the session home directory.
	Home string `toml:"home" envconfig:"HOME"`

	// Workspace is the host directory mounted into the session. Defaults
	// to <Home>/dev.
	Workspace string `toml:"workspace" envconfig:"WORKSPACE"`

	// Project namespaces the container and its identity state.
	Project string `toml:"project" envconfig:"PROJECT"`

	// SkipKeyValidation bypasses the remote key-registration probe.
	SkipKeyValidation bool `toml:"skip_key_validation" envconfig:"SKIP_KEY_VALIDATION"`

	// SourceRepo is the environment's build-source repository.
	SourceRepo string `toml:"source_repo" envconfig:"SOURCE_REPO"`

	// DotfilesRepo is the personalization bundle applied in each session.
	DotfilesRepo string `toml:"dotfiles_repo" envconfig:"DOTFILES_REPO"`

	// Image is the environment image name.
	Image string `toml:"image" envconfig:"IMAGE"`

	// IdentityHost is the host the credential key is validated against.
	IdentityHost string `toml:"identity_host" envconfig:"IDENTITY_HOST"`

	// SentinelHost is probed to decide which network the operator is on.
	SentinelHost string `toml:"sentinel_host" envconfig:"SENTINEL_HOST"`

	// Git identity. WorkEmail is used when the sentinel host is reachable,
	// PersonalEmail otherwise.
	GitName       string `toml:"git_name" envconfig:"GIT_NAME"`
	WorkEmail     string `toml:"work_email" envconfig:"WORK_EMAIL"`
	PersonalEmail string `toml:"personal_email" envconfig:"PERSONAL_EMAIL"`

	// KeySourceDir is the read-only mounted credential source. Defaults to
	// <Home>/.ssh-host.
	KeySourceDir string `toml:"key_source_dir" envconfig:"KEY_SOURCE_DIR"`

	// KeyDir is the writable promoted-key directory. Defaults to
	// <Home>/.ssh.
	KeyDir string `toml:"key_dir" envconfig:"KEY_DIR"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/root"
	}
	return Config{
		Home:         home,
		Project:      DefaultProject,
		SourceRepo:   "https://github.com/radikalliberal/devcontainer.git",
		DotfilesRepo: "https://github.com/radikalliberal/dotfiles.git",
		Image:        "devcontainer:latest",
		IdentityHost: "github.com",
		SentinelHost: "intranet.corp.example.com",
		GitName:      "Jan Schulte",
	}
}

// Load builds the effective configuration: defaults, overlaid by an optional
// devc.toml, overlaid by DEVC_* environment variables. Derived paths are
// filled afterwards so overrides of Home propagate.
func Load() (Config, error) {
	cfg := Defaults()

	if path, ok := findConfigFile(cfg.Home); ok {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if err := envconfig.Process("devc", &cfg); err != nil {
		return cfg, errors.Wrap(err, errors.ErrConfigLoad, "invalid DEVC_* environment variable")
	}

	cfg.fillDerived()
	return cfg, nil
}

// fillDerived computes paths that default relative to Home.
func (c *Config) fillDerived() {
	if c.Workspace == "" {
		c.Workspace = filepath.Join(c.Home, "dev")
	}
	if c.KeySourceDir == "" {
		c.KeySourceDir = filepath.Join(c.Home, ".ssh-host")
	}
	if c.KeyDir == "" {
		c.KeyDir = filepath.Join(c.Home, ".ssh")
	}
	if c.Project == "" {
		c.Project = DefaultProject
	}
}

func findConfigFile(home string) (string, bool) {
	candidates := []string{
		ConfigFileName,
		filepath.Join(home, ".config", "devc", ConfigFileName),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "cannot parse %s", path)
	}
	return nil
}
