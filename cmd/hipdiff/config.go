package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional defaults file. Every field is a pointer so
// an absent key stays distinguishable from a zero value; fields that are
// present supply defaults that explicit command-line flags override.
type fileConfig struct {
	Width      *int    `yaml:"width"`
	Color      *string `yaml:"color"`
	Detailed   *bool   `yaml:"detailed"`
	Checksum   *bool   `yaml:"checksum"`
	Offsets    *bool   `yaml:"offsets"`
	Pluses     *bool   `yaml:"pluses"`
	AssetsOnly *bool   `yaml:"assets_only"`
}

// configPath resolves $XDG_CONFIG_HOME/hipdiff/config.yaml, falling back
// to ~/.config/hipdiff/config.yaml.
func configPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hipdiff", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hipdiff", "config.yaml")
}

// loadFileConfig parses the defaults file at path. A missing file is not
// an error, just no defaults.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &fileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfigDefaults folds the defaults file into the diff flags. Flags
// the user set on the command line keep their values.
func applyConfigDefaults(flags *pflag.FlagSet) error {
	path := configPath()
	if path == "" {
		return nil
	}
	cfg, err := loadFileConfig(path)
	if err != nil || cfg == nil {
		return err
	}

	if cfg.Width != nil && !flags.Changed("width") {
		columnWidth = *cfg.Width
	}
	if cfg.Color != nil && !flags.Changed("color") {
		if err := color.Set(*cfg.Color); err != nil {
			return fmt.Errorf("bad color in %s: %w", path, err)
		}
	}
	if cfg.Detailed != nil && !flags.Changed("detailed") {
		detailed = *cfg.Detailed
	}
	if cfg.Checksum != nil && !flags.Changed("checksum") {
		checksumTrust = *cfg.Checksum
	}
	if cfg.Offsets != nil && !flags.Changed("offsets") {
		diffOffsets = *cfg.Offsets
	}
	if cfg.Pluses != nil && !flags.Changed("pluses") {
		diffPluses = *cfg.Pluses
	}
	if cfg.AssetsOnly != nil && !flags.Changed("assets-only") {
		assetsOnly = *cfg.AssetsOnly
	}
	return nil
}
