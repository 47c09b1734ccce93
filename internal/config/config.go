// internal/config/config.go
//
// Configuration for trunkrel. A project keeps a .trunkrel.yml at the
// repository root; a missing file means full defaults, and any key that
// is present overrides only itself.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trunkrel/trunkrel/internal/commit"
)

// DefaultFile is the config filename looked up at the repository root.
const DefaultFile = ".trunkrel.yml"

// ChangelogConfig controls the changelog file on disk.
type ChangelogConfig struct {
	File string `yaml:"file,omitempty"`
}

// HooksConfig lists lifecycle shell commands.
type HooksConfig struct {
	PreRelease  []string `yaml:"pre_release,omitempty"`
	PostTag     []string `yaml:"post_tag,omitempty"`
	PostRelease []string `yaml:"post_release,omitempty"`
	OnFailure   []string `yaml:"on_failure,omitempty"`
}

// Config is the resolved release configuration consumed by the core.
// It is immutable once loaded.
type Config struct {
	Branches           []string          `yaml:"branches"`
	TagPrefix          string            `yaml:"tag_prefix"`
	CommitPattern      string            `yaml:"commit_pattern"`
	BreakingSection    string            `yaml:"breaking_section"`
	MiscSection        string            `yaml:"misc_section"`
	Types              []commit.TypeRule `yaml:"types"`
	Changelog          ChangelogConfig   `yaml:"changelog"`
	VersionFiles       []string          `yaml:"version_files"`
	VersionFilesStrict bool              `yaml:"version_files_strict"`
	Artifacts          []string          `yaml:"artifacts"`
	FloatingTags       bool              `yaml:"floating_tags"`
	BuildCommand       string            `yaml:"build_command,omitempty"`
	Hooks              HooksConfig       `yaml:"hooks"`
	PluginDir          string            `yaml:"plugin_dir,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Branches:        []string{"main", "master"},
		TagPrefix:       "v",
		CommitPattern:   commit.DefaultPattern,
		BreakingSection: "Breaking Changes",
		MiscSection:     "Miscellaneous",
		Types:           commit.DefaultRules(),
		PluginDir:       ".trunkrel/plugins",
	}
}

// Load reads the config at path, falling back to defaults when the file
// does not exist. Present keys override their defaults; absent keys keep
// them.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// MergeRules appends plugin-provided type rules to the configured table.
// A plugin may not shadow a name the table already declares.
func (c *Config) MergeRules(extra []commit.TypeRule) error {
	known := make(map[string]bool, len(c.Types))
	for _, r := range c.Types {
		known[r.Name] = true
	}
	for _, r := range extra {
		if known[r.Name] {
			return fmt.Errorf("config: plugin rule %q conflicts with configured type table", r.Name)
		}
		known[r.Name] = true
		c.Types = append(c.Types, r)
	}
	return nil
}

// Marshal renders the resolved configuration as YAML, used by
// `trunkrel config --resolved` and `trunkrel init`.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
