package config

import (
	"fmt"
	"time"
)

// DefaultFileName is the config file looked up in the project root when
// --config is not given.
const DefaultFileName = "masonry.yaml"

// Config represents a masonry.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values.
type Config struct {
	Preset    string `yaml:"preset"`
	Root      string `yaml:"root"`
	Jobs      int    `yaml:"jobs"`
	SkipTests bool   `yaml:"skip_tests"`
	Verbose   bool   `yaml:"verbose"`

	// Toolset pins the MSVC toolset version (e.g. "14.40"), overriding
	// whatever the preset graph resolves.
	Toolset string `yaml:"toolset"`

	Lint    LintConfig    `yaml:"lint"`
	Archive ArchiveConfig `yaml:"archive"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// LintConfig holds lint pipeline defaults from the config file.
type LintConfig struct {
	SourceFilter string `yaml:"source_filter"`
	Fix          bool   `yaml:"fix"`
}

// ArchiveConfig holds archive defaults from the config file.
type ArchiveConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Enabled reports whether an archive backend is configured.
func (c *ArchiveConfig) Enabled() bool {
	return c.Backend != ""
}

// AdapterConfig holds completion adapter defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Enabled reports whether a completion adapter is configured.
func (c *AdapterConfig) Enabled() bool {
	return c.Type != ""
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
