// CLAUDE:SUMMARY Resolver configuration: search radii, similarity cutoffs, tier and probe timeouts, YAML loader.
package resolve

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every knob the resolution pipeline reads. It is resolved
// once by the host process and injected; nothing in the pipeline consults
// the environment at call time.
type Config struct {
	Snippet SnippetConfig `yaml:"snippet"`
	Extract ExtractConfig `yaml:"extract"`
	Probe   ProbeConfig   `yaml:"probe"`
	Match   MatchConfig   `yaml:"match"`
}

// SnippetConfig bounds fuzzy relocation.
type SnippetConfig struct {
	MaxRadius      int           `yaml:"max_radius"`
	HighConfidence float64       `yaml:"high_confidence"`
	FuzzyThreshold float64       `yaml:"fuzzy_threshold"`
	Timeout        time.Duration `yaml:"timeout"`
}

// ExtractConfig bounds the selector extraction tiers.
type ExtractConfig struct {
	FastTimeout time.Duration `yaml:"fast_timeout"`
	AttrTimeout time.Duration `yaml:"attr_timeout"`
	FullTimeout time.Duration `yaml:"full_timeout"`
}

// ProbeConfig bounds each liveness check.
type ProbeConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MatchConfig bounds anchor matching.
type MatchConfig struct {
	MinScore      float64       `yaml:"min_score"`
	RecentWindow  time.Duration `yaml:"recent_window"`
	HighStability int           `yaml:"high_stability"`
}

func (c *Config) defaults() {
	if c.Snippet.MaxRadius <= 0 {
		c.Snippet.MaxRadius = 40
	}
	if c.Snippet.HighConfidence <= 0 {
		c.Snippet.HighConfidence = 0.95
	}
	if c.Snippet.FuzzyThreshold <= 0 {
		c.Snippet.FuzzyThreshold = 0.7
	}
	if c.Snippet.Timeout <= 0 {
		c.Snippet.Timeout = 800 * time.Millisecond
	}
	if c.Extract.FastTimeout <= 0 {
		c.Extract.FastTimeout = 300 * time.Millisecond
	}
	if c.Extract.AttrTimeout <= 0 {
		c.Extract.AttrTimeout = 600 * time.Millisecond
	}
	if c.Extract.FullTimeout <= 0 {
		c.Extract.FullTimeout = 900 * time.Millisecond
	}
	if c.Probe.Timeout <= 0 {
		c.Probe.Timeout = 2 * time.Second
	}
	if c.Match.MinScore <= 0 {
		c.Match.MinScore = 10
	}
	if c.Match.RecentWindow <= 0 {
		c.Match.RecentWindow = 7 * 24 * time.Hour
	}
	if c.Match.HighStability <= 0 {
		c.Match.HighStability = 80
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
