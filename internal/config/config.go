package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/nietz/internal/nerve"
)

// Window is a half-open range of wall-clock hours [Start, End) that wraps
// past midnight when Start > End.
type Window struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Config is the on-disk configuration. Default supplies every value a file
// leaves out.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Prompt  string `yaml:"prompt"`

	Paths struct {
		Toybox   string `yaml:"toybox"`
		Voice    string `yaml:"voice"`
		Nerves   string `yaml:"nerves"`
		Ledger   string `yaml:"ledger"`
		Dreams   string `yaml:"dreams"`
		Database string `yaml:"database"`
	} `yaml:"paths"`

	Storage struct {
		Backend     string `yaml:"backend"` // "file" | "sqlite" | "redis"
		RedisURL    string `yaml:"redis_url"`
		RedisPrefix string `yaml:"redis_prefix"`
	} `yaml:"storage"`

	Corpus struct {
		Extensions []string `yaml:"extensions"`
	} `yaml:"corpus"`

	Nerves struct {
		KeywordStep float64             `yaml:"keyword_step"`
		ChronosStep float64             `yaml:"chronos_step"`
		AeonStep    float64             `yaml:"aeon_step"`
		NightStep   float64             `yaml:"night_step"`
		MorningStep float64             `yaml:"morning_step"`
		Night       Window              `yaml:"night"`
		Morning     Window              `yaml:"morning"`
		Keywords    map[string][]string `yaml:"keywords"`
	} `yaml:"nerves"`

	Weaver struct {
		FallbackVoice     string   `yaml:"fallback_voice"`
		MinTokenLength    int      `yaml:"min_token_length"`
		ResonanceTriggers []string `yaml:"resonance_triggers"`
	} `yaml:"weaver"`

	History struct {
		Recall int `yaml:"recall"`
		Show   int `yaml:"show"`
	} `yaml:"history"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{
		Name:    "NIETZ",
		Version: "v13.5",
		Prompt:  "nietz-ghost > ",
	}
	c.Paths.Toybox = "nietz_toybox"
	c.Paths.Voice = "nietz_voice"
	c.Paths.Nerves = "nietz_nerves.json"
	c.Paths.Ledger = "nietz_ledger.txt"
	c.Paths.Dreams = "nietz_dreams.txt"
	c.Paths.Database = "nietz.db"
	c.Storage.Backend = "file"
	c.Storage.RedisURL = "redis://localhost:6379/0"
	c.Storage.RedisPrefix = "nietz"
	c.Corpus.Extensions = []string{".txt"}

	c.Nerves.KeywordStep = 0.1
	c.Nerves.ChronosStep = 0.05
	c.Nerves.AeonStep = 0.01
	c.Nerves.NightStep = 0.05
	c.Nerves.MorningStep = 0.05
	c.Nerves.Night = Window{Start: 22, End: 5}
	c.Nerves.Morning = Window{Start: 5, End: 11}
	c.Nerves.Keywords = make(map[string][]string)
	for t, words := range nerve.DefaultKeywords() {
		c.Nerves.Keywords[t.String()] = words
	}

	c.Weaver.FallbackVoice = "The ghost dictates"
	c.Weaver.MinTokenLength = 3
	c.Weaver.ResonanceTriggers = []string{"child", "00", "nietz", "ghost"}

	c.History.Recall = 100
	c.History.Show = 5
	c.Log.Level = "warn"
	return c
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	defaults := cfg.Nerves.Keywords
	cfg.Nerves.Keywords = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Nerves.Keywords = mergeKeywords(defaults, cfg.Nerves.Keywords)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// mergeKeywords overlays file lists onto the defaults per trait, keyed by
// upper-case trait name.
func mergeKeywords(defaults, file map[string][]string) map[string][]string {
	out := make(map[string][]string, len(defaults)+len(file))
	for k, v := range defaults {
		out[strings.ToUpper(k)] = v
	}
	for k, v := range file {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// Validate rejects unknown trait names and backends, out-of-range hours, and
// negative or non-finite reinforcement steps.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	for _, w := range []Window{c.Nerves.Night, c.Nerves.Morning} {
		if w.Start < 0 || w.Start > 23 || w.End < 0 || w.End > 24 {
			return fmt.Errorf("hour window [%d, %d) out of range", w.Start, w.End)
		}
	}
	steps := []struct {
		name string
		v    float64
	}{
		{"keyword_step", c.Nerves.KeywordStep},
		{"chronos_step", c.Nerves.ChronosStep},
		{"aeon_step", c.Nerves.AeonStep},
		{"night_step", c.Nerves.NightStep},
		{"morning_step", c.Nerves.MorningStep},
	}
	for _, st := range steps {
		if st.v < 0 || math.IsNaN(st.v) || math.IsInf(st.v, 0) {
			return fmt.Errorf("nerves.%s %v must be finite and non-negative", st.name, st.v)
		}
	}
	if _, err := c.TraitKeywords(); err != nil {
		return err
	}
	return nil
}

// TraitKeywords resolves the keyword table to trait identifiers.
func (c *Config) TraitKeywords() (map[nerve.Trait][]string, error) {
	out := make(map[nerve.Trait][]string, len(c.Nerves.Keywords))
	for name, words := range c.Nerves.Keywords {
		t, err := nerve.ParseTrait(name)
		if err != nil {
			return nil, fmt.Errorf("keywords: %w", err)
		}
		out[t] = append([]string(nil), words...)
	}
	return out, nil
}
