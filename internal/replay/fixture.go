package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/nietz/internal/config"
	"github.com/danielpatrickdp/nietz/internal/corpus"
	"github.com/danielpatrickdp/nietz/internal/nerve"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Seed            uint64                  `json:"seed"`
	StartNerves     map[string]float64      `json:"start_nerves"`
	Subjects        []string                `json:"subjects"`
	Voices          []string                `json:"voices"`
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureInteraction mirrors replay.Interaction with JSON tags.
type FixtureInteraction struct {
	TurnID string `json:"turn_id"`
	Input  string `json:"input"`
	Hour   int    `json:"hour"`
}

// FixtureExpectedResult captures the expected outcome per turn. An empty Text
// is not compared.
type FixtureExpectedResult struct {
	TurnID   string `json:"turn_id"`
	Kind     string `json:"kind"`
	Dominant string `json:"dominant"`
	Text     string `json:"text,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// StartState converts the fixture's start weights to a nerve state; unlisted
// traits keep their defaults.
func (f *Fixture) StartState() (*nerve.State, error) {
	s := nerve.Defaults()
	data, err := json.Marshal(f.StartNerves)
	if err != nil {
		return nil, err
	}
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("start nerves: %w", err)
	}
	return s, nil
}

// ToInteractions converts the fixture interactions to domain Interactions.
func (f *Fixture) ToInteractions() []Interaction {
	out := make([]Interaction, len(f.Interactions))
	for i, fi := range f.Interactions {
		out[i] = Interaction{TurnID: fi.TurnID, Input: fi.Input, Hour: fi.Hour}
	}
	return out
}

// ToReplayConfig builds a replay configuration over cfg (defaults when nil).
// Fixture pools go through the same dedup and length filter as a corpus directory.
func (f *Fixture) ToReplayConfig(cfg *config.Config) ReplayConfig {
	if cfg == nil {
		cfg = config.Default()
	}
	return ReplayConfig{
		Config:   cfg,
		Seed:     f.Seed,
		Subjects: corpus.FromLines(f.Subjects),
		Voices:   corpus.FromLines(f.Voices),
	}
}

// #endregion fixture-loader
