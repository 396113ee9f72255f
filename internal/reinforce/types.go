package reinforce

import (
	"fmt"
	"math"
	"time"

	"github.com/danielpatrickdp/nietz/internal/nerve"
)

// #region hour-window

// HourWindow is a half-open range of wall-clock hours [Start, End).
// When Start > End the window wraps past midnight.
type HourWindow struct {
	Start int
	End   int
}

// Contains reports whether hour falls inside the window.
func (w HourWindow) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

// #endregion hour-window

// #region config

// Config holds the per-turn increments and the keyword table.
type Config struct {
	KeywordStep float64
	ChronosStep float64
	AeonStep    float64
	NightStep   float64 // applied to VOID
	MorningStep float64 // applied to CHILD
	Night       HourWindow
	Morning     HourWindow
	Keywords    map[nerve.Trait][]string
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		KeywordStep: 0.1,
		ChronosStep: 0.05,
		AeonStep:    0.01,
		NightStep:   0.05,
		MorningStep: 0.05,
		Night:       HourWindow{Start: 22, End: 5},
		Morning:     HourWindow{Start: 5, End: 11},
		Keywords:    nerve.DefaultKeywords(),
	}
}

// Validate rejects negative or non-finite steps and keyword tables keyed by
// unknown traits, so a pass never stops halfway through its increments.
func (c Config) Validate() error {
	steps := []struct {
		name string
		v    float64
	}{
		{"keyword", c.KeywordStep},
		{"chronos", c.ChronosStep},
		{"aeon", c.AeonStep},
		{"night", c.NightStep},
		{"morning", c.MorningStep},
	}
	for _, st := range steps {
		if st.v < 0 || math.IsNaN(st.v) || math.IsInf(st.v, 0) {
			return fmt.Errorf("%s step %v must be finite and non-negative", st.name, st.v)
		}
	}
	for t := range c.Keywords {
		if !t.Valid() {
			return &nerve.InvalidTraitError{Trait: t}
		}
	}
	return nil
}

// #endregion config

// #region report

// Report records what one reinforcement pass did.
type Report struct {
	At      time.Time
	Night   bool
	Morning bool
	Fired   []nerve.Trait // keyword-triggered traits, in declaration order
	Before  map[string]float64
	After   map[string]float64
}

// #endregion report
