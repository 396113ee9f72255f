package weave

import (
	"errors"

	"github.com/danielpatrickdp/nietz/internal/nerve"
)

// ErrEmptySubjectCorpus is returned by Compose when there are no subject fragments.
var ErrEmptySubjectCorpus = errors.New("subject corpus is empty")

// #region config

// Config holds the weaving knobs.
type Config struct {
	Keywords          map[nerve.Trait][]string
	FallbackVoice     string
	MinTokenLength    int // tokens must be longer than this many runes
	ResonanceTriggers []string
}

// DefaultConfig returns the stock weaving configuration.
func DefaultConfig() Config {
	return Config{
		Keywords:          nerve.DefaultKeywords(),
		FallbackVoice:     "The ghost dictates",
		MinTokenLength:    3,
		ResonanceTriggers: []string{"child", "00", "nietz", "ghost"},
	}
}

// #endregion config

// #region result

// Result is one composed utterance.
type Result struct {
	Utterance  string
	Voice      string
	Subject    string // normalized
	Trait      nerve.Trait
	Candidates int // size of the pool the subject was drawn from
	Filtered   bool
	Resonance  bool
}

// #endregion result
