package weave

import (
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielpatrickdp/nietz/internal/corpus"
	"github.com/danielpatrickdp/nietz/internal/nerve"
)

// #region weaver

// Weaver composes a voice fragment with a trait-biased subject fragment.
type Weaver struct {
	config Config
}

// NewWeaver creates a Weaver.
func NewWeaver(config Config) *Weaver {
	return &Weaver{config: config}
}

// #endregion weaver

// #region compose

// Compose draws a voice fragment and a subject fragment from rng and joins
// them. Subject candidates are the lines mentioning an input token or a
// keyword of the dominant trait; when none do, the whole subject pool is used.
// An empty voice pool falls back to Config.FallbackVoice.
func (w *Weaver) Compose(input string, nerves *nerve.State, voice, subject corpus.Pool, rng *rand.Rand) (Result, error) {
	if len(subject) == 0 {
		return Result{}, ErrEmptySubjectCorpus
	}
	if len(voice) == 0 {
		voice = corpus.Pool{w.config.FallbackVoice}
	}

	trait := nerves.Dominant()
	needles := append(Tokenize(input, w.config.MinTokenLength), lowerAll(w.config.Keywords[trait])...)
	candidates := filter(subject, needles)
	filtered := len(candidates) > 0
	if !filtered {
		candidates = subject
	}

	v := voice[rng.IntN(len(voice))]
	s := Normalize(candidates[rng.IntN(len(candidates))])

	return Result{
		Utterance:  v + " " + s,
		Voice:      v,
		Subject:    s,
		Trait:      trait,
		Candidates: len(candidates),
		Filtered:   filtered,
		Resonance:  w.Resonant(input),
	}, nil
}

// Resonant reports whether input mentions any resonance trigger.
func (w *Weaver) Resonant(input string) bool {
	lower := strings.ToLower(input)
	for _, t := range w.config.ResonanceTriggers {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// #endregion compose

// #region tokenize

// Tokenize splits input on whitespace and keeps the lowercased words longer
// than minLen runes.
func Tokenize(input string, minLen int) []string {
	var tokens []string
	for _, f := range strings.Fields(strings.ToLower(input)) {
		if utf8.RuneCountInString(f) > minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// #endregion tokenize

// #region normalize

const leadingJunk = ",.;:-"

// Normalize strips a leading run of ,.;:- and whitespace, lowercases, and
// ensures the fragment ends in '.', '!' or '?'.
func Normalize(fragment string) string {
	s := strings.TrimLeftFunc(strings.TrimSpace(fragment), func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(leadingJunk, r)
	})
	s = strings.ToLower(s)
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}

// #endregion normalize

// #region helpers

func filter(pool corpus.Pool, needles []string) corpus.Pool {
	if len(needles) == 0 {
		return nil
	}
	var out corpus.Pool
	for _, line := range pool {
		lower := strings.ToLower(line)
		for _, n := range needles {
			if n != "" && strings.Contains(lower, n) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// #endregion helpers
