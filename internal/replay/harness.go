package replay

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/danielpatrickdp/nietz/internal/config"
	"github.com/danielpatrickdp/nietz/internal/corpus"
	"github.com/danielpatrickdp/nietz/internal/nerve"
	"github.com/danielpatrickdp/nietz/internal/session"
	"github.com/danielpatrickdp/nietz/internal/store"
)

// #region types

// Interaction is one scripted line of input and the wall-clock hour it arrives at.
type Interaction struct {
	TurnID string
	Input  string
	Hour   int
}

// ReplayConfig fixes everything a replay run depends on.
type ReplayConfig struct {
	Config   *config.Config
	Seed     uint64
	Subjects corpus.Pool
	Voices   corpus.Pool
}

// ReplayResult captures the outcome of one interaction.
type ReplayResult struct {
	TurnID   string
	Kind     session.Kind
	Text     string // utterance, directive output, or the dream line on exit
	Dominant nerve.Trait
	Weights  map[string]float64
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTurns  int
	Utterances  int
	EmptyCorpus int
	Directives  int
	Ignored     int
	Exited      bool
	FinalNerves map[string]float64
	Dominant    nerve.Trait
}

// #endregion types

// #region replay

// Replay runs the interactions through a session backed by an in-memory store,
// a seeded random source, and a clock pinned to each interaction's hour.
// An exit interaction triggers the shutdown reflection and ends the run.
// It returns the per-turn results and the final nerve state.
func Replay(start *nerve.State, interactions []Interaction, cfg ReplayConfig) ([]ReplayResult, *nerve.State, error) {
	mem := store.NewMemoryStore()
	if start != nil {
		if err := start.Persist(mem); err != nil {
			return nil, nil, fmt.Errorf("seed start state: %w", err)
		}
	}

	hour := 12
	now := func() time.Time { return time.Date(2026, 1, 1, hour, 0, 0, 0, time.UTC) }

	sess, err := session.New(session.Options{
		Config:   cfg.Config,
		Store:    mem,
		Subjects: cfg.Subjects,
		Voices:   cfg.Voices,
		Rand:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		Now:      now,
	})
	if err != nil {
		return nil, nil, err
	}

	results := make([]ReplayResult, 0, len(interactions))
	for _, inter := range interactions {
		hour = inter.Hour
		resp, err := sess.Handle(inter.Input)
		if err != nil {
			return results, sess.Nerves(), fmt.Errorf("turn %s: %w", inter.TurnID, err)
		}

		text := resp.Text
		if resp.Kind == session.KindExit {
			entry, err := sess.Reflect()
			if err != nil {
				return results, sess.Nerves(), fmt.Errorf("turn %s: reflect: %w", inter.TurnID, err)
			}
			if entry != nil {
				text = entry.Line()
			}
		}

		results = append(results, ReplayResult{
			TurnID:   inter.TurnID,
			Kind:     resp.Kind,
			Text:     text,
			Dominant: sess.Nerves().Dominant(),
			Weights:  sess.Nerves().Weights(),
		})
		if resp.Kind == session.KindExit {
			break
		}
	}
	return results, sess.Nerves(), nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, final *nerve.State) ReplaySummary {
	s := ReplaySummary{
		TotalTurns:  len(results),
		FinalNerves: final.Weights(),
		Dominant:    final.Dominant(),
	}
	for _, r := range results {
		switch r.Kind {
		case session.KindUtterance:
			s.Utterances++
		case session.KindEmptyCorpus:
			s.EmptyCorpus++
		case session.KindDirective:
			s.Directives++
		case session.KindIgnored:
			s.Ignored++
		case session.KindExit:
			s.Exited = true
		}
	}
	return s
}

// #endregion replay
