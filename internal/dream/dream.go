package dream

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/danielpatrickdp/nietz/internal/corpus"
	"github.com/danielpatrickdp/nietz/internal/store"
)

// TimeLayout is the timestamp layout of dream lines.
const TimeLayout = "2006-01-02 15:04"

// #region entry

// Entry is one shutdown reflection.
type Entry struct {
	At      time.Time
	Voice   string
	Subject string
}

// Line renders "[<timestamp>] <voice> <lowercased subject>".
func (e Entry) Line() string {
	return fmt.Sprintf("[%s] %s %s", e.At.Format(TimeLayout), e.Voice, strings.ToLower(e.Subject))
}

// #endregion entry

// #region synthesizer

// Synthesizer draws one unbiased reflection from both pools.
type Synthesizer struct {
	store store.Store
	now   func() time.Time
}

// NewSynthesizer creates a Synthesizer. now may be nil (time.Now is used).
func NewSynthesizer(s store.Store, now func() time.Time) *Synthesizer {
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{store: s, now: now}
}

// Reflect draws one voice and one subject fragment uniformly and appends the
// dream. When either pool is empty it does nothing and returns (nil, nil).
func (d *Synthesizer) Reflect(voice, subject corpus.Pool, rng *rand.Rand) (*Entry, error) {
	if len(voice) == 0 || len(subject) == 0 {
		return nil, nil
	}
	e := &Entry{
		At:      d.now(),
		Voice:   voice[rng.IntN(len(voice))],
		Subject: subject[rng.IntN(len(subject))],
	}
	if err := d.store.AppendLine(store.Dreams, e.Line()); err != nil {
		return e, fmt.Errorf("dream append: %w", err)
	}
	return e, nil
}

// Latest returns the most recent dream line, or "" when there is none.
func (d *Synthesizer) Latest() (string, error) {
	lines, err := d.store.Tail(store.Dreams, 1)
	if err != nil {
		return "", fmt.Errorf("dream recall: %w", err)
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.TrimSpace(lines[0]), nil
}

// #endregion synthesizer
