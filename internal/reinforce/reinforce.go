package reinforce

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/nietz/internal/nerve"
)

// #region reinforcer

// Reinforcer turns one user input into nerve increments and persists the result.
type Reinforcer struct {
	config Config
	sink   nerve.Snapshotter
	now    func() time.Time
	logger *zap.Logger
}

// NewReinforcer creates a Reinforcer. now may be nil (time.Now is used).
func NewReinforcer(config Config, sink nerve.Snapshotter, now func() time.Time, logger *zap.Logger) *Reinforcer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reinforcer{config: config, sink: sink, now: now, logger: logger}
}

// #endregion reinforcer

// #region reinforce

// Reinforce applies temporal conditioning and keyword reinforcement to s, then
// persists it. Increments are applied even when persisting fails; the write
// error is returned alongside the report.
func (r *Reinforcer) Reinforce(s *nerve.State, input string) (Report, error) {
	at := r.now()
	rep := Report{At: at, Before: s.Weights()}

	if err := r.temporal(s, at, &rep); err != nil {
		return rep, err
	}
	fired, err := r.keywords(s, input)
	if err != nil {
		return rep, err
	}
	rep.Fired = fired
	rep.After = s.Weights()

	r.logger.Debug("nerves reinforced",
		zap.Int("hour", at.Hour()),
		zap.Bool("night", rep.Night),
		zap.Bool("morning", rep.Morning),
		zap.Stringers("fired", fired),
		zap.Stringer("dominant", s.Dominant()),
	)

	if err := s.Persist(r.sink); err != nil {
		return rep, fmt.Errorf("persist nerves: %w", err)
	}
	return rep, nil
}

// #endregion reinforce

// #region temporal

// temporal conditions CHRONOS and AEON every turn, plus a circadian bias.
func (r *Reinforcer) temporal(s *nerve.State, at time.Time, rep *Report) error {
	if err := s.Increment(nerve.Chronos, r.config.ChronosStep); err != nil {
		return err
	}
	if err := s.Increment(nerve.Aeon, r.config.AeonStep); err != nil {
		return err
	}

	hour := at.Hour()
	switch {
	case r.config.Night.Contains(hour):
		rep.Night = true
		return s.Increment(nerve.Void, r.config.NightStep)
	case r.config.Morning.Contains(hour):
		rep.Morning = true
		return s.Increment(nerve.Child, r.config.MorningStep)
	}
	return nil
}

// #endregion temporal

// #region keywords

// keywords gives each trait at most one step per turn when any of its
// keywords appears as a case-insensitive substring of input.
func (r *Reinforcer) keywords(s *nerve.State, input string) ([]nerve.Trait, error) {
	for t := range r.config.Keywords {
		if !t.Valid() {
			return nil, &nerve.InvalidTraitError{Trait: t}
		}
	}
	lower := strings.ToLower(input)
	var fired []nerve.Trait
	for _, t := range nerve.Traits() {
		if !matchesAny(lower, r.config.Keywords[t]) {
			continue
		}
		if err := s.Increment(t, r.config.KeywordStep); err != nil {
			return fired, err
		}
		fired = append(fired, t)
	}
	return fired, nil
}

func matchesAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// #endregion keywords
