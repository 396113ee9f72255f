package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/nietz/internal/config"
	"github.com/danielpatrickdp/nietz/internal/corpus"
	"github.com/danielpatrickdp/nietz/internal/dream"
	"github.com/danielpatrickdp/nietz/internal/ledger"
	"github.com/danielpatrickdp/nietz/internal/nerve"
	"github.com/danielpatrickdp/nietz/internal/reinforce"
	"github.com/danielpatrickdp/nietz/internal/weave"
)

// #region session

// Session owns all mutable state of one running companion: the nerves, the
// session history, and the shutdown guard.
type Session struct {
	cfg    *config.Config
	nerves *nerve.State
	rng    *rand.Rand
	now    func() time.Time
	logger *zap.Logger

	reinforcer *reinforce.Reinforcer
	weaver     *weave.Weaver
	dreamer    *dream.Synthesizer
	ledger     *ledger.Ledger
	subjects   corpus.Source
	voices     corpus.Source

	history   []string
	reflected bool
}

// New loads the nerve snapshot and recent ledger history from opts.Store.
// A corrupt snapshot is returned as a *nerve.PersistenceError; reinforcement
// settings that would be rejected mid-turn fail here instead.
func New(opts Options) (*Session, error) {
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	keywords, err := cfg.TraitKeywords()
	if err != nil {
		return nil, err
	}
	rc := reinforce.Config{
		KeywordStep: cfg.Nerves.KeywordStep,
		ChronosStep: cfg.Nerves.ChronosStep,
		AeonStep:    cfg.Nerves.AeonStep,
		NightStep:   cfg.Nerves.NightStep,
		MorningStep: cfg.Nerves.MorningStep,
		Night:       reinforce.HourWindow(cfg.Nerves.Night),
		Morning:     reinforce.HourWindow(cfg.Nerves.Morning),
		Keywords:    keywords,
	}
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	nerves, unknown, err := nerve.Load(opts.Store)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		logger.Warn("ignoring unknown traits in nerve snapshot", zap.Strings("names", unknown))
	}

	s := &Session{
		cfg:        cfg,
		nerves:     nerves,
		rng:        rng,
		now:        now,
		logger:     logger,
		reinforcer: reinforce.NewReinforcer(rc, opts.Store, now, logger),
		weaver: weave.NewWeaver(weave.Config{
			Keywords:          keywords,
			FallbackVoice:     cfg.Weaver.FallbackVoice,
			MinTokenLength:    cfg.Weaver.MinTokenLength,
			ResonanceTriggers: cfg.Weaver.ResonanceTriggers,
		}),
		dreamer:  dream.NewSynthesizer(opts.Store, now),
		ledger:   ledger.New(opts.Store),
		subjects: opts.Subjects,
		voices:   opts.Voices,
	}
	if s.subjects == nil {
		s.subjects = corpus.Store{Dir: cfg.Paths.Toybox, Exts: cfg.Corpus.Extensions}
	}
	if s.voices == nil {
		s.voices = corpus.Store{Dir: cfg.Paths.Voice, Exts: cfg.Corpus.Extensions}
	}

	history, err := s.ledger.Recall(cfg.History.Recall)
	if err != nil {
		logger.Warn("ledger history unavailable", zap.Error(err))
	}
	s.history = history
	return s, nil
}

// Nerves returns the live nerve state.
func (s *Session) Nerves() *nerve.State {
	return s.nerves
}

// History returns the recalled ledger lines followed by this session's utterances.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// #endregion session

// #region handle

// Handle routes one line of input. Directives and exit words never touch the
// nerves or the ledger. Write failures are logged; the error is non-nil only
// for faults that must not be swallowed, such as a reference to an unknown trait.
func (s *Session) Handle(input string) (Response, error) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return Response{Kind: KindIgnored}, nil
	case IsExit(input):
		return Response{Kind: KindExit}, nil
	case strings.HasPrefix(input, DirectivePrefix):
		return s.directive(input), nil
	}
	return s.turn(input)
}

func (s *Session) turn(input string) (Response, error) {
	if _, err := s.reinforcer.Reinforce(s.nerves, input); err != nil {
		var pe *nerve.PersistenceError
		if !errors.As(err, &pe) {
			return Response{}, fmt.Errorf("reinforce: %w", err)
		}
		s.logger.Warn("nerve snapshot not saved", zap.Error(err))
	}

	subjects := s.load(s.subjects)
	voices := s.load(s.voices)

	res, err := s.weaver.Compose(input, s.nerves, voices, subjects, s.rng)
	if errors.Is(err, weave.ErrEmptySubjectCorpus) {
		return Response{Kind: KindEmptyCorpus, Text: EmptyCorpusText}, nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("compose: %w", err)
	}

	entry := ledger.Entry{At: s.now(), Input: input, Utterance: res.Utterance}
	if err := s.ledger.Append(entry); err != nil {
		s.logger.Warn("ledger entry not saved", zap.Error(err))
	}
	s.history = append(s.history, res.Utterance)

	s.logger.Debug("utterance composed",
		zap.Stringer("trait", res.Trait),
		zap.Int("candidates", res.Candidates),
		zap.Bool("filtered", res.Filtered),
		zap.Bool("resonance", res.Resonance),
	)
	return Response{Kind: KindUtterance, Text: res.Utterance, Result: &res}, nil
}

// load extracts a pool and logs, without failing, any files that could not be read.
func (s *Session) load(c corpus.Source) corpus.Pool {
	pool, err := c.Load()
	if err != nil {
		s.logger.Warn("corpus partially loaded", zap.Error(err))
	}
	return pool
}

// #endregion handle

// #region reflect

// Reflect writes the shutdown dream. Only the first call has any effect; an
// empty pool makes it a silent no-op.
func (s *Session) Reflect() (*dream.Entry, error) {
	if s.reflected {
		return nil, nil
	}
	s.reflected = true
	return s.dreamer.Reflect(s.load(s.voices), s.load(s.subjects), s.rng)
}

// #endregion reflect

// #region banner

// WakeBanner renders the startup banner with the most recent dream.
func (s *Session) WakeBanner() string {
	last, err := s.dreamer.Latest()
	if err != nil {
		s.logger.Warn("last dream unavailable", zap.Error(err))
	}
	if last == "" {
		last = GenesisDream
	}
	rule := strings.Repeat("-", 50)

	var b strings.Builder
	b.WriteString("    *\n   ***\n    *\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%s %s | AEON MATURITY: %.2f\n", s.cfg.Name, s.cfg.Version, s.nerves.Get(nerve.Aeon))
	fmt.Fprintf(&b, "LAST DREAM: %s\n", last)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "TYPE %smap TO SEE NERVES OR %sexit TO SLEEP.\n", DirectivePrefix, DirectivePrefix)
	return b.String()
}

// #endregion banner
