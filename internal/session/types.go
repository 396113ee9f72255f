package session

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/nietz/internal/config"
	"github.com/danielpatrickdp/nietz/internal/corpus"
	"github.com/danielpatrickdp/nietz/internal/store"
	"github.com/danielpatrickdp/nietz/internal/weave"
)

// #region kind

// Kind classifies what Handle did with one line of input.
type Kind int

const (
	KindIgnored     Kind = iota // blank input
	KindUtterance               // a composed utterance
	KindEmptyCorpus             // no subject fragments available
	KindDirective               // a '<' directive
	KindExit                    // the session should reflect and end
)

func (k Kind) String() string {
	switch k {
	case KindIgnored:
		return "ignored"
	case KindUtterance:
		return "utterance"
	case KindEmptyCorpus:
		return "empty_corpus"
	case KindDirective:
		return "directive"
	case KindExit:
		return "exit"
	}
	return "unknown"
}

// #endregion kind

// #region response

// Response is the outcome of one Handle call.
type Response struct {
	Kind   Kind
	Text   string
	Clear  bool          // the terminal should be cleared before printing Text
	Result *weave.Result // set for KindUtterance
}

// Render formats the response for the terminal. Resonant utterances carry a
// leading star.
func (r Response) Render() string {
	if r.Kind != KindUtterance {
		return r.Text
	}
	if r.Result != nil && r.Result.Resonance {
		return "\n *\n" + r.Text + "\n"
	}
	return "\n" + r.Text + "\n"
}

// #endregion response

// #region options

// Options wires a Session. Everything but Store may be nil; Subjects and
// Voices default to the corpus directories named in Config.
type Options struct {
	Config   *config.Config
	Store    store.Store
	Subjects corpus.Source
	Voices   corpus.Source
	Rand     *rand.Rand
	Now      func() time.Time
	Logger   *zap.Logger
}

// #endregion options

// Status lines shown to the operator.
const (
	EmptyCorpusText = "[TOYBOX EMPTY - ADD .TXT FILES]"
	ClearedText     = "[SCREEN CLEARED]"
	GenesisDream    = "Genesis. The 00 child is born."

	// ClearScreen is the ANSI sequence that homes the cursor and clears the terminal.
	ClearScreen = "\033[H\033[2J"
)
