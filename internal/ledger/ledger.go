package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/nietz/internal/store"
)

// TimeLayout is the timestamp layout of ledger lines.
const TimeLayout = "2006-01-02 15:04:05.000000"

// #region entry

// Entry pairs one raw input with the utterance composed for it.
type Entry struct {
	At        time.Time
	Input     string
	Utterance string
}

// Line renders the entry as "[<timestamp>] <input> -> <utterance>".
func (e Entry) Line() string {
	return fmt.Sprintf("[%s] %s -> %s", e.At.Format(TimeLayout), oneLine(e.Input), oneLine(e.Utterance))
}

// #endregion entry

// #region ledger

// Ledger appends entries to the ledger stream of a store.
type Ledger struct {
	store store.Store
}

func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// Append writes one entry.
func (l *Ledger) Append(e Entry) error {
	if err := l.store.AppendLine(store.Ledger, e.Line()); err != nil {
		return fmt.Errorf("ledger append: %w", err)
	}
	return nil
}

// Recall returns up to n of the most recent ledger lines that carry a
// timestamp bracket.
func (l *Ledger) Recall(n int) ([]string, error) {
	lines, err := l.store.Tail(store.Ledger, 0)
	if err != nil {
		return nil, fmt.Errorf("ledger recall: %w", err)
	}
	var out []string
	for _, line := range lines {
		if strings.Contains(line, "[") {
			out = append(out, strings.TrimSpace(line))
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

// #endregion ledger

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// oneLine keeps an entry on a single line of the log. Other whitespace is kept as typed.
func oneLine(s string) string {
	return lineBreaks.Replace(s)
}
