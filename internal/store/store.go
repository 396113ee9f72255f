package store

// #region stream
// Stream names an append-only line log.
type Stream string

const (
	Ledger Stream = "ledger"
	Dreams Stream = "dreams"
)

// #endregion stream

// #region store-interface
// Store persists the nerve snapshot and the append-only logs of one session.
// ReadSnapshot returns (nil, nil) until the first WriteSnapshot.
type Store interface {
	ReadSnapshot() ([]byte, error)
	WriteSnapshot(data []byte) error
	AppendLine(stream Stream, line string) error
	Tail(stream Stream, n int) ([]string, error)
	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// #endregion store-interface

// tail returns the last n elements of lines (all of them when n <= 0).
func tail(lines []string, n int) []string {
	if n <= 0 || n >= len(lines) {
		out := make([]string, len(lines))
		copy(out, lines)
		return out
	}
	out := make([]string, n)
	copy(out, lines[len(lines)-n:])
	return out
}
