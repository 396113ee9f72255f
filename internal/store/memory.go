package store

import "strings"

// MemoryStore keeps everything in process memory. Used by tests and replay.
type MemoryStore struct {
	snapshot []byte
	lines    map[Stream][]string

	// WriteErr, when set, is returned by WriteSnapshot and AppendLine.
	WriteErr error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lines: make(map[Stream][]string)}
}

func (m *MemoryStore) ReadSnapshot() ([]byte, error) {
	if m.snapshot == nil {
		return nil, nil
	}
	return append([]byte(nil), m.snapshot...), nil
}

func (m *MemoryStore) WriteSnapshot(data []byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.snapshot = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) AppendLine(stream Stream, line string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.lines[stream] = append(m.lines[stream], strings.TrimRight(line, "\n"))
	return nil
}

func (m *MemoryStore) Tail(stream Stream, n int) ([]string, error) {
	return tail(m.lines[stream], n), nil
}

// Lines returns every line appended to stream.
func (m *MemoryStore) Lines(stream Stream) []string {
	return tail(m.lines[stream], 0)
}

func (m *MemoryStore) Close() error { return nil }
