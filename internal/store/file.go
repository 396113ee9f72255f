package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// #region file-store

// FilePaths locates the three flat files of the file backend.
type FilePaths struct {
	Nerves string
	Ledger string
	Dreams string
}

// FileStore keeps the nerve snapshot as a JSON file and each stream as a
// newline-terminated text file.
type FileStore struct {
	paths FilePaths
}

// NewFileStore returns a store over paths. Files are created lazily.
func NewFileStore(paths FilePaths) *FileStore {
	return &FileStore{paths: paths}
}

// #endregion file-store

// #region snapshot

func (f *FileStore) ReadSnapshot() ([]byte, error) {
	data, err := os.ReadFile(f.paths.Nerves)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.paths.Nerves, err)
	}
	return data, nil
}

// WriteSnapshot replaces the snapshot file via a temp file and rename.
func (f *FileStore) WriteSnapshot(data []byte) error {
	dir := filepath.Dir(f.paths.Nerves)
	tmp, err := os.CreateTemp(dir, ".nerves-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.paths.Nerves); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.paths.Nerves, err)
	}
	return nil
}

// #endregion snapshot

// #region streams

func (f *FileStore) streamPath(stream Stream) (string, error) {
	switch stream {
	case Ledger:
		return f.paths.Ledger, nil
	case Dreams:
		return f.paths.Dreams, nil
	}
	return "", fmt.Errorf("unknown stream %q", stream)
}

func (f *FileStore) AppendLine(stream Stream, line string) error {
	path, err := f.streamPath(stream)
	if err != nil {
		return err
	}
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := fh.WriteString(strings.TrimRight(line, "\n") + "\n"); err != nil {
		fh.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return fh.Close()
}

// Tail returns the last n non-blank lines of the stream (all when n <= 0).
// A missing file has no lines.
func (f *FileStore) Tail(stream Stream, n int) ([]string, error) {
	path, err := f.streamPath(stream)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return tail(lines, n), nil
}

// #endregion streams

func (f *FileStore) Close() error { return nil }
