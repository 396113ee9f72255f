package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// MinFragmentLength is the rune count a trimmed line must exceed to be kept.
const MinFragmentLength = 20

// Pool is a sorted, duplicate-free set of fragments.
type Pool []string

// #region extract

// Extract reads every file directly inside dir whose extension is one of exts
// (case-insensitive; ".txt" when exts is empty) and returns the deduplicated
// trimmed lines longer than MinFragmentLength runes. Invalid UTF-8 is dropped.
// A missing directory yields an empty pool. Files that cannot be read are
// skipped and reported in the returned error alongside the partial pool.
func Extract(dir string, exts []string) (Pool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Pool{}, nil
	}
	if err != nil {
		return Pool{}, fmt.Errorf("read corpus dir %s: %w", dir, err)
	}

	seen := make(map[string]struct{})
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), exts) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read fragment file %s: %w", path, err))
			continue
		}
		for _, line := range splitFragments(data) {
			seen[line] = struct{}{}
		}
	}

	return toPool(seen), errors.Join(errs...)
}

// FromLines applies the same trimming, length filter and dedup as Extract to
// in-memory lines.
func FromLines(lines []string) Pool {
	seen := make(map[string]struct{})
	for _, l := range lines {
		for _, line := range splitFragments([]byte(l)) {
			seen[line] = struct{}{}
		}
	}
	return toPool(seen)
}

// #endregion extract

// #region helpers

func splitFragments(data []byte) []string {
	text := strings.ToValidUTF8(string(data), "")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > MinFragmentLength {
			out = append(out, line)
		}
	}
	return out
}

func toPool(seen map[string]struct{}) Pool {
	pool := make(Pool, 0, len(seen))
	for line := range seen {
		pool = append(pool, line)
	}
	sort.Strings(pool)
	return pool
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if len(exts) == 0 {
		return ext == ".txt"
	}
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// #endregion helpers

// #region source

// Source yields a pool on demand.
type Source interface {
	Load() (Pool, error)
}

// Load returns the pool itself, so a fixed Pool can stand in for a directory.
func (p Pool) Load() (Pool, error) {
	return p, nil
}

// #endregion source

// #region store

// Store re-extracts one corpus directory on every Load. There is no cache.
type Store struct {
	Dir  string
	Exts []string
}

// Load extracts the directory's current pool.
func (s Store) Load() (Pool, error) {
	return Extract(s.Dir, s.Exts)
}

// #endregion store
