package nerve

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// DefaultWeight is the starting weight of every trait.
const DefaultWeight = 1.0

// #region state
// State is the eight-trait weight vector. The zero value is not useful; use Defaults.
type State struct {
	w [numTraits]float64
}

// Defaults returns a state with every trait at DefaultWeight.
func Defaults() *State {
	s := &State{}
	for i := range s.w {
		s.w[i] = DefaultWeight
	}
	return s
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// Get returns the weight of t, or 0 for an invalid trait.
func (s *State) Get(t Trait) float64 {
	if !t.Valid() {
		return 0
	}
	return s.w[t]
}

// Increment adds delta to t. Weights only grow, so negative or non-finite
// deltas are rejected along with unknown traits.
func (s *State) Increment(t Trait, delta float64) error {
	if !t.Valid() {
		return &InvalidTraitError{Trait: t}
	}
	if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("increment %s: delta %v must be finite and non-negative", t, delta)
	}
	s.w[t] += delta
	return nil
}

// IncrementName is Increment addressed by trait name.
func (s *State) IncrementName(name string, delta float64) error {
	t, err := ParseTrait(name)
	if err != nil {
		return err
	}
	return s.Increment(t, delta)
}

// Dominant returns the trait with the highest weight. Ties go to the trait
// declared first.
func (s *State) Dominant() Trait {
	best := Trait(0)
	for i := 1; i < numTraits; i++ {
		if s.w[i] > s.w[best] {
			best = Trait(i)
		}
	}
	return best
}

// Weights returns the snapshot as a flat name → weight map.
func (s *State) Weights() map[string]float64 {
	m := make(map[string]float64, numTraits)
	for i, n := range traitNames {
		m[n] = s.w[i]
	}
	return m
}

// Equal reports whether every weight differs by at most tol.
func (s *State) Equal(other *State, tol float64) bool {
	for i := range s.w {
		if math.Abs(s.w[i]-other.w[i]) > tol {
			return false
		}
	}
	return true
}

// #endregion state

// #region json

func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Weights())
}

// UnmarshalJSON merges known trait names into s and ignores the rest.
func (s *State) UnmarshalJSON(data []byte) error {
	_, err := s.merge(data)
	return err
}

func (s *State) merge(data []byte) ([]string, error) {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var unknown []string
	for name, v := range raw {
		t, err := ParseTrait(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		s.w[t] = v
	}
	sort.Strings(unknown)
	return unknown, nil
}

// #endregion json

// #region load-persist

// Load returns the defaults overridden by any snapshot found in src, along with
// the names in the snapshot that are not traits (those are not merged).
// A snapshot that exists but cannot be decoded yields a *PersistenceError.
func Load(src Snapshotter) (*State, []string, error) {
	s := Defaults()
	data, err := src.ReadSnapshot()
	if err != nil {
		return nil, nil, &PersistenceError{Op: "read", Err: err}
	}
	if data == nil {
		return s, nil, nil
	}
	unknown, err := s.merge(data)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "decode", Err: err}
	}
	return s, unknown, nil
}

// Persist overwrites the snapshot in dst with the full current state. A failed
// write yields a *PersistenceError with Op "write".
func (s *State) Persist(dst Snapshotter) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal nerves: %w", err)
	}
	if err := dst.WriteSnapshot(data); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	return nil
}

// #endregion load-persist
