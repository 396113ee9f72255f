package nerve

import (
	"fmt"
	"strings"
)

// #region trait
// Trait identifies one of the eight nerves. The declaration order is the
// tie-break order used by Dominant.
type Trait int

const (
	Child Trait = iota
	Lion
	Camel
	Overman
	Void
	Will
	Chronos
	Aeon

	numTraits = int(Aeon) + 1
)

var traitNames = [numTraits]string{
	"CHILD", "LION", "CAMEL", "OVERMAN", "VOID", "WILL", "CHRONOS", "AEON",
}

// Traits returns every trait in declaration order.
func Traits() []Trait {
	out := make([]Trait, numTraits)
	for i := range out {
		out[i] = Trait(i)
	}
	return out
}

func (t Trait) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Trait(%d)", int(t))
	}
	return traitNames[t]
}

// Valid reports whether t is one of the eight known traits.
func (t Trait) Valid() bool {
	return t >= 0 && int(t) < numTraits
}

// ParseTrait resolves a trait name case-insensitively.
func ParseTrait(name string) (Trait, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range traitNames {
		if n == upper {
			return Trait(i), nil
		}
	}
	return 0, &InvalidTraitError{Name: name}
}

// #endregion trait

// #region errors

// InvalidTraitError reports a reference to a trait outside the closed set.
type InvalidTraitError struct {
	Name  string
	Trait Trait
}

func (e *InvalidTraitError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid trait %q", e.Name)
	}
	return fmt.Sprintf("invalid trait %d", int(e.Trait))
}

// PersistenceError reports a nerve snapshot that cannot be read, decoded or written.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("nerve snapshot %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// #endregion errors

// #region snapshotter

// Snapshotter reads and overwrites the serialized nerve snapshot.
// ReadSnapshot returns (nil, nil) when no snapshot has been written yet.
type Snapshotter interface {
	ReadSnapshot() ([]byte, error)
	WriteSnapshot(data []byte) error
}

// #endregion snapshotter
