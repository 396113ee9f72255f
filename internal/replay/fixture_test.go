package replay

import (
	"path/filepath"
	"testing"
)

// #region fixture-tests

// TestFixture_GhostSession replays the scripted session and compares kind,
// dominant trait and, where pinned, the exact text of each turn.
func TestFixture_GhostSession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "ghost_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	start, err := f.StartState()
	if err != nil {
		t.Fatalf("StartState: %v", err)
	}

	results, _, err := Replay(start, f.ToInteractions(), f.ToReplayConfig(nil))
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}

	for i, expected := range f.ExpectedResults {
		actual := results[i]
		if actual.TurnID != expected.TurnID {
			t.Errorf("turn %d: expected turn_id=%s, got %s", i, expected.TurnID, actual.TurnID)
		}
		if actual.Kind.String() != expected.Kind {
			t.Errorf("turn %d (%s): expected kind=%s, got %s", i, expected.TurnID, expected.Kind, actual.Kind)
		}
		if actual.Dominant.String() != expected.Dominant {
			t.Errorf("turn %d (%s): expected dominant=%s, got %s", i, expected.TurnID, expected.Dominant, actual.Dominant)
		}
		if expected.Text != "" && actual.Text != expected.Text {
			t.Errorf("turn %d (%s): expected text %q, got %q", i, expected.TurnID, expected.Text, actual.Text)
		}
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "missing.json")); err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

// #endregion fixture-tests
