package session

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/danielpatrickdp/nietz/internal/config"
	"github.com/danielpatrickdp/nietz/internal/nerve"
	"github.com/danielpatrickdp/nietz/internal/store"
)

// #region helpers

type fixture struct {
	cfg *config.Config
	mem *store.MemoryStore
}

func newFixture(t *testing.T, subjects, voices []string) fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Toybox = filepath.Join(dir, "toybox")
	cfg.Paths.Voice = filepath.Join(dir, "voice")
	writeCorpus(t, cfg.Paths.Toybox, subjects)
	writeCorpus(t, cfg.Paths.Voice, voices)
	return fixture{cfg: cfg, mem: store.NewMemoryStore()}
}

func writeCorpus(t *testing.T, dir string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if len(lines) == 0 {
		return
	}
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "corpus.txt"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f fixture) open(t *testing.T, seed uint64) *Session {
	t.Helper()
	s, err := New(Options{
		Config: f.cfg,
		Store:  f.mem,
		Rand:   rand.New(rand.NewPCG(seed, seed)),
		Now:    func() time.Time { return time.Date(2026, 6, 1, 15, 0, 0, 0, time.Local) },
		Logger: zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

var (
	subjectLines = []string{
		", the lion breaks every rule written on its scales",
		"Silence is the gate through which all things pass",
		"A tightrope walker crosses the market square.",
	}
	voiceLines = []string{"Thus spoke the ghost of the mountain:"}
)

// #endregion helpers

// #region turn-tests

func TestHandle_UtteranceWritesLedgerAndNerves(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)

	resp, err := s.Handle("I choose no master")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Kind != KindUtterance {
		t.Fatalf("expected utterance, got %s (%q)", resp.Kind, resp.Text)
	}
	// "choose"/"master" match nothing; dominant is LION after reinforcement.
	want := "Thus spoke the ghost of the mountain: the lion breaks every rule written on its scales."
	if resp.Text != want {
		t.Fatalf("got %q, want %q", resp.Text, want)
	}

	ledgerLines := f.mem.Lines(store.Ledger)
	if len(ledgerLines) != 1 || !strings.HasSuffix(ledgerLines[0], "] I choose no master -> "+want) {
		t.Fatalf("unexpected ledger %v", ledgerLines)
	}

	persisted, _, err := nerve.Load(f.mem)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if math.Abs(persisted.Get(nerve.Lion)-1.1) > 1e-9 {
		t.Fatalf("expected persisted LION 1.1, got %v", persisted.Get(nerve.Lion))
	}
}

func TestHandle_DeterministicWithSeed(t *testing.T) {
	f1 := newFixture(t, subjectLines, voiceLines)
	f2 := newFixture(t, subjectLines, voiceLines)
	a, _ := f1.open(t, 42).Handle("zzzz")
	b, _ := f2.open(t, 42).Handle("zzzz")
	if a.Text != b.Text {
		t.Fatalf("%q != %q", a.Text, b.Text)
	}
}

func TestHandle_EmptySubjectCorpus(t *testing.T) {
	f := newFixture(t, nil, voiceLines)
	s := f.open(t, 1)

	resp, err := s.Handle("hello there")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Kind != KindEmptyCorpus || resp.Text != EmptyCorpusText {
		t.Fatalf("expected empty corpus response, got %+v", resp)
	}
	if len(f.mem.Lines(store.Ledger)) != 0 {
		t.Fatal("empty corpus must not write the ledger")
	}
}

func TestHandle_EmptyVoiceCorpusFallsBack(t *testing.T) {
	f := newFixture(t, subjectLines, nil)
	resp, err := f.open(t, 1).Handle("market")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Text != "The ghost dictates a tightrope walker crosses the market square." {
		t.Fatalf("unexpected text %q", resp.Text)
	}
}

func TestHandle_LedgerFailureDoesNotCrash(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)
	f.mem.WriteErr = errors.New("disk full")

	resp, err := s.Handle("market")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Kind != KindUtterance {
		t.Fatalf("expected utterance despite write failure, got %s", resp.Kind)
	}
}

func TestHandle_Resonance(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	resp, _ := f.open(t, 1).Handle("speak, ghost")
	if resp.Result == nil || !resp.Result.Resonance {
		t.Fatal("expected resonance")
	}
	if !strings.HasPrefix(resp.Render(), "\n *\n") {
		t.Fatalf("expected star marker, got %q", resp.Render())
	}
}

func TestNew_CorruptSnapshot(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	f.mem.WriteSnapshot([]byte("not json"))
	_, err := New(Options{Config: f.cfg, Store: f.mem})
	var pe *nerve.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestNew_RejectsNegativeStep(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	f.cfg.Nerves.KeywordStep = -0.1
	_, err := New(Options{Config: f.cfg, Store: f.mem})
	if err == nil {
		t.Fatal("expected negative keyword step to be rejected")
	}
	if data, _ := f.mem.ReadSnapshot(); data != nil {
		t.Fatalf("nothing should be written, got %s", data)
	}
}

func TestHandle_SnapshotFailureStillAnswers(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)
	f.mem.WriteErr = errors.New("disk full")

	resp, err := s.Handle("I choose no master")
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Kind != KindUtterance {
		t.Fatalf("expected utterance, got %s", resp.Kind)
	}
	if math.Abs(s.Nerves().Get(nerve.Lion)-1.1) > 1e-9 {
		t.Fatalf("expected in-memory LION 1.1, got %v", s.Nerves().Get(nerve.Lion))
	}
}

// #endregion turn-tests

// #region directive-tests

func TestHandle_DirectivesBypassNervesAndLedger(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)
	before := s.Nerves().Clone()

	for _, in := range []string{"<map", "<clear", "<history", "<no master", "<MAP"} {
		resp, err := s.Handle(in)
		if err != nil {
			t.Fatalf("Handle(%q): %v", in, err)
		}
		if resp.Kind != KindDirective {
			t.Fatalf("Handle(%q): expected directive, got %s", in, resp.Kind)
		}
	}
	if !s.Nerves().Equal(before, 0) {
		t.Fatal("directives must not reinforce nerves")
	}
	if len(f.mem.Lines(store.Ledger)) != 0 {
		t.Fatal("directives must not write the ledger")
	}
	if snap, _ := f.mem.ReadSnapshot(); snap != nil {
		t.Fatal("directives must not persist nerves")
	}
}

func TestDirective_Outputs(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)

	resp, _ := s.Handle("<clear")
	if !resp.Clear || resp.Text != ClearedText {
		t.Fatalf("unexpected clear response %+v", resp)
	}
	resp, _ = s.Handle("<dance")
	if resp.Text != "[SYSTEM]: Command <dance recognized." {
		t.Fatalf("unexpected unknown directive text %q", resp.Text)
	}
	resp, _ = s.Handle("<map")
	if !strings.Contains(resp.Text, "   CHILD: ██ (1.00)") {
		t.Fatalf("unexpected map:\n%s", resp.Text)
	}
}

func TestDirective_HistoryShowsLastFive(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)
	for i := 0; i < 7; i++ {
		s.Handle("market")
	}
	resp, _ := s.Handle("<history")
	if n := len(strings.Split(resp.Text, "\n")); n != 5 {
		t.Fatalf("expected 5 history lines, got %d:\n%s", n, resp.Text)
	}
}

func TestHistory_RecalledFromLedger(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	f.open(t, 1).Handle("market")

	reopened := f.open(t, 2)
	h := reopened.History()
	if len(h) != 1 || !strings.Contains(h[0], "market ->") {
		t.Fatalf("expected recalled ledger line, got %v", h)
	}
}

func TestIsExit(t *testing.T) {
	for _, in := range []string{"exit", "QUIT", "<exit", " <quit "} {
		if !IsExit(in) {
			t.Errorf("IsExit(%q) = false", in)
		}
	}
	for _, in := range []string{"exiting", "<map", "quit now"} {
		if IsExit(in) {
			t.Errorf("IsExit(%q) = true", in)
		}
	}
}

func TestHandle_BlankAndExit(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)
	if resp, _ := s.Handle("   "); resp.Kind != KindIgnored {
		t.Fatalf("expected ignored, got %s", resp.Kind)
	}
	if resp, _ := s.Handle("quit"); resp.Kind != KindExit {
		t.Fatalf("expected exit, got %s", resp.Kind)
	}
	if snap, _ := f.mem.ReadSnapshot(); snap != nil {
		t.Fatal("exit must not reinforce")
	}
}

// #endregion directive-tests

// #region reflect-tests

func TestReflect_OnlyOnce(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)

	e, err := s.Reflect()
	if err != nil || e == nil {
		t.Fatalf("expected a dream, got %v (%v)", e, err)
	}
	e, err = s.Reflect()
	if err != nil || e != nil {
		t.Fatalf("second reflection must be a no-op, got %v (%v)", e, err)
	}
	if n := len(f.mem.Lines(store.Dreams)); n != 1 {
		t.Fatalf("expected 1 dream, got %d", n)
	}
}

func TestReflect_EmptyVoiceIsSilent(t *testing.T) {
	f := newFixture(t, subjectLines, nil)
	e, err := f.open(t, 1).Reflect()
	if err != nil || e != nil {
		t.Fatalf("expected silent no-op, got %v (%v)", e, err)
	}
}

func TestWakeBanner(t *testing.T) {
	f := newFixture(t, subjectLines, voiceLines)
	s := f.open(t, 1)
	banner := s.WakeBanner()
	if !strings.Contains(banner, "NIETZ v13.5 | AEON MATURITY: 1.00") {
		t.Fatalf("unexpected banner:\n%s", banner)
	}
	if !strings.Contains(banner, "LAST DREAM: "+GenesisDream) {
		t.Fatalf("expected genesis dream:\n%s", banner)
	}

	s.Reflect()
	banner = f.open(t, 2).WakeBanner()
	if strings.Contains(banner, GenesisDream) || !strings.Contains(banner, "LAST DREAM: [2026-06-01 15:00] Thus spoke") {
		t.Fatalf("expected last dream recalled:\n%s", banner)
	}
}

// #endregion reflect-tests
