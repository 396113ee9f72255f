package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/nietz/internal/nerve"
	"github.com/danielpatrickdp/nietz/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to nietz.db")
	last := flag.Int("last", 20, "show N most recent versions or journal lines")
	journal := flag.String("journal", "", "show a journal stream instead of versions (ledger|dreams)")
	rollback := flag.String("rollback", "", "make version id the active nerve snapshot")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/nietz.db [--last N] [--journal ledger|dreams] [--rollback id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *rollback != "":
		err = st.Rollback(*rollback)
		if err == nil {
			fmt.Printf("active nerves now %s\n", *rollback)
		}
	case *journal != "":
		err = runJournalMode(st, store.Stream(*journal), *last, *jsonOut)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID string             `json:"version_id"`
	ParentID  string             `json:"parent_id,omitempty"`
	Active    bool               `json:"active"`
	Dominant  string             `json:"dominant"`
	Weights   map[string]float64 `json:"weights"`
	CreatedAt string             `json:"created_at"`
}

func runListMode(st *store.SQLiteStore, last int, jsonOut bool) error {
	versions, err := st.ListVersions(last)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintln(os.Stderr, "no versions found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(versions))
	for i, v := range versions {
		n, _, err := nerve.Load(rawSnapshot(v.WeightsJSON))
		if err != nil {
			return fmt.Errorf("version %s: %w", v.VersionID, err)
		}
		rows[len(versions)-1-i] = listRow{
			VersionID: v.VersionID,
			ParentID:  v.ParentID,
			Active:    v.Active,
			Dominant:  n.Dominant().String(),
			Weights:   n.Weights(),
			CreatedAt: v.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}
	printListTable(rows)
	return nil
}

func printListTable(rows []listRow) {
	fmt.Printf("%-9s  %-1s  %-8s", "Version", "*", "Dominant")
	for _, t := range nerve.Traits() {
		fmt.Printf("  %7s", t)
	}
	fmt.Printf("  %s\n", "Time")

	for _, r := range rows {
		mark := " "
		if r.Active {
			mark = "*"
		}
		fmt.Printf("%-9s  %-1s  %-8s", shortID(r.VersionID), mark, r.Dominant)
		for _, t := range nerve.Traits() {
			fmt.Printf("  %7.2f", r.Weights[t.String()])
		}
		fmt.Printf("  %s\n", r.CreatedAt)
	}
}

// #endregion list-mode

// #region journal-mode

type journalRow struct {
	ID        int64  `json:"id"`
	Line      string `json:"line"`
	CreatedAt string `json:"created_at"`
}

func runJournalMode(st *store.SQLiteStore, stream store.Stream, last int, jsonOut bool) error {
	if stream != store.Ledger && stream != store.Dreams {
		return fmt.Errorf("unknown journal %q (want %s or %s)", stream, store.Ledger, store.Dreams)
	}
	recs, err := st.Journal(stream, last)
	if err != nil {
		return err
	}
	rows := make([]journalRow, len(recs))
	for i, r := range recs {
		rows[i] = journalRow{ID: r.ID, Line: r.Line, CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z")}
	}
	if jsonOut {
		return printJSON(rows)
	}
	for _, r := range rows {
		fmt.Printf("%6d  %s\n", r.ID, r.Line)
	}
	return nil
}

// #endregion journal-mode

// #region output

// rawSnapshot adapts a stored weights blob to nerve.Load.
type rawSnapshot string

func (r rawSnapshot) ReadSnapshot() ([]byte, error) { return []byte(r), nil }

func (r rawSnapshot) WriteSnapshot([]byte) error {
	return fmt.Errorf("read-only snapshot")
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
