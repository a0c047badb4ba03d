package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: an entry written with AddEntry is read back by GetEntries with
// the same values and checklist statuses.
func TestProperty_EntryRoundTrip(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "roundtrip.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"ES", "NQ", "EURUSD", "GBPJPY", "BTCUSD", ""}
	results := []string{"Win", "Loss", "BE", "PartialBE", ""}

	properties.Property("Entry round-trip preserves values", prop.ForAll(
		func(symbolIdx, resultIdx int, cents int64, offsetMinutes int, checks []bool) bool {
			journal := &models.Journal{Name: "prop"}
			if err := st.CreateJournal(ctx, journal); err != nil {
				t.Logf("Failed to create journal: %v", err)
				return false
			}

			statuses := make(map[int64]bool, len(checks))
			for i, c := range checks {
				statuses[int64(i+1)] = c
			}

			date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offsetMinutes) * time.Minute)
			pnl := float64(cents) / 100
			in := &models.RawEntry{
				JournalID:         journal.ID,
				EntryDate:         date,
				Symbol:            symbols[symbolIdx%len(symbols)],
				Result:            results[resultIdx%len(results)],
				PnL:               pnl,
				ChecklistStatuses: statuses,
			}
			if err := st.AddEntry(ctx, in); err != nil {
				t.Logf("Failed to add entry: %v", err)
				return false
			}

			out, err := st.GetEntries(ctx, journal.ID)
			if err != nil || len(out) != 1 {
				t.Logf("Failed to read entries: %v (%d rows)", err, len(out))
				return false
			}
			got := out[0]

			if got.ID != in.ID || got.Symbol != in.Symbol || got.Result != in.Result {
				return false
			}
			if f, ok := got.PnL.(float64); !ok || f != pnl {
				t.Logf("pnl mismatch: %v vs %v", got.PnL, pnl)
				return false
			}
			var stored string
			switch d := got.EntryDate.(type) {
			case string:
				stored = d
			case []byte:
				stored = string(d)
			}
			parsed, err := time.Parse(time.RFC3339Nano, stored)
			if err != nil || !parsed.Equal(date) {
				return false
			}
			if len(got.ChecklistStatuses) != len(statuses) {
				return false
			}
			for id, c := range statuses {
				if got.ChecklistStatuses[id] != c {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
		gen.Int64Range(-10000000, 10000000),
		gen.IntRange(0, 60*24*365),
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}
