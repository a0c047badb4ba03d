package reports

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/stats"
	"trade-journal/internal/store"
)

type fixture struct {
	store   *store.SQLiteStore
	service *Service
	metrics *Metrics
}

func newFixture(t *testing.T, parallel int) *fixture {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine, err := stats.NewEngine(stats.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)

	metrics := NewMetrics(prometheus.NewRegistry())
	return &fixture{
		store:   st,
		service: NewService(st, engine, metrics, zerolog.Nop(), parallel),
		metrics: metrics,
	}
}

func (f *fixture) journal(t *testing.T, name string, entries ...models.RawEntry) int64 {
	t.Helper()
	ctx := context.Background()
	j := &models.Journal{Name: name}
	require.NoError(t, f.store.CreateJournal(ctx, j))
	for i := range entries {
		entries[i].JournalID = j.ID
		require.NoError(t, f.store.AddEntry(ctx, &entries[i]))
	}
	return j.ID
}

func TestService_Compute(t *testing.T) {
	f := newFixture(t, 2)
	id := f.journal(t, "Futures",
		models.RawEntry{EntryDate: "2024-03-04T09:00:00", Result: "Win", PnL: 100.0},
		models.RawEntry{EntryDate: "2024-03-05T10:00:00", Result: "Loss", PnL: -50.0},
		models.RawEntry{EntryDate: "garbage", Result: "Win", PnL: 1.0},
	)

	report, err := f.service.Compute(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Futures", report.JournalName)
	assert.Equal(t, 2, report.TotalTrades)
	assert.Equal(t, 1, report.SkippedEntries)
	assert.InDelta(t, 50.0, report.WinRatePercentage, 1e-9)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SkippedEntries))
}

func TestService_ComputeErrors(t *testing.T) {
	f := newFixture(t, 1)
	empty := f.journal(t, "Empty")

	_, err := f.service.Compute(context.Background(), empty)
	assert.ErrorIs(t, err, apperrors.ErrNoData)

	_, err = f.service.Compute(context.Background(), empty+1000)
	assert.ErrorIs(t, err, apperrors.ErrJournalNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsTotal.WithLabelValues(OutcomeNoData)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsTotal.WithLabelValues(OutcomeNotFound)))
}

func TestService_AllMalformedCountsSkipped(t *testing.T) {
	f := newFixture(t, 1)
	id := f.journal(t, "Broken",
		models.RawEntry{EntryDate: "garbage", Result: "Win", PnL: 1.0},
		models.RawEntry{EntryDate: "31/02/2024", Result: "Loss", PnL: -1.0},
		models.RawEntry{EntryDate: nil, Result: "Win"},
	)

	_, err := f.service.Compute(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNoData)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsTotal.WithLabelValues(OutcomeNoData)))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.SkippedEntries))
}

func TestService_ComputeAll(t *testing.T) {
	f := newFixture(t, 3)
	for i := 0; i < 7; i++ {
		f.journal(t, fmt.Sprintf("J%d", i),
			models.RawEntry{EntryDate: "2024-01-02T10:00:00", Result: "Win", PnL: float64(i)},
		)
	}
	f.journal(t, "No entries")

	results, err := f.service.ComputeAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 8)

	for i := 0; i < 7; i++ {
		r := results[i]
		assert.Equal(t, fmt.Sprintf("J%d", i), r.JournalName)
		require.NotNil(t, r.Report, "journal %s", r.JournalName)
		assert.Equal(t, 1, r.Report.TotalTrades)
		assert.NoError(t, r.Err)
	}

	last := results[7]
	assert.Nil(t, last.Report)
	assert.ErrorIs(t, last.Err, apperrors.ErrNoData)
	assert.NotEmpty(t, last.Error)
}

func TestService_ComputeAllCancelled(t *testing.T) {
	f := newFixture(t, 1)
	f.journal(t, "A", models.RawEntry{EntryDate: "2024-01-02", Result: "Win"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.ComputeAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(OutcomeOK, 0, 3) })
}
