package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
	"trade-journal/internal/stats"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStore_Journals(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	journals, err := st.ListJournals(ctx)
	require.NoError(t, err)
	assert.Empty(t, journals)

	j := &models.Journal{Name: "Futures", Description: "ES and NQ", HasEmotions: true}
	require.NoError(t, st.CreateJournal(ctx, j))
	assert.NotZero(t, j.ID)
	assert.False(t, j.CreatedAt.IsZero())

	got, err := st.GetJournal(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "Futures", got.Name)
	assert.True(t, got.HasEmotions)
	assert.WithinDuration(t, j.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = st.GetJournal(ctx, j.ID+100)
	assert.ErrorIs(t, err, apperrors.ErrJournalNotFound)

	err = st.CreateJournal(ctx, &models.Journal{})
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)
}

func TestSQLiteStore_TemplatesInDisplayOrder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	j := &models.Journal{Name: "Forex"}
	require.NoError(t, st.CreateJournal(ctx, j))

	second := &models.ChecklistTemplate{JournalID: j.ID, Text: "Second", Order: 1}
	first := &models.ChecklistTemplate{JournalID: j.ID, Text: "First", Order: 0}
	appended := &models.ChecklistTemplate{JournalID: j.ID, Text: "Appended", Order: -1}
	require.NoError(t, st.AddChecklistTemplate(ctx, second))
	require.NoError(t, st.AddChecklistTemplate(ctx, first))
	require.NoError(t, st.AddChecklistTemplate(ctx, appended))
	assert.Equal(t, 2, appended.Order)

	templates, err := st.GetChecklistTemplates(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Equal(t, []string{"First", "Second", "Appended"},
		[]string{templates[0].Text, templates[1].Text, templates[2].Text})
}

func TestSQLiteStore_EntriesKeepDegradedValues(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	j := &models.Journal{Name: "Crypto"}
	require.NoError(t, st.CreateJournal(ctx, j))
	tpl := &models.ChecklistTemplate{JournalID: j.ID, Text: "Plan"}
	require.NoError(t, st.AddChecklistTemplate(ctx, tpl))

	good := &models.RawEntry{
		JournalID:         j.ID,
		EntryDate:         time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
		Symbol:            "BTCUSD",
		Result:            "Win",
		PnL:               125.5,
		InitialRR:         "2.5",
		ChecklistStatuses: map[int64]bool{tpl.ID: true},
	}
	bad := &models.RawEntry{
		JournalID: j.ID,
		EntryDate: "someday",
		Result:    "Loss",
		PnL:       "n/a",
	}
	require.NoError(t, st.AddEntry(ctx, good))
	require.NoError(t, st.AddEntry(ctx, bad))

	entries, err := st.GetEntries(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, good.ID, entries[0].ID)
	assert.Equal(t, "2024-03-04T09:30:00Z", asString(entries[0].EntryDate))
	assert.Equal(t, 125.5, entries[0].PnL)
	// numeric text is converted by the REAL column affinity
	assert.Equal(t, 2.5, entries[0].InitialRR)
	assert.Nil(t, entries[0].TradeRating)
	assert.Equal(t, map[int64]bool{tpl.ID: true}, entries[0].ChecklistStatuses)

	assert.Equal(t, "someday", asString(entries[1].EntryDate))
	assert.Equal(t, "n/a", asString(entries[1].PnL))
	assert.Empty(t, entries[1].ChecklistStatuses)
}

func TestSQLiteStore_Snapshot(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Snapshot(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrJournalNotFound)

	j := &models.Journal{Name: "Stocks"}
	require.NoError(t, st.CreateJournal(ctx, j))
	require.NoError(t, st.AddChecklistTemplate(ctx, &models.ChecklistTemplate{JournalID: j.ID, Text: "A"}))
	require.NoError(t, st.AddEntry(ctx, &models.RawEntry{JournalID: j.ID, EntryDate: "2024-01-02"}))

	other := &models.Journal{Name: "Other"}
	require.NoError(t, st.CreateJournal(ctx, other))
	require.NoError(t, st.AddEntry(ctx, &models.RawEntry{JournalID: other.ID, EntryDate: "2024-01-03"}))

	snap, err := st.Snapshot(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stocks", snap.Journal.Name)
	assert.Len(t, snap.Templates, 1)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "2024-01-02", asString(snap.Entries[0].EntryDate))
}

func TestImportJSONDir(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := t.TempDir()

	files := map[string]string{
		JournalsFile: `[
			{"id": 5, "name": "Main", "description": null, "has_emotions": true, "created_at": "2024-01-01T10:00:00.123456"},
			{"id": 9, "name": "Side", "description": "demo"}
		]`,
		TemplatesFile: `[
			{"id": 11, "journal_id": 5, "text": "Checked news", "order": 0},
			{"id": 12, "journal_id": 77, "text": "orphan", "order": 0}
		]`,
		EntriesFile: `[
			{"id": 100, "journal_id": 5, "entry_date": "2024-02-01T09:15:00", "symbol": "DAX", "result": "Win", "pnl": 250, "initial_rr": "1.5", "emotion": null},
			{"id": 101, "journal_id": 5, "entry_date": null, "symbol": null, "result": "Loss", "pnl": -100.25},
			{"id": 102, "journal_id": 77, "entry_date": "2024-02-02T09:15:00"}
		]`,
		StatusesFile: `[
			{"entry_id": 100, "template_id": 11, "checked": true},
			{"entry_id": 101, "template_id": 11, "checked": false},
			{"entry_id": 100, "template_id": 12, "checked": true}
		]`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}

	summary, err := ImportJSONDir(ctx, st, dir)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Journals: 2, Templates: 1, Entries: 2, Statuses: 2}, summary)

	journals, err := st.ListJournals(ctx)
	require.NoError(t, err)
	require.Len(t, journals, 2)
	main := journals[0]
	assert.Equal(t, "Main", main.Name)
	assert.Equal(t, 2024, main.CreatedAt.Year())

	templates, err := st.GetChecklistTemplates(ctx, main.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	entries, err := st.GetEntries(ctx, main.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "DAX", entries[0].Symbol)
	assert.Equal(t, 250.0, entries[0].PnL)
	assert.Equal(t, map[int64]bool{templates[0].ID: true}, entries[0].ChecklistStatuses)
	assert.Nil(t, entries[1].EntryDate)
	assert.Equal(t, map[int64]bool{templates[0].ID: false}, entries[1].ChecklistStatuses)
}

func TestImportJSONDir_Errors(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := ImportJSONDir(ctx, st, t.TempDir())
	require.Error(t, err, "journals.json is required")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, JournalsFile), []byte(`{"broken": `), 0644))
	_, err = ImportJSONDir(ctx, st, dir)
	var dataErr *apperrors.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Equal(t, JournalsFile, dataErr.Source)
}

func TestImportJSONDir_NonScalarNumbers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, JournalsFile), []byte(`[{"id": 1, "name": "Odd"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, EntriesFile), []byte(`[
		{"id": 1, "journal_id": 1, "entry_date": "2024-02-01T09:15:00", "result": "Win", "pnl": true, "initial_rr": {"x": 1}},
		{"id": 2, "journal_id": 1, "entry_date": "2024-02-02T09:15:00", "result": "Loss", "trade_rating": [4, 5]},
		{"id": 3, "journal_id": 1, "entry_date": false, "result": "Win", "pnl": 10}
	]`), 0644))

	summary, err := ImportJSONDir(ctx, st, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Entries)

	journals, err := st.ListJournals(ctx)
	require.NoError(t, err)
	require.Len(t, journals, 1)

	snap, err := st.Snapshot(ctx, journals[0].ID)
	require.NoError(t, err)
	require.Len(t, snap.Entries, 3)
	assert.Equal(t, "true", asString(snap.Entries[0].PnL))
	assert.Equal(t, `{"x":1}`, asString(snap.Entries[0].InitialRR))
	assert.Equal(t, "[4,5]", asString(snap.Entries[1].TradeRating))
	assert.Equal(t, "false", asString(snap.Entries[2].EntryDate))

	engine, err := stats.NewEngine(stats.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	report, err := engine.Compute(stats.Input{Entries: snap.Entries, Templates: snap.Templates})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalTrades)
	assert.Equal(t, 1, report.SkippedEntries)
	assert.Nil(t, report.AveragePnL, "a boolean is not a P&L")
	assert.Nil(t, report.AverageInitialRR)
	assert.Nil(t, report.AverageTradeRating)
}

func TestImportJSONDir_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, JournalsFile), []byte(`[{"id": 1, "name": "Kept?"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplatesFile), []byte(`[{"id": 2, "journal_id": 1, "text": ""}]`), 0644))

	summary, err := ImportJSONDir(ctx, st, dir)
	assert.ErrorIs(t, err, apperrors.ErrInputValidation)
	assert.Contains(t, err.Error(), "importing template 2")
	assert.Equal(t, ImportSummary{}, summary)

	journals, err := st.ListJournals(ctx)
	require.NoError(t, err)
	assert.Empty(t, journals, "a failed import leaves nothing behind")
}

func TestSQLiteStore_InTx(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	boom := errors.New("boom")

	err := st.InTx(ctx, func(w Writer) error {
		j := &models.Journal{Name: "Discarded"}
		require.NoError(t, w.CreateJournal(ctx, j))
		require.NoError(t, w.AddEntry(ctx, &models.RawEntry{JournalID: j.ID, EntryDate: "2024-01-02"}))
		_, err := w.GetJournal(ctx, j.ID)
		require.NoError(t, err, "writes are visible inside the transaction")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	journals, err := st.ListJournals(ctx)
	require.NoError(t, err)
	assert.Empty(t, journals)

	var id int64
	require.NoError(t, st.InTx(ctx, func(w Writer) error {
		j := &models.Journal{Name: "Kept"}
		if err := w.CreateJournal(ctx, j); err != nil {
			return err
		}
		id = j.ID
		return w.AddChecklistTemplate(ctx, &models.ChecklistTemplate{JournalID: j.ID, Text: "Plan", Order: -1})
	}))
	templates, err := st.GetChecklistTemplates(ctx, id)
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := ImportCSV(ctx, st, 42, strings.NewReader("entry_date\n2024-01-01\n"))
	assert.ErrorIs(t, err, apperrors.ErrJournalNotFound)

	j := &models.Journal{Name: "CSV"}
	require.NoError(t, st.CreateJournal(ctx, j))

	csv := `entry_date,symbol,position_type,strategy,result,pnl,initial_rr,trade_rating,emotion
2024-03-04 09:30:00,ES,Long,Breakout,Win,120.5,2,4,calm
2024-03-05 14:00:00,NQ,Short,,Loss,-60,,,
`
	added, err := ImportCSV(ctx, st, j.ID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	entries, err := st.GetEntries(ctx, j.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ES", entries[0].Symbol)
	assert.Equal(t, "Long", entries[0].PositionType)
	assert.Equal(t, 120.5, entries[0].PnL)
	assert.Equal(t, "", entries[1].Strategy)
	assert.Nil(t, entries[1].InitialRR)
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

func TestSQLiteStore_Ping(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	require.NoError(t, st.Ping(context.Background()))

	require.NoError(t, st.Close())
	assert.ErrorIs(t, st.Ping(context.Background()), apperrors.ErrDatabaseError)
}
