// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// SQLiteStore implements JournalStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// execer is a querier that can also write.
type execer interface {
	querier
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// NewSQLiteStore creates a new SQLite-based journal store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, apperrors.NewStoreError("open", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.NewStoreError("init schema", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
// entry_date is TEXT so that unparseable values reach the normalizer intact
// instead of being coerced by the driver.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS journals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		has_emotions INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS checklist_templates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		journal_id INTEGER NOT NULL REFERENCES journals(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		journal_id INTEGER NOT NULL REFERENCES journals(id) ON DELETE CASCADE,
		entry_date TEXT,
		symbol TEXT NOT NULL DEFAULT '',
		position_type TEXT NOT NULL DEFAULT '',
		strategy TEXT NOT NULL DEFAULT '',
		result TEXT NOT NULL DEFAULT '',
		emotion TEXT NOT NULL DEFAULT '',
		pnl REAL,
		initial_rr REAL,
		trade_rating REAL
	);

	CREATE TABLE IF NOT EXISTS checklist_statuses (
		entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
		template_id INTEGER NOT NULL,
		checked INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (entry_id, template_id)
	);

	CREATE INDEX IF NOT EXISTS idx_templates_journal ON checklist_templates(journal_id, display_order);
	CREATE INDEX IF NOT EXISTS idx_entries_journal ON entries(journal_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewStoreError("ping", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Journal Methods
// ============================================================================

// ListJournals returns every journal ordered by id.
func (s *SQLiteStore) ListJournals(ctx context.Context) ([]models.Journal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, has_emotions, created_at
		FROM journals ORDER BY id
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("list journals", err)
	}
	defer rows.Close()

	journals := []models.Journal{}
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("scan journal", err)
		}
		journals = append(journals, *j)
	}

	return journals, rows.Err()
}

// GetJournal returns one journal, or ErrJournalNotFound.
func (s *SQLiteStore) GetJournal(ctx context.Context, journalID int64) (*models.Journal, error) {
	return getJournal(ctx, s.db, journalID)
}

func getJournal(ctx context.Context, q querier, journalID int64) (*models.Journal, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, description, has_emotions, created_at
		FROM journals WHERE id = ?
	`, journalID)
	j, err := scanJournal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrJournalNotFound, journalID)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get journal", err)
	}
	return j, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJournal(sc scanner) (*models.Journal, error) {
	var j models.Journal
	var hasEmotions int
	var createdAt string
	if err := sc.Scan(&j.ID, &j.Name, &j.Description, &hasEmotions, &createdAt); err != nil {
		return nil, err
	}
	j.HasEmotions = hasEmotions == 1
	j.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &j, nil
}

// CreateJournal inserts a journal and sets its ID. A zero CreatedAt is
// replaced with the current time.
func (s *SQLiteStore) CreateJournal(ctx context.Context, journal *models.Journal) error {
	return createJournal(ctx, s.db, journal)
}

func createJournal(ctx context.Context, q execer, journal *models.Journal) error {
	if journal.Name == "" {
		return apperrors.NewValidationError("name", journal.Name, "journal name is required")
	}
	if journal.CreatedAt.IsZero() {
		journal.CreatedAt = time.Now().UTC()
	}
	hasEmotions := 0
	if journal.HasEmotions {
		hasEmotions = 1
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO journals (name, description, has_emotions, created_at)
		VALUES (?, ?, ?, ?)
	`, journal.Name, journal.Description, hasEmotions, journal.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return apperrors.NewStoreError("create journal", err)
	}
	journal.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.NewStoreError("create journal", err)
	}
	return nil
}

// ============================================================================
// Checklist Template Methods
// ============================================================================

// GetChecklistTemplates returns a journal's templates in display order.
func (s *SQLiteStore) GetChecklistTemplates(ctx context.Context, journalID int64) ([]models.ChecklistTemplate, error) {
	return getTemplates(ctx, s.db, journalID)
}

func getTemplates(ctx context.Context, q querier, journalID int64) ([]models.ChecklistTemplate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, journal_id, text, display_order
		FROM checklist_templates
		WHERE journal_id = ?
		ORDER BY display_order, id
	`, journalID)
	if err != nil {
		return nil, apperrors.NewStoreError("get templates", err)
	}
	defer rows.Close()

	templates := []models.ChecklistTemplate{}
	for rows.Next() {
		var t models.ChecklistTemplate
		if err := rows.Scan(&t.ID, &t.JournalID, &t.Text, &t.Order); err != nil {
			return nil, apperrors.NewStoreError("scan template", err)
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// AddChecklistTemplate inserts a template and sets its ID. A negative Order
// appends the template after the journal's existing ones.
func (s *SQLiteStore) AddChecklistTemplate(ctx context.Context, template *models.ChecklistTemplate) error {
	return addTemplate(ctx, s.db, template)
}

func addTemplate(ctx context.Context, q execer, template *models.ChecklistTemplate) error {
	if template.Text == "" {
		return apperrors.NewValidationError("text", template.Text, "template text is required")
	}
	if template.Order < 0 {
		err := q.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(display_order), -1) + 1 FROM checklist_templates WHERE journal_id = ?
		`, template.JournalID).Scan(&template.Order)
		if err != nil {
			return apperrors.NewStoreError("next template order", err)
		}
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO checklist_templates (journal_id, text, display_order)
		VALUES (?, ?, ?)
	`, template.JournalID, template.Text, template.Order)
	if err != nil {
		return apperrors.NewStoreError("add template", err)
	}
	template.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.NewStoreError("add template", err)
	}
	return nil
}

// ============================================================================
// Entry Methods
// ============================================================================

// GetEntries returns a journal's entries ordered by id. Date and numeric
// columns are returned as the database holds them so that degraded values
// can be judged by the caller.
func (s *SQLiteStore) GetEntries(ctx context.Context, journalID int64) ([]models.RawEntry, error) {
	return getEntries(ctx, s.db, journalID)
}

func getEntries(ctx context.Context, q querier, journalID int64) ([]models.RawEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, journal_id, entry_date, symbol, position_type, strategy, result, emotion, pnl, initial_rr, trade_rating
		FROM entries
		WHERE journal_id = ?
		ORDER BY id
	`, journalID)
	if err != nil {
		return nil, apperrors.NewStoreError("get entries", err)
	}
	defer rows.Close()

	entries := []models.RawEntry{}
	index := make(map[int64]int)
	for rows.Next() {
		var e models.RawEntry
		if err := rows.Scan(&e.ID, &e.JournalID, &e.EntryDate, &e.Symbol, &e.PositionType, &e.Strategy, &e.Result, &e.Emotion, &e.PnL, &e.InitialRR, &e.TradeRating); err != nil {
			return nil, apperrors.NewStoreError("scan entry", err)
		}
		e.ChecklistStatuses = make(map[int64]bool)
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("get entries", err)
	}
	rows.Close()

	statusRows, err := q.QueryContext(ctx, `
		SELECT s.entry_id, s.template_id, s.checked
		FROM checklist_statuses s
		JOIN entries e ON e.id = s.entry_id
		WHERE e.journal_id = ?
	`, journalID)
	if err != nil {
		return nil, apperrors.NewStoreError("get checklist statuses", err)
	}
	defer statusRows.Close()

	for statusRows.Next() {
		var entryID, templateID int64
		var checked int
		if err := statusRows.Scan(&entryID, &templateID, &checked); err != nil {
			return nil, apperrors.NewStoreError("scan checklist status", err)
		}
		if i, ok := index[entryID]; ok {
			entries[i].ChecklistStatuses[templateID] = checked == 1
		}
	}

	return entries, statusRows.Err()
}

// AddEntry inserts an entry with its checklist statuses and sets its ID.
func (s *SQLiteStore) AddEntry(ctx context.Context, entry *models.RawEntry) error {
	return s.InTx(ctx, func(w Writer) error {
		return w.AddEntry(ctx, entry)
	})
}

func addEntry(ctx context.Context, q execer, entry *models.RawEntry) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO entries (journal_id, entry_date, symbol, position_type, strategy, result, emotion, pnl, initial_rr, trade_rating)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.JournalID, storedDate(entry.EntryDate), entry.Symbol, entry.PositionType, entry.Strategy, entry.Result, entry.Emotion,
		storedNumber(entry.PnL), storedNumber(entry.InitialRR), storedNumber(entry.TradeRating))
	if err != nil {
		return apperrors.NewStoreError("add entry", err)
	}
	entry.ID, err = res.LastInsertId()
	if err != nil {
		return apperrors.NewStoreError("add entry", err)
	}

	for templateID, checked := range entry.ChecklistStatuses {
		c := 0
		if checked {
			c = 1
		}
		if _, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO checklist_statuses (entry_id, template_id, checked)
			VALUES (?, ?, ?)
		`, entry.ID, templateID, c); err != nil {
			return apperrors.NewStoreError("add checklist status", err)
		}
	}
	return nil
}

// InTx runs fn against a Writer bound to one transaction, committing when fn
// succeeds and rolling back otherwise.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(w Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("begin", err)
	}
	defer tx.Rollback()

	if err := fn(&txWriter{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("commit", err)
	}
	return nil
}

// txWriter writes through an open transaction.
type txWriter struct {
	tx *sql.Tx
}

func (w *txWriter) GetJournal(ctx context.Context, journalID int64) (*models.Journal, error) {
	return getJournal(ctx, w.tx, journalID)
}

func (w *txWriter) CreateJournal(ctx context.Context, journal *models.Journal) error {
	return createJournal(ctx, w.tx, journal)
}

func (w *txWriter) AddChecklistTemplate(ctx context.Context, template *models.ChecklistTemplate) error {
	return addTemplate(ctx, w.tx, template)
}

func (w *txWriter) AddEntry(ctx context.Context, entry *models.RawEntry) error {
	return addEntry(ctx, w.tx, entry)
}

// Snapshot reads the journal, its templates and entries in one read-only
// transaction so a concurrent import cannot produce a torn view. Busy and
// locked errors are retried with backoff.
func (s *SQLiteStore) Snapshot(ctx context.Context, journalID int64) (*Snapshot, error) {
	return retryWithResult(ctx, defaultRetryConfig(), func() (*Snapshot, error) {
		return s.snapshot(ctx, journalID)
	})
}

func (s *SQLiteStore) snapshot(ctx context.Context, journalID int64) (*Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, apperrors.NewStoreError("snapshot", err)
	}
	defer tx.Rollback()

	journal, err := getJournal(ctx, tx, journalID)
	if err != nil {
		return nil, err
	}
	templates, err := getTemplates(ctx, tx, journalID)
	if err != nil {
		return nil, err
	}
	entries, err := getEntries(ctx, tx, journalID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Journal: *journal, Templates: templates, Entries: entries}, nil
}

// storedDate keeps instants unambiguous and everything else verbatim.
func storedDate(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Format(time.RFC3339Nano)
	case []byte:
		return string(t)
	}
	if text, ok := jsonText(v); ok {
		return text
	}
	return v
}

// storedNumber converts numeric types the driver does not know.
func storedNumber(v any) any {
	switch n := v.(type) {
	case decimal.Decimal:
		return n.String()
	case decimal.NullDecimal:
		if !n.Valid {
			return nil
		}
		return n.Decimal.String()
	case json.Number:
		return n.String()
	case []byte:
		return string(n)
	}
	if text, ok := jsonText(v); ok {
		return text
	}
	return v
}

// jsonText renders booleans, objects and arrays as their JSON text so they
// reach the normalizer as non-numeric strings.
func jsonText(v any) (string, bool) {
	switch v.(type) {
	case bool, map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(b), true
	}
	return "", false
}
