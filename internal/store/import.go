package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// Data files of a journal export directory.
const (
	JournalsFile  = "journals.json"
	TemplatesFile = "templates.json"
	EntriesFile   = "entries.json"
	StatusesFile  = "statuses.json"
)

// ImportSummary counts what an import created.
type ImportSummary struct {
	Journals  int `json:"journals"`
	Templates int `json:"templates"`
	Entries   int `json:"entries"`
	Statuses  int `json:"statuses"`
}

type jsonJournal struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HasEmotions bool    `json:"has_emotions"`
	CreatedAt   *string `json:"created_at"`
}

type jsonTemplate struct {
	ID        int64  `json:"id"`
	JournalID int64  `json:"journal_id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
}

type jsonEntry struct {
	ID           int64   `json:"id"`
	JournalID    int64   `json:"journal_id"`
	EntryDate    any     `json:"entry_date"`
	Symbol       *string `json:"symbol"`
	PositionType *string `json:"position_type"`
	Strategy     *string `json:"strategy"`
	Result       *string `json:"result"`
	Emotion      *string `json:"emotion"`
	PnL          any     `json:"pnl"`
	InitialRR    any     `json:"initial_rr"`
	TradeRating  any     `json:"trade_rating"`
}

type jsonStatus struct {
	EntryID    int64 `json:"entry_id"`
	TemplateID int64 `json:"template_id"`
	Checked    bool  `json:"checked"`
}

// ImportJSONDir loads a directory of JSON data files into st. journals.json
// is required; the other files are optional. Record ids are reassigned by the
// store and references between files are remapped accordingly. Entries and
// templates that reference an unknown journal are skipped. The import is
// atomic: on error nothing is kept and the summary is zero.
func ImportJSONDir(ctx context.Context, st JournalStore, dir string) (ImportSummary, error) {
	var summary ImportSummary

	var journals []jsonJournal
	if err := readJSONFile(filepath.Join(dir, JournalsFile), &journals, false); err != nil {
		return summary, err
	}
	var templates []jsonTemplate
	if err := readJSONFile(filepath.Join(dir, TemplatesFile), &templates, true); err != nil {
		return summary, err
	}
	var entries []jsonEntry
	if err := readJSONFile(filepath.Join(dir, EntriesFile), &entries, true); err != nil {
		return summary, err
	}
	var statuses []jsonStatus
	if err := readJSONFile(filepath.Join(dir, StatusesFile), &statuses, true); err != nil {
		return summary, err
	}

	err := st.InTx(ctx, func(w Writer) error {
		journalIDs := make(map[int64]int64, len(journals))
		for _, j := range journals {
			journal := &models.Journal{
				Name:        j.Name,
				Description: deref(j.Description),
				HasEmotions: j.HasEmotions,
				CreatedAt:   parseCreatedAt(j.CreatedAt),
			}
			if err := w.CreateJournal(ctx, journal); err != nil {
				return apperrors.Wrapf(err, "importing journal %d", j.ID)
			}
			journalIDs[j.ID] = journal.ID
			summary.Journals++
		}

		templateIDs := make(map[int64]int64, len(templates))
		for _, t := range templates {
			journalID, ok := journalIDs[t.JournalID]
			if !ok {
				continue
			}
			tpl := &models.ChecklistTemplate{JournalID: journalID, Text: t.Text, Order: t.Order}
			if err := w.AddChecklistTemplate(ctx, tpl); err != nil {
				return apperrors.Wrapf(err, "importing template %d", t.ID)
			}
			templateIDs[t.ID] = tpl.ID
			summary.Templates++
		}

		byEntry := make(map[int64]map[int64]bool)
		for _, s := range statuses {
			templateID, ok := templateIDs[s.TemplateID]
			if !ok {
				continue
			}
			if byEntry[s.EntryID] == nil {
				byEntry[s.EntryID] = make(map[int64]bool)
			}
			byEntry[s.EntryID][templateID] = s.Checked
		}

		for _, e := range entries {
			journalID, ok := journalIDs[e.JournalID]
			if !ok {
				continue
			}
			entry := &models.RawEntry{
				JournalID:         journalID,
				EntryDate:         e.EntryDate,
				Symbol:            deref(e.Symbol),
				PositionType:      deref(e.PositionType),
				Strategy:          deref(e.Strategy),
				Result:            deref(e.Result),
				Emotion:           deref(e.Emotion),
				PnL:               e.PnL,
				InitialRR:         e.InitialRR,
				TradeRating:       e.TradeRating,
				ChecklistStatuses: byEntry[e.ID],
			}
			if err := w.AddEntry(ctx, entry); err != nil {
				return apperrors.Wrapf(err, "importing entry %d", e.ID)
			}
			summary.Entries++
			summary.Statuses += len(entry.ChecklistStatuses)
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

func readJSONFile(path string, target interface{}, optional bool) error {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return apperrors.NewDataError(filepath.Base(path), 0, "cannot open file", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return apperrors.NewDataError(filepath.Base(path), 0, "invalid JSON", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func parseCreatedAt(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// csvEntry is one row of a CSV entry import.
type csvEntry struct {
	EntryDate    string `csv:"entry_date"`
	Symbol       string `csv:"symbol"`
	PositionType string `csv:"position_type"`
	Strategy     string `csv:"strategy"`
	Result       string `csv:"result"`
	PnL          string `csv:"pnl"`
	InitialRR    string `csv:"initial_rr"`
	TradeRating  string `csv:"trade_rating"`
	Emotion      string `csv:"emotion"`
}

// ImportCSV appends the entries in r to an existing journal and returns how
// many were added. Cells are stored as written; validation happens when
// statistics are computed. Either every row is added or none is.
func ImportCSV(ctx context.Context, st JournalStore, journalID int64, r io.Reader) (int, error) {
	if _, err := st.GetJournal(ctx, journalID); err != nil {
		return 0, err
	}

	var rows []*csvEntry
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, apperrors.NewDataError("csv", 0, "invalid CSV", err)
	}

	err := st.InTx(ctx, func(w Writer) error {
		for i, row := range rows {
			entry := &models.RawEntry{
				JournalID:    journalID,
				EntryDate:    nullable(row.EntryDate),
				Symbol:       strings.TrimSpace(row.Symbol),
				PositionType: strings.TrimSpace(row.PositionType),
				Strategy:     strings.TrimSpace(row.Strategy),
				Result:       strings.TrimSpace(row.Result),
				Emotion:      strings.TrimSpace(row.Emotion),
				PnL:          nullable(row.PnL),
				InitialRR:    nullable(row.InitialRR),
				TradeRating:  nullable(row.TradeRating),
			}
			if err := w.AddEntry(ctx, entry); err != nil {
				// header is line 1
				return apperrors.NewDataError("csv", i+2, "cannot store entry", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// nullable maps blank cells to NULL.
func nullable(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
