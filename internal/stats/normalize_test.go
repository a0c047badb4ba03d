package stats

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

func TestNormalize_Timestamps(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	n := NewNormalizer(berlin, zerolog.Nop())

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"naive is wall clock", "2024-03-04T09:30:00", "2024-03-04 09:30"},
		{"space separated", "2024-03-04 09:30:00", "2024-03-04 09:30"},
		{"fractional seconds", "2024-03-04T09:30:00.123456", "2024-03-04 09:30"},
		{"minutes only", "2024-03-04T09:30", "2024-03-04 09:30"},
		{"date only", "2024-03-04", "2024-03-04 00:00"},
		{"utc offset converted", "2024-03-04T08:30:00Z", "2024-03-04 09:30"},
		{"explicit offset converted", "2024-03-04T03:30:00-05:00", "2024-03-04 09:30"},
		{"bytes", []byte("2024-03-04 09:30:00"), "2024-03-04 09:30"},
		{"time value", time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC), "2024-03-04 09:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := n.Normalize(models.RawEntry{ID: 1, EntryDate: tt.input})
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got := entry.EntryDate.Format("2006-01-02 15:04"); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if entry.EntryDate.Location() != berlin {
				t.Errorf("entry date not in configured zone: %v", entry.EntryDate.Location())
			}
		})
	}
}

func TestNormalize_BadTimestampIsMalformed(t *testing.T) {
	n := NewNormalizer(time.UTC, zerolog.Nop())

	for _, input := range []any{nil, "", "yesterday", "2024-13-01", 12345, time.Time{}, (*time.Time)(nil)} {
		_, err := n.Normalize(models.RawEntry{ID: 42, EntryDate: input})
		if !errors.Is(err, apperrors.ErrMalformedRecord) {
			t.Errorf("input %#v: expected ErrMalformedRecord, got %v", input, err)
			continue
		}
		var mre *apperrors.MalformedRecordError
		if !errors.As(err, &mre) || mre.EntryID != 42 || mre.Field != "entry_date" {
			t.Errorf("input %#v: unexpected error detail %v", input, err)
		}
	}
}

func TestNormalize_LabelsAndText(t *testing.T) {
	n := NewNormalizer(time.UTC, zerolog.Nop())
	entry, err := n.Normalize(models.RawEntry{
		ID:           1,
		EntryDate:    "2024-03-04",
		Symbol:       "  EURUSD ",
		Strategy:     "Breakout",
		Emotion:      " calm",
		Result:       " Loss ",
		PositionType: "Sideways",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if entry.Symbol != "EURUSD" || entry.Emotion != "calm" {
		t.Errorf("text fields not trimmed: %+v", entry)
	}
	if entry.Result != models.ResultLoss {
		t.Errorf("Result = %q, want Loss", entry.Result)
	}
	if entry.PositionType != "" {
		t.Errorf("unknown position type should be absent, got %q", entry.PositionType)
	}

	entry, err = n.Normalize(models.RawEntry{ID: 2, EntryDate: "2024-03-04", Result: "Won"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if entry.Result != "" {
		t.Errorf("unknown result should be absent, got %q", entry.Result)
	}
}

func TestNormalize_ChecklistIsCopied(t *testing.T) {
	n := NewNormalizer(time.UTC, zerolog.Nop())
	statuses := map[int64]bool{1: true}
	entry, err := n.Normalize(models.RawEntry{ID: 1, EntryDate: "2024-03-04", ChecklistStatuses: statuses})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	statuses[1] = false
	if !entry.ChecklistStatuses[1] {
		t.Error("normalized entry shares the raw checklist map")
	}
}

func TestNormalizeAll_KeepsOrderAndCountsSkips(t *testing.T) {
	n := NewNormalizer(time.UTC, zerolog.Nop())
	entries, skipped := n.NormalizeAll([]models.RawEntry{
		{ID: 1, EntryDate: "2024-03-04"},
		{ID: 2, EntryDate: "garbage"},
		{ID: 3, EntryDate: "2024-03-05"},
	})
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(entries) != 2 || entries[0].ID != 1 || entries[1].ID != 3 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantValid bool
		wantOK    bool
		want      string
	}{
		{"nil", nil, false, true, ""},
		{"empty string", "  ", false, true, ""},
		{"float", 12.5, true, true, "12.5"},
		{"int", 3, true, true, "3"},
		{"int64", int64(-7), true, true, "-7"},
		{"numeric string", "-40.25", true, true, "-40.25"},
		{"json number", json.Number("1.5"), true, true, "1.5"},
		{"decimal", decimal.RequireFromString("0.1"), true, true, "0.1"},
		{"text", "abc", false, false, ""},
		{"nan", math.NaN(), false, false, ""},
		{"inf", math.Inf(-1), false, false, ""},
		{"bool", true, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDecimal(tt.input)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.Decimal.String() != tt.want {
				t.Errorf("value = %s, want %s", got.Decimal.String(), tt.want)
			}
		})
	}
}

func TestNormalize_TradeRatingRange(t *testing.T) {
	n := NewNormalizer(time.UTC, zerolog.Nop())
	for _, tc := range []struct {
		rating any
		valid  bool
	}{{0, true}, {5, true}, {2.5, true}, {-1, false}, {5.5, false}} {
		entry, err := n.Normalize(models.RawEntry{ID: 1, EntryDate: "2024-03-04", TradeRating: tc.rating})
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if entry.TradeRating.Valid != tc.valid {
			t.Errorf("rating %v: Valid = %v, want %v", tc.rating, entry.TradeRating.Valid, tc.valid)
		}
	}
}
