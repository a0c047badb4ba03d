package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// Layouts carrying a zone offset; the instant is converted into the configured zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

// Layouts without an offset are read as wall-clock time in the configured zone.
// Fractional seconds are accepted after the seconds field.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dateLayout,
}

// Normalizer converts raw storage records into validated entries.
type Normalizer struct {
	loc    *time.Location
	logger zerolog.Logger
}

// NewNormalizer creates a normalizer for the given zone.
func NewNormalizer(loc *time.Location, logger zerolog.Logger) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc, logger: logger}
}

// Normalize validates one record. Only an unusable entry date is fatal to the
// record; bad optional fields are coerced to absent with a warning.
func (n *Normalizer) Normalize(raw models.RawEntry) (models.Entry, error) {
	ts, err := parseTimestamp(raw.EntryDate, n.loc)
	if err != nil {
		return models.Entry{}, apperrors.NewMalformedRecordError(raw.ID, "entry_date", raw.EntryDate, "unparseable timestamp", err)
	}

	entry := models.Entry{
		ID:        raw.ID,
		JournalID: raw.JournalID,
		EntryDate: ts,
		Symbol:    strings.TrimSpace(raw.Symbol),
		Strategy:  strings.TrimSpace(raw.Strategy),
		Emotion:   strings.TrimSpace(raw.Emotion),
	}

	if label := strings.TrimSpace(raw.Result); label != "" {
		if r, ok := models.ParseTradeResult(label); ok {
			entry.Result = r
		} else {
			n.coerced(raw.ID, "result", label)
		}
	}
	if label := strings.TrimSpace(raw.PositionType); label != "" {
		if p, ok := models.ParsePositionType(label); ok {
			entry.PositionType = p
		} else {
			n.coerced(raw.ID, "position_type", label)
		}
	}

	entry.PnL = n.number(raw.ID, "pnl", raw.PnL)
	entry.InitialRR = n.number(raw.ID, "initial_rr", raw.InitialRR)
	entry.TradeRating = n.number(raw.ID, "trade_rating", raw.TradeRating)
	if entry.TradeRating.Valid {
		r := entry.TradeRating.Decimal
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(5)) {
			n.coerced(raw.ID, "trade_rating", raw.TradeRating)
			entry.TradeRating = decimal.NullDecimal{}
		}
	}

	entry.ChecklistStatuses = make(map[int64]bool, len(raw.ChecklistStatuses))
	for id, checked := range raw.ChecklistStatuses {
		entry.ChecklistStatuses[id] = checked
	}

	return entry, nil
}

// NormalizeAll normalizes every record, dropping and logging the malformed ones.
// It returns the surviving entries in input order and the number dropped.
func (n *Normalizer) NormalizeAll(raws []models.RawEntry) ([]models.Entry, int) {
	entries := make([]models.Entry, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		entry, err := n.Normalize(raw)
		if err != nil {
			skipped++
			n.logger.Warn().
				Err(err).
				Int64("entry_id", raw.ID).
				Msg("Skipping malformed entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

func (n *Normalizer) number(entryID int64, field string, v any) decimal.NullDecimal {
	d, ok := parseDecimal(v)
	if !ok {
		n.coerced(entryID, field, v)
	}
	return d
}

func (n *Normalizer) coerced(entryID int64, field string, v any) {
	n.logger.Warn().
		Int64("entry_id", entryID).
		Str("field", field).
		Interface("value", v).
		Msg("Ignoring invalid field value")
}

func parseTimestamp(v any, loc *time.Location) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, fmt.Errorf("zero timestamp")
		}
		return t.In(loc), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("missing timestamp")
		}
		return parseTimestamp(*t, loc)
	case string:
		return parseTimestampString(t, loc)
	case []byte:
		return parseTimestampString(string(t), loc)
	case nil:
		return time.Time{}, fmt.Errorf("missing timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimestampString(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", s)
}

// parseDecimal coerces a dynamically typed value. Absent values yield an
// invalid NullDecimal with ok=true; present but unusable values yield ok=false.
func parseDecimal(v any) (decimal.NullDecimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.NullDecimal{}, true
	case decimal.Decimal:
		return decimal.NullDecimal{Decimal: x, Valid: true}, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.NullDecimal{}, false
		}
		return decimal.NullDecimal{Decimal: decimal.NewFromFloat(x), Valid: true}, true
	case float32:
		return parseDecimal(float64(x))
	case int:
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(int64(x)), Valid: true}, true
	case int32:
		return decimal.NullDecimal{Decimal: decimal.NewFromInt32(x), Valid: true}, true
	case int64:
		return decimal.NullDecimal{Decimal: decimal.NewFromInt(x), Valid: true}, true
	case json.Number:
		return parseDecimalString(string(x))
	case string:
		return parseDecimalString(x)
	case []byte:
		return parseDecimalString(string(x))
	default:
		return decimal.NullDecimal{}, false
	}
}

func parseDecimalString(s string) (decimal.NullDecimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}
