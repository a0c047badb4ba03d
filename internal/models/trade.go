package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal represents a named trading journal.
type Journal struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	HasEmotions bool      `json:"has_emotions"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChecklistTemplate is a yes/no habit item defined per journal.
type ChecklistTemplate struct {
	ID        int64  `json:"id"`
	JournalID int64  `json:"journal_id"`
	Text      string `json:"text"`
	Order     int    `json:"order"`
}

// RawEntry is a trade entry as read from storage, before validation.
// EntryDate and the numeric fields hold whatever the data layer produced
// (time.Time, string, []byte, float64, int64, json.Number or nil).
type RawEntry struct {
	ID                int64
	JournalID         int64
	EntryDate         any
	Symbol            string
	PositionType      string
	Strategy          string
	Result            string
	Emotion           string
	PnL               any
	InitialRR         any
	TradeRating       any
	ChecklistStatuses map[int64]bool
}

// Entry is a validated trade record.
// Zero-value strings mean the dimension is absent for this trade.
type Entry struct {
	ID                int64
	JournalID         int64
	EntryDate         time.Time
	Symbol            string
	PositionType      PositionType
	Strategy          string
	Result            TradeResult
	Emotion           string
	PnL               decimal.NullDecimal
	InitialRR         decimal.NullDecimal
	TradeRating       decimal.NullDecimal
	ChecklistStatuses map[int64]bool
}

// IsWin reports whether the entry counts toward the win-rate numerator.
func (e *Entry) IsWin() bool { return e.Result == ResultWin }

// IsLoss reports whether the entry counts as a loss.
func (e *Entry) IsLoss() bool { return e.Result == ResultLoss }
