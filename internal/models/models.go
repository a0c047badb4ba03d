// Package models provides domain models for the trading journal.
package models

// TradeResult represents the recorded outcome of a trade.
type TradeResult string

const (
	ResultWin       TradeResult = "Win"
	ResultLoss      TradeResult = "Loss"
	ResultBE        TradeResult = "BE"
	ResultPartialBE TradeResult = "PartialBE"
)

// Results lists every known result label in report order.
var Results = []TradeResult{ResultWin, ResultLoss, ResultBE, ResultPartialBE}

// ParseTradeResult maps a stored label to a TradeResult.
// The second return value is false for empty or unknown labels.
func ParseTradeResult(s string) (TradeResult, bool) {
	switch TradeResult(s) {
	case ResultWin, ResultLoss, ResultBE, ResultPartialBE:
		return TradeResult(s), true
	}
	return "", false
}

// PositionType represents the direction of a trade.
type PositionType string

const (
	PositionLong  PositionType = "Long"
	PositionShort PositionType = "Short"
)

// PositionTypes lists every known position label in report order.
var PositionTypes = []PositionType{PositionLong, PositionShort}

// ParsePositionType maps a stored label to a PositionType.
func ParsePositionType(s string) (PositionType, bool) {
	switch PositionType(s) {
	case PositionLong, PositionShort:
		return PositionType(s), true
	}
	return "", false
}
