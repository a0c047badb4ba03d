package stats

import (
	"github.com/shopspring/decimal"

	"trade-journal/internal/models"
)

// WinRate is wins/(wins+losses)*100, or 0 when no trade was decided.
// Breakeven and unrecorded results are outside both numerator and denominator.
func WinRate(wins, losses int) float64 {
	decided := wins + losses
	if decided == 0 {
		return 0
	}
	return float64(wins) / float64(decided) * 100
}

// Percentage is part/whole*100, or 0 when whole is 0.
func Percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// mean accumulates a decimal sum and the number of values in it.
// Decimal sums keep totals independent of input order.
type mean struct {
	sum decimal.Decimal
	n   int
}

func (m *mean) add(v decimal.NullDecimal) {
	if !v.Valid {
		return
	}
	m.sum = m.sum.Add(v.Decimal)
	m.n++
}

// avg returns nil when nothing was added.
func (m mean) avg() *float64 {
	if m.n == 0 {
		return nil
	}
	f := m.sum.Div(decimal.NewFromInt(int64(m.n))).InexactFloat64()
	return &f
}

// total returns nil when nothing was added.
func (m mean) total() *float64 {
	if m.n == 0 {
		return nil
	}
	f := m.sum.InexactFloat64()
	return &f
}

// totalOrZero is used where the UI always expects a number.
func (m mean) totalOrZero() float64 {
	return m.sum.InexactFloat64()
}

// tally is the running state of one bucket.
type tally struct {
	count  int
	wins   int
	losses int
	pnl    mean
}

func (t *tally) add(e *models.Entry) {
	t.count++
	switch {
	case e.IsWin():
		t.wins++
	case e.IsLoss():
		t.losses++
	}
	t.pnl.add(e.PnL)
}

func (t *tally) winRate() float64 {
	return WinRate(t.wins, t.losses)
}

func (t *tally) bucket() BucketPerformance {
	return BucketPerformance{
		Count:    t.count,
		Wins:     t.wins,
		Losses:   t.losses,
		WinRate:  t.winRate(),
		AvgPnL:   t.pnl.avg(),
		TotalPnL: t.pnl.total(),
	}
}
