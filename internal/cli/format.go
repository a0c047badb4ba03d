package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// NotAvailable is shown for metrics that have no defined value.
const NotAvailable = "n/a"

// FormatMoney formats an amount with thousands separators and two decimals.
func FormatMoney(amount float64) string {
	return humanize.FormatFloat("#,###.##", amount)
}

// FormatPnL formats P&L with an explicit sign for gains.
func FormatPnL(pnl float64) string {
	formatted := FormatMoney(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatOptional formats v with f, or NotAvailable when v is nil.
func FormatOptional(v *float64, f func(float64) string) string {
	if v == nil {
		return NotAvailable
	}
	return f(*v)
}

// FormatRate formats a 0-100 percentage.
func FormatRate(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatRatio formats an average risk-reward multiple.
func FormatRatio(rr float64) string {
	return fmt.Sprintf("1:%.2f", rr)
}

// FormatRating formats an average trade rating out of five.
func FormatRating(r float64) string {
	return fmt.Sprintf("%.2f/5", r)
}

// FormatAge formats a timestamp relative to now, e.g. "3 days ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return humanize.Time(t)
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
