package stats

import "trade-journal/internal/models"

// Report is the statistics for one journal. It is built fresh on every
// computation and shares no state with other reports.
type Report struct {
	JournalName        string                      `json:"journal_name,omitempty"`
	TotalTrades        int                         `json:"total_trades"`
	SkippedEntries     int                         `json:"skipped_entries"`
	ResultsCount       map[models.TradeResult]int  `json:"results_count"`
	PositionTypeCount  map[models.PositionType]int `json:"position_type_count"`
	WinRatePercentage  float64                     `json:"win_rate_percentage"`
	TotalPnL           *float64                    `json:"total_pnl"`
	AveragePnL         *float64                    `json:"average_pnl"`
	AverageWinningPnL  *float64                    `json:"average_winning_pnl"`
	AverageLosingPnL   *float64                    `json:"average_losing_pnl"`
	AverageInitialRR   *float64                    `json:"average_initial_rr"`
	AverageTradeRating *float64                    `json:"average_trade_rating"`

	SymbolPerformance   []SymbolPerformance   `json:"symbol_performance"`
	StrategyPerformance []StrategyPerformance `json:"strategy_performance"`
	EmotionPerformance  []EmotionPerformance  `json:"emotion_performance"`
	SessionPerformance  []SessionPerformance  `json:"session_performance"`
	DailyPerformance    DailyPerformance      `json:"daily_performance"`
	MonthlyPerformance  []MonthPerformance    `json:"monthly_performance"`
	ChecklistWinRates   []ChecklistWinRate    `json:"checklist_win_rates"`
	ChecklistUsage      []ChecklistUsage      `json:"checklist_usage"`
}

// BucketPerformance holds the figures shared by every keyed breakdown row.
type BucketPerformance struct {
	Count    int      `json:"count"`
	Wins     int      `json:"wins"`
	Losses   int      `json:"losses"`
	WinRate  float64  `json:"win_rate"`
	AvgPnL   *float64 `json:"avg_pnl"`
	TotalPnL *float64 `json:"total_pnl"`
}

type SymbolPerformance struct {
	Symbol string `json:"symbol"`
	BucketPerformance
}

type StrategyPerformance struct {
	Strategy string `json:"strategy"`
	BucketPerformance
}

type EmotionPerformance struct {
	Emotion string `json:"emotion"`
	BucketPerformance
}

// SessionPerformance is one time-of-day window.
type SessionPerformance struct {
	Session   string  `json:"session"`
	StartHour int     `json:"start_hour"`
	EndHour   int     `json:"end_hour"`
	Total     int     `json:"total"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	WinRate   float64 `json:"win_rate"`
	PnL       float64 `json:"pnl"`
}

type DailyPerformance struct {
	Weekdays []WeekdayPerformance `json:"weekdays"`
	Calendar []CalendarDay        `json:"calendar"`
}

type WeekdayPerformance struct {
	Day     string  `json:"day"`
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
	PnL     float64 `json:"pnl"`
}

// CalendarDay covers one date that has at least one trade.
type CalendarDay struct {
	Date    string  `json:"date"`
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"win_rate"`
	PnL     float64 `json:"pnl"`
}

// MonthPerformance covers one calendar month that has at least one trade.
type MonthPerformance struct {
	Month     string  `json:"month"`
	MonthName string  `json:"month_name"`
	Total     int     `json:"total"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	WinRate   float64 `json:"win_rate"`
	PnL       float64 `json:"pnl"`
}

// ChecklistWinRate compares outcomes of trades where a checklist item was
// checked against those where it was evaluated but left unchecked.
type ChecklistWinRate struct {
	TemplateID       int64   `json:"template_id"`
	Text             string  `json:"text"`
	CheckedTotal     int     `json:"checked_total"`
	CheckedWinRate   float64 `json:"checked_win_rate"`
	UncheckedTotal   int     `json:"unchecked_total"`
	UncheckedWinRate float64 `json:"unchecked_win_rate"`
	WinRateDiff      float64 `json:"win_rate_diff"`
}

type ChecklistUsage struct {
	TemplateID           int64   `json:"template_id"`
	Text                 string  `json:"text"`
	CheckedCount         int     `json:"checked_count"`
	TotalEntriesWithItem int     `json:"total_entries_with_item"`
	CheckedPercentage    float64 `json:"checked_percentage"`
}
