// Package stats computes trade performance reports for a journal.
//
// The engine is a pure function of its input: it performs no I/O, keeps no
// state between calls and may be used from several goroutines at once.
package stats

import (
	"fmt"

	"github.com/rs/zerolog"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// Input is the snapshot of one journal that a report is computed from.
type Input struct {
	JournalName string
	Entries     []models.RawEntry
	Templates   []models.ChecklistTemplate
}

// Engine builds statistics reports.
type Engine struct {
	cfg    Config
	logger zerolog.Logger
}

// NewEngine creates an engine. The configuration is validated here so that
// Compute never has to.
func NewEngine(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}
	sessions := make([]SessionWindow, len(cfg.Sessions))
	copy(sessions, cfg.Sessions)
	cfg.Sessions = sessions
	cfg.Location = cfg.location()

	return &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "stats").Logger(),
	}, nil
}

// Sessions returns a copy of the configured session windows.
func (e *Engine) Sessions() []SessionWindow {
	out := make([]SessionWindow, len(e.cfg.Sessions))
	copy(out, e.cfg.Sessions)
	return out
}

// Compute returns the report for in. It fails with ErrNoData when the input
// has no entries, or with a *NoDataError carrying the skipped count when every
// entry was dropped as malformed.
func (e *Engine) Compute(in Input) (Report, error) {
	if len(in.Entries) == 0 {
		return Report{}, apperrors.ErrNoData
	}

	logger := e.logger
	if in.JournalName != "" {
		logger = logger.With().Str("journal", in.JournalName).Logger()
	}

	entries, skipped := NewNormalizer(e.cfg.Location, logger).NormalizeAll(in.Entries)
	if len(entries) == 0 {
		return Report{}, &apperrors.NoDataError{Skipped: skipped}
	}

	report := e.build(entries)
	report.JournalName = in.JournalName
	report.SkippedEntries = skipped

	templates := sortTemplates(in.Templates)
	parts := partitionChecklist(entries, templates)
	report.ChecklistWinRates = checklistWinRates(templates, parts)
	report.ChecklistUsage = checklistUsage(templates, parts)

	logger.Debug().
		Int("entries", len(entries)).
		Int("skipped", skipped).
		Int("templates", len(templates)).
		Msg("Statistics computed")

	return report, nil
}

func (e *Engine) build(entries []models.Entry) Report {
	agg := aggregate(entries, e.cfg.Sessions)

	r := Report{
		TotalTrades:        agg.overall.count,
		ResultsCount:       agg.results,
		PositionTypeCount:  agg.positions,
		WinRatePercentage:  agg.overall.winRate(),
		TotalPnL:           agg.overall.pnl.total(),
		AveragePnL:         agg.overall.pnl.avg(),
		AverageWinningPnL:  agg.winningPnL.avg(),
		AverageLosingPnL:   agg.losingPnL.avg(),
		AverageInitialRR:   agg.initialRR.avg(),
		AverageTradeRating: agg.tradeRating.avg(),
	}

	r.SymbolPerformance = make([]SymbolPerformance, 0, len(agg.symbols.keys))
	for _, i := range agg.symbols.byCount() {
		r.SymbolPerformance = append(r.SymbolPerformance, SymbolPerformance{
			Symbol:            agg.symbols.keys[i],
			BucketPerformance: agg.symbols.tallies[i].bucket(),
		})
	}

	r.StrategyPerformance = make([]StrategyPerformance, 0, len(agg.strategies.keys))
	for _, i := range agg.strategies.byCount() {
		r.StrategyPerformance = append(r.StrategyPerformance, StrategyPerformance{
			Strategy:          agg.strategies.keys[i],
			BucketPerformance: agg.strategies.tallies[i].bucket(),
		})
	}

	r.EmotionPerformance = make([]EmotionPerformance, 0, len(agg.emotions.keys))
	for _, i := range agg.emotions.byCount() {
		r.EmotionPerformance = append(r.EmotionPerformance, EmotionPerformance{
			Emotion:           agg.emotions.keys[i],
			BucketPerformance: agg.emotions.tallies[i].bucket(),
		})
	}

	r.SessionPerformance = make([]SessionPerformance, len(e.cfg.Sessions))
	for i, s := range e.cfg.Sessions {
		t := &agg.sessions[i]
		r.SessionPerformance[i] = SessionPerformance{
			Session:   s.Name,
			StartHour: s.StartHour,
			EndHour:   s.EndHour,
			Total:     t.count,
			Wins:      t.wins,
			Losses:    t.losses,
			WinRate:   t.winRate(),
			PnL:       t.pnl.totalOrZero(),
		}
	}

	r.DailyPerformance.Weekdays = make([]WeekdayPerformance, len(Weekdays))
	for i, day := range Weekdays {
		t := &agg.weekdays[i]
		r.DailyPerformance.Weekdays[i] = WeekdayPerformance{
			Day:     day,
			Total:   t.count,
			Wins:    t.wins,
			Losses:  t.losses,
			WinRate: t.winRate(),
			PnL:     t.pnl.totalOrZero(),
		}
	}

	r.DailyPerformance.Calendar = make([]CalendarDay, 0, len(agg.dates.keys))
	for _, i := range agg.dates.byKey() {
		t := &agg.dates.tallies[i]
		r.DailyPerformance.Calendar = append(r.DailyPerformance.Calendar, CalendarDay{
			Date:    agg.dates.keys[i],
			Total:   t.count,
			Wins:    t.wins,
			Losses:  t.losses,
			WinRate: t.winRate(),
			PnL:     t.pnl.totalOrZero(),
		})
	}

	r.MonthlyPerformance = make([]MonthPerformance, 0, len(agg.months.keys))
	for _, i := range agg.months.byKey() {
		key := agg.months.keys[i]
		t := &agg.months.tallies[i]
		r.MonthlyPerformance = append(r.MonthlyPerformance, MonthPerformance{
			Month:     key,
			MonthName: MonthName(key),
			Total:     t.count,
			Wins:      t.wins,
			Losses:    t.losses,
			WinRate:   t.winRate(),
			PnL:       t.pnl.totalOrZero(),
		})
	}

	return r
}
