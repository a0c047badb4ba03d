package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/reports"
	"trade-journal/internal/stats"
)

// addJournalCommands adds journal listing and statistics commands.
func addJournalCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newJournalsCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))
}

func newJournalsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "journals",
		Short: "List journals",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.journalStore()
			if err != nil {
				return err
			}

			journals, err := st.ListJournals(cmd.Context())
			if err != nil {
				output.Error("Failed to list journals: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(journals)
			}
			if len(journals) == 0 {
				output.Info("No journals found.")
				output.Dim("Tip: load data with 'journal import json <dir>'.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Emotions", "Created")
			for _, j := range journals {
				emotions := "no"
				if j.HasEmotions {
					emotions = "yes"
				}
				table.AddRow(
					strconv.FormatInt(j.ID, 10),
					TruncateString(j.Name, 30),
					emotions,
					FormatAge(j.CreatedAt),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [journal-id]",
		Short: "Show journal statistics",
		Long: `Compute the statistics report for a journal.

With --all every journal is computed, several at a time. Journals without
usable entries are listed with the reason instead of failing the batch.`,
		Example: `  journal stats 3
  journal stats 3 --calendar
  journal stats --all --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			all, _ := cmd.Flags().GetBool("all")
			calendar, _ := cmd.Flags().GetBool("calendar")

			if all == (len(args) == 1) {
				return apperrors.NewValidationError("journal-id", args, "give a journal id or --all")
			}

			svc, err := app.reportService()
			if err != nil {
				return err
			}

			if all {
				start := time.Now()
				results, err := svc.ComputeAll(cmd.Context())
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(results)
				}
				renderBatch(output, results, calendar)
				output.Println()
				output.Dim("Computed %s journals in %s", FormatCount(len(results)), FormatDuration(time.Since(start)))
				return nil
			}

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return apperrors.NewValidationError("journal-id", args[0], "must be a positive integer")
			}

			ctx := logging.WithLogger(cmd.Context(), logging.WithOperation(app.Logger, "stats"))
			report, err := svc.Compute(ctx, id)
			if err != nil {
				if errors.Is(err, apperrors.ErrNoData) && !output.IsJSON() {
					output.Warning("No entries found for this journal to calculate statistics.")
					return nil
				}
				return err
			}
			if output.IsJSON() {
				return output.JSON(report)
			}
			renderReport(output, report, calendar)
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "compute every journal")
	cmd.Flags().Bool("calendar", false, "include the per-day calendar")

	return cmd
}

func renderBatch(output *Output, results []reports.JournalReport, calendar bool) {
	for i, r := range results {
		if i > 0 {
			output.Println()
		}
		if r.Err != nil {
			output.Bold("%s (#%d)", r.JournalName, r.JournalID)
			output.Dim("  %s", r.Error)
			continue
		}
		renderReport(output, r.Report, calendar)
	}
}

func renderReport(output *Output, r *stats.Report, calendar bool) {
	title := r.JournalName
	if title == "" {
		title = "Journal"
	}
	output.Box(title, []string{
		fmt.Sprintf("Trades:          %s", FormatCount(r.TotalTrades)),
		fmt.Sprintf("Win Rate:        %s", FormatRate(r.WinRatePercentage)),
		fmt.Sprintf("Total P&L:       %s", output.FormatOptionalPnL(r.TotalPnL)),
		fmt.Sprintf("Average P&L:     %s", output.FormatOptionalPnL(r.AveragePnL)),
		fmt.Sprintf("Average Win:     %s", output.FormatOptionalPnL(r.AverageWinningPnL)),
		fmt.Sprintf("Average Loss:    %s", output.FormatOptionalPnL(r.AverageLosingPnL)),
		fmt.Sprintf("Average R:R:     %s", FormatOptional(r.AverageInitialRR, FormatRatio)),
		fmt.Sprintf("Average Rating:  %s", FormatOptional(r.AverageTradeRating, FormatRating)),
	})
	if r.SkippedEntries > 0 {
		output.Warning("%s malformed entries skipped", FormatCount(r.SkippedEntries))
	}

	output.Println()
	output.Bold("Results")
	results := NewTable(output, "Result", "Count")
	for _, res := range models.Results {
		results.AddRow(string(res), FormatCount(r.ResultsCount[res]))
	}
	results.Render()

	output.Println()
	output.Bold("Positions")
	positions := NewTable(output, "Position", "Count")
	for _, p := range models.PositionTypes {
		positions.AddRow(string(p), FormatCount(r.PositionTypeCount[p]))
	}
	positions.Render()

	if len(r.SymbolPerformance) > 0 {
		output.Println()
		output.Bold("Symbols")
		t := newBucketTable(output, "Symbol")
		for _, s := range r.SymbolPerformance {
			addBucketRow(output, t, s.Symbol, s.BucketPerformance)
		}
		t.Render()
	}

	if len(r.StrategyPerformance) > 0 {
		output.Println()
		output.Bold("Strategies")
		t := newBucketTable(output, "Strategy")
		for _, s := range r.StrategyPerformance {
			addBucketRow(output, t, s.Strategy, s.BucketPerformance)
		}
		t.Render()
	}

	if len(r.EmotionPerformance) > 0 {
		output.Println()
		output.Bold("Emotions")
		t := newBucketTable(output, "Emotion")
		for _, e := range r.EmotionPerformance {
			addBucketRow(output, t, e.Emotion, e.BucketPerformance)
		}
		t.Render()
	}

	output.Println()
	output.Bold("Sessions")
	sessions := NewTable(output, "Session", "Hours", "Trades", "W/L", "Win Rate", "P&L")
	for _, s := range r.SessionPerformance {
		sessions.AddRow(
			s.Session,
			fmt.Sprintf("%02d-%02d", s.StartHour, s.EndHour),
			FormatCount(s.Total),
			fmt.Sprintf("%d/%d", s.Wins, s.Losses),
			FormatRate(s.WinRate),
			output.FormatPnL(s.PnL),
		)
	}
	sessions.Render()

	output.Println()
	output.Bold("Weekdays")
	weekdays := NewTable(output, "Day", "Trades", "W/L", "Win Rate", "P&L")
	for _, d := range r.DailyPerformance.Weekdays {
		weekdays.AddRow(d.Day, FormatCount(d.Total), fmt.Sprintf("%d/%d", d.Wins, d.Losses), FormatRate(d.WinRate), output.FormatPnL(d.PnL))
	}
	weekdays.Render()

	if calendar && len(r.DailyPerformance.Calendar) > 0 {
		output.Println()
		output.Bold("Calendar")
		days := NewTable(output, "Date", "Trades", "W/L", "Win Rate", "P&L")
		for _, d := range r.DailyPerformance.Calendar {
			days.AddRow(d.Date, FormatCount(d.Total), fmt.Sprintf("%d/%d", d.Wins, d.Losses), FormatRate(d.WinRate), output.FormatPnL(d.PnL))
		}
		days.Render()
	}

	if len(r.MonthlyPerformance) > 0 {
		output.Println()
		output.Bold("Months")
		months := NewTable(output, "Month", "Trades", "W/L", "Win Rate", "P&L")
		for _, m := range r.MonthlyPerformance {
			months.AddRow(m.MonthName, FormatCount(m.Total), fmt.Sprintf("%d/%d", m.Wins, m.Losses), FormatRate(m.WinRate), output.FormatPnL(m.PnL))
		}
		months.Render()
	}

	if len(r.ChecklistWinRates) > 0 {
		output.Println()
		output.Bold("Checklist Influence")
		influence := NewTable(output, "Item", "Checked", "Win Rate", "Unchecked", "Win Rate", "Diff")
		for _, c := range r.ChecklistWinRates {
			influence.AddRow(
				TruncateString(c.Text, 40),
				FormatCount(c.CheckedTotal),
				FormatRate(c.CheckedWinRate),
				FormatCount(c.UncheckedTotal),
				FormatRate(c.UncheckedWinRate),
				FormatPercent(c.WinRateDiff),
			)
		}
		influence.Render()
	}

	if len(r.ChecklistUsage) > 0 {
		output.Println()
		output.Bold("Checklist Usage")
		usage := NewTable(output, "Item", "Checked", "Evaluated", "Usage")
		for _, c := range r.ChecklistUsage {
			usage.AddRow(
				TruncateString(c.Text, 40),
				FormatCount(c.CheckedCount),
				FormatCount(c.TotalEntriesWithItem),
				FormatRate(c.CheckedPercentage),
			)
		}
		usage.Render()
	}
}

func newBucketTable(output *Output, label string) *Table {
	return NewTable(output, label, "Trades", "W/L", "Win Rate", "Avg P&L", "Total P&L")
}

func addBucketRow(output *Output, t *Table, key string, b stats.BucketPerformance) {
	t.AddRow(
		TruncateString(key, 24),
		FormatCount(b.Count),
		fmt.Sprintf("%d/%d", b.Wins, b.Losses),
		FormatRate(b.WinRate),
		output.FormatOptionalPnL(b.AvgPnL),
		output.FormatOptionalPnL(b.TotalPnL),
	)
}
