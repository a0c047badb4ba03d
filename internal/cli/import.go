package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/store"
)

// addImportCommands adds data import commands.
func addImportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "import <json|csv> <path>",
		Short: "Import journal data",
		Long:  "Load journals, checklist templates and entries into the database.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("%w: %q (use json or csv)", apperrors.ErrUnsupportedFormat, args[0])
		},
	}

	cmd.AddCommand(newImportJSONCmd(app))
	cmd.AddCommand(newImportCSVCmd(app))

	rootCmd.AddCommand(cmd)
}

func newImportJSONCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "json <dir>",
		Short: "Import a directory of JSON data files",
		Long: fmt.Sprintf(`Import a directory holding %s and, optionally, %s,
%s and %s. Records get new ids; references between
the files are remapped.`, store.JournalsFile, store.TemplatesFile, store.EntriesFile, store.StatusesFile),
		Example: `  journal import json ./export`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.journalStore()
			if err != nil {
				return err
			}

			summary, err := store.ImportJSONDir(cmd.Context(), st, args[0])
			if err != nil {
				output.Error("Import failed: %v", err)
				return err
			}
			logging.LogImport(app.Logger, "json", summary.Journals, summary.Templates, summary.Entries)

			if output.IsJSON() {
				return output.JSON(summary)
			}
			output.Success("Imported %s journals, %s templates, %s entries, %s checklist statuses",
				FormatCount(summary.Journals),
				FormatCount(summary.Templates),
				FormatCount(summary.Entries),
				FormatCount(summary.Statuses),
			)
			return nil
		},
	}
}

func newImportCSVCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Import entries from a CSV file",
		Long: `Append entries from a CSV file to an existing journal.

The header must name the columns entry_date, symbol, position_type, strategy,
result, pnl, initial_rr, trade_rating and emotion. Blank cells are stored as
missing values.`,
		Example: `  journal import csv trades.csv --journal 2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			journalID, _ := cmd.Flags().GetInt64("journal")
			if journalID <= 0 {
				return apperrors.NewValidationError("journal", journalID, "must be a positive journal id")
			}

			f, err := os.Open(args[0])
			if err != nil {
				return apperrors.Wrap(err, "opening CSV file")
			}
			defer f.Close()

			st, err := app.journalStore()
			if err != nil {
				return err
			}

			added, err := store.ImportCSV(cmd.Context(), st, journalID, f)
			if err != nil {
				output.Error("Import failed, no entries added: %v", err)
				return err
			}
			logging.LogImport(logging.WithJournal(app.Logger, journalID), "csv", 0, 0, added)

			if output.IsJSON() {
				return output.JSON(map[string]int64{"journal_id": journalID, "entries": int64(added)})
			}
			output.Success("Imported %s entries into journal %d", FormatCount(added), journalID)
			return nil
		},
	}

	cmd.Flags().Int64("journal", 0, "target journal id (required)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}
