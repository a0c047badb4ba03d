// Package reports loads journals from storage and computes their statistics.
package reports

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/stats"
	"trade-journal/internal/store"
)

// Service computes reports for stored journals.
type Service struct {
	store       store.JournalStore
	engine      *stats.Engine
	metrics     *Metrics
	logger      zerolog.Logger
	maxParallel int
}

// NewService creates a report service. metrics may be nil. maxParallel bounds
// ComputeAll and defaults to 1.
func NewService(st store.JournalStore, engine *stats.Engine, metrics *Metrics, logger zerolog.Logger, maxParallel int) *Service {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Service{
		store:       st,
		engine:      engine,
		metrics:     metrics,
		logger:      logger.With().Str("component", "reports").Logger(),
		maxParallel: maxParallel,
	}
}

// JournalReport is one journal's result within a batch.
type JournalReport struct {
	JournalID   int64         `json:"journal_id"`
	JournalName string        `json:"journal_name"`
	Report      *stats.Report `json:"report,omitempty"`
	Error       string        `json:"error,omitempty"`
	Err         error         `json:"-"`
}

// Compute returns the report for one journal. It fails with
// ErrJournalNotFound for an unknown id and ErrNoData when the journal has no
// usable entries. A logger carried by ctx replaces the service's own.
func (s *Service) Compute(ctx context.Context, journalID int64) (*stats.Report, error) {
	start := time.Now()
	logger := logging.WithJournal(logging.FromContext(ctx, s.logger), journalID)

	snap, err := s.store.Snapshot(ctx, journalID)
	if err != nil {
		s.finish(logger, journalID, start, 0, 0, err)
		return nil, err
	}

	report, err := s.engine.Compute(stats.Input{
		JournalName: snap.Journal.Name,
		Entries:     snap.Entries,
		Templates:   snap.Templates,
	})
	if err != nil {
		var noData *apperrors.NoDataError
		skipped := 0
		if errors.As(err, &noData) {
			skipped = noData.Skipped
		}
		s.finish(logger, journalID, start, 0, skipped, err)
		return nil, err
	}

	s.finish(logger, journalID, start, report.TotalTrades, report.SkippedEntries, nil)
	return &report, nil
}

func (s *Service) finish(logger zerolog.Logger, journalID int64, start time.Time, entries, skipped int, err error) {
	d := time.Since(start)
	s.metrics.observe(outcome(err), d, skipped)
	logging.LogReport(logger, journalID, entries, skipped, d, err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, apperrors.ErrNoData):
		return OutcomeNoData
	case errors.Is(err, apperrors.ErrJournalNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}

// ComputeAll computes a report for every journal, at most maxParallel at a
// time, in journal id order. A journal that cannot be reported on carries
// its error instead of failing the batch; only listing failures and
// cancellation abort it.
func (s *Service) ComputeAll(ctx context.Context) ([]JournalReport, error) {
	journals, err := s.store.ListJournals(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]JournalReport, len(journals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for i, j := range journals {
		i, j := i, j
		results[i] = JournalReport{JournalID: j.ID, JournalName: j.Name}
		g.Go(func() error {
			report, err := s.Compute(gctx, j.ID)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Report = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
