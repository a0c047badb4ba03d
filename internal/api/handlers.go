package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/health"
	"trade-journal/internal/logging"
)

// Response bodies match what the journal frontend already handles.
const (
	msgJournalNotFound = "Journal not found"
	msgNoEntries       = "No entries found for this journal to calculate statistics."
	msgInvalidID       = "Invalid journal id"
	msgInternal        = "Internal server error"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		render.JSON(w, r, map[string]string{"status": "ok"})
		return
	}
	report := s.health.Run(r.Context())
	if report.Status == health.StatusUnhealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, report)
}

// listJournals handles GET /api/journals.
func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	journals, err := s.journals.ListJournals(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	render.JSON(w, r, journals)
}

// journalStatistics handles GET /api/journals/{journalID}/statistics.
func (s *Server) journalStatistics(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "journalID"), 10, 64)
	if err != nil || id <= 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": msgInvalidID})
		return
	}

	logger := logging.WithOperation(*hlog.FromRequest(r), "journal_statistics")
	report, err := s.reports.Compute(logging.WithLogger(r.Context(), logger), id)
	switch {
	case err == nil:
		render.JSON(w, r, report)
	case errors.Is(err, apperrors.ErrJournalNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": msgJournalNotFound})
	case errors.Is(err, apperrors.ErrNoData):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"message": msgNoEntries})
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Msg("Request failed")
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]string{"error": msgInternal})
}
