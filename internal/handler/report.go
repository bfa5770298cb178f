// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/focus-analytics/transcript-insights/internal/fetcher"
	"github.com/focus-analytics/transcript-insights/internal/middleware"
	"github.com/focus-analytics/transcript-insights/internal/model"
	"github.com/focus-analytics/transcript-insights/pkg/logger"
)

const dateLayout = "2006-01-02"

// defaultRangeDays is the lookback window when no dates are supplied.
const defaultRangeDays = 7

// ReportGenerator produces conversation reports for a date range.
type ReportGenerator interface {
	Generate(ctx context.Context, from, to time.Time, onPage fetcher.ProgressFunc) (*model.Report, error)
	ExportCSV(ctx context.Context, from, to time.Time, onPage fetcher.ProgressFunc) ([]byte, error)
}

// ReportHandler handles report endpoints.
type ReportHandler struct {
	service      ReportGenerator
	maxRangeDays int
	logger       *logger.Logger
	now          func() time.Time
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc ReportGenerator, maxRangeDays int, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service:      svc,
		maxRangeDays: maxRangeDays,
		logger:       log,
		now:          time.Now,
	}
}

// Get handles GET /api/v1/reports
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := h.dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.service.Generate(ctx, from, to, nil)
	if err != nil {
		log := h.logger.With(zap.String("correlation_id", middleware.GetCorrelationID(ctx)))
		if errors.Is(err, fetcher.ErrToken) {
			log.Error("platform authentication failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "platform authentication failed")
			return
		}
		log.Error("report generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// Export handles GET /api/v1/reports/export
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := h.dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.service.ExportCSV(ctx, from, to, nil)
	if err != nil {
		log := h.logger.With(zap.String("correlation_id", middleware.GetCorrelationID(ctx)))
		if errors.Is(err, fetcher.ErrToken) {
			log.Error("platform authentication failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "platform authentication failed")
			return
		}
		log.Error("report export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export report")
		return
	}

	filename := fmt.Sprintf("transcripts_%s_%s.csv",
		from.Format(dateLayout), to.Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// dateRange parses and validates the from/to query parameters. Dates
// default to the last week ending today.
func (h *ReportHandler) dateRange(r *http.Request) (time.Time, time.Time, error) {
	now := h.now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -defaultRangeDays)
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q, want YYYY-MM-DD", v)
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q, want YYYY-MM-DD", v)
		}
		to = parsed
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to date must not be before from date")
	}
	if h.maxRangeDays > 0 {
		if days := int(to.Sub(from).Hours() / 24); days > h.maxRangeDays {
			return time.Time{}, time.Time{}, fmt.Errorf("date range exceeds %d days", h.maxRangeDays)
		}
	}

	return from, to, nil
}
