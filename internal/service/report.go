// Package service provides the report generation pipeline.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/focus-analytics/transcript-insights/internal/cache"
	"github.com/focus-analytics/transcript-insights/internal/fetcher"
	"github.com/focus-analytics/transcript-insights/internal/model"
	"github.com/focus-analytics/transcript-insights/internal/report"
	"github.com/focus-analytics/transcript-insights/pkg/logger"
	"github.com/focus-analytics/transcript-insights/pkg/metrics"
)

// Fetcher retrieves the normalized message stream for a date range.
type Fetcher interface {
	Fetch(ctx context.Context, botID string, cred model.Credential, from, to time.Time, onPage fetcher.ProgressFunc) ([]model.NormalizedMessage, error)
}

// ReportService runs the fetch-and-reconstruct cycle for one bot.
type ReportService struct {
	botID   string
	cred    model.Credential
	fetcher Fetcher
	cache   cache.Cache
	logger  *logger.Logger
}

// NewReportService creates a report service.
func NewReportService(botID string, cred model.Credential, f Fetcher, c cache.Cache, log *logger.Logger) *ReportService {
	return &ReportService{
		botID:   botID,
		cred:    cred,
		fetcher: f,
		cache:   c,
		logger:  log,
	}
}

// Generate produces the conversation report for [from, to].
//
// API and transport failures mid-fetch follow the partial-result
// policy: the pairs built from the pages gathered before the failure
// are returned with the error text in Report.Warning, and the partial
// stream is not cached. Only a token signing failure is fatal.
func (s *ReportService) Generate(ctx context.Context, from, to time.Time, onPage fetcher.ProgressFunc) (*model.Report, error) {
	key := cache.Key(s.botID, s.cred.AppID, from, to)

	messages, hit := s.lookup(ctx, key)
	metrics.RecordCacheLookup(hit)

	var warning string
	if !hit {
		var err error
		messages, err = s.fetcher.Fetch(ctx, s.botID, s.cred, from, to, onPage)
		if err != nil {
			if errors.Is(err, fetcher.ErrToken) {
				metrics.ReportsTotal.WithLabelValues("error").Inc()
				return nil, err
			}
			// Partial results are still processed and shown, but a
			// truncated stream must not be memoized.
			warning = err.Error()
			s.logger.Warn("fetch ended early, continuing with partial results",
				zap.Int("messages", len(messages)), zap.Error(err))
		} else if err := s.cache.Set(ctx, key, messages); err != nil {
			s.logger.Warn("result cache write failed", zap.Error(err))
		}
	}

	pairs := report.Reconstruct(messages)

	status := "ok"
	if warning != "" {
		status = "partial"
	}
	metrics.ReportsTotal.WithLabelValues(status).Inc()
	metrics.PairsPerReport.Observe(float64(len(pairs)))

	return &model.Report{
		Summary: report.Summarize(pairs),
		Pairs:   pairs,
		Warning: warning,
	}, nil
}

// lookup consults the result cache; cache errors count as misses.
func (s *ReportService) lookup(ctx context.Context, key string) ([]model.NormalizedMessage, bool) {
	messages, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("result cache read failed", zap.Error(err))
		return nil, false
	}
	return messages, hit
}

// ExportCSV is a convenience for callers that only need the flat file.
func (s *ReportService) ExportCSV(ctx context.Context, from, to time.Time, onPage fetcher.ProgressFunc) ([]byte, error) {
	rep, err := s.Generate(ctx, from, to, onPage)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep.Pairs); err != nil {
		return nil, fmt.Errorf("serialize csv: %w", err)
	}
	return buf.Bytes(), nil
}
