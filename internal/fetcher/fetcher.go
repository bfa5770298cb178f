// Package fetcher drives paginated retrieval of message history from
// the bot platform.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/focus-analytics/transcript-insights/internal/model"
	"github.com/focus-analytics/transcript-insights/internal/normalize"
	"github.com/focus-analytics/transcript-insights/internal/token"
	"github.com/focus-analytics/transcript-insights/pkg/logger"
	"github.com/focus-analytics/transcript-insights/pkg/metrics"
)

const (
	// pageSize is the fixed page size of the getMessages API.
	pageSize = 100

	// userDetailsMarker tags internal payload messages that must never
	// surface in a report.
	userDetailsMarker = "@@userdetailspayload@@"

	dateLayout = "2006-01-02"
)

// uuidPattern matches a bare UUID (8-4-4-4-12 hex groups). Messages
// whose entire trimmed text is a UUID are channel-metadata noise.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ErrToken indicates the platform token could not be minted. Nothing
// was fetched; the partial-result policy does not apply.
var ErrToken = errors.New("platform token could not be minted")

// ProgressFunc is notified once per page with the page number and the
// running message count. It is purely observational.
type ProgressFunc func(page, runningCount int)

// APIError is a non-2xx response from the platform API. The loop stops
// on the first one; messages gathered from earlier pages are kept.
type APIError struct {
	Status int
	Reason string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error: %d %s: %s", e.Status, e.Reason, e.Body)
}

// Fetcher retrieves and normalizes message history pages.
type Fetcher struct {
	host      string
	client    *http.Client
	issuer    *token.Issuer
	logger    *logger.Logger
	pageDelay time.Duration
}

// New creates a fetcher for the given platform host.
func New(host string, issuer *token.Issuer, log *logger.Logger) *Fetcher {
	return &Fetcher{
		host:      strings.TrimRight(host, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
		issuer:    issuer,
		logger:    log,
		pageDelay: 100 * time.Millisecond,
	}
}

// Fetch retrieves all messages for botID in [from, to], newest first.
// On an API or transport error the messages accumulated so far are
// returned together with the error; the caller decides whether partial
// results are still worth showing.
func (f *Fetcher) Fetch(ctx context.Context, botID string, cred model.Credential, from, to time.Time, onPage ProgressFunc) ([]model.NormalizedMessage, error) {
	start := time.Now()

	tok, err := f.issuer.Issue(cred.AppID, cred.Secret)
	if err != nil {
		metrics.RecordFetch("token_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", ErrToken, err)
	}

	log := f.logger.WithFetch(botID, from.Format(dateLayout), to.Format(dateLayout))
	url := fmt.Sprintf("%s/api/public/bot/%s/getMessages", f.host, botID)

	var all []model.NormalizedMessage
	skip := 0
	page := 0

	for {
		body := model.GetMessagesRequest{
			Skip:     skip,
			Limit:    pageSize,
			DateFrom: from.Format(dateLayout),
			DateTo:   to.Format(dateLayout),
			Forward:  "false",
		}

		resp, err := f.postPage(ctx, url, tok, body)
		if err != nil {
			log.Error("page fetch failed", zap.Int("page", page+1), zap.Error(err))
			metrics.RecordFetch("transport_error", time.Since(start).Seconds())
			return all, fmt.Errorf("fetch page %d: %w", page+1, err)
		}

		if apiErr := checkStatus(resp); apiErr != nil {
			resp.Body.Close()
			log.Error("page fetch rejected",
				zap.Int("page", page+1),
				zap.Int("status", apiErr.Status),
				zap.String("body", apiErr.Body),
			)
			metrics.RecordFetch("api_error", time.Since(start).Seconds())
			return all, apiErr
		}

		var pageResp model.GetMessagesResponse
		err = json.NewDecoder(resp.Body).Decode(&pageResp)
		resp.Body.Close()
		if err != nil {
			log.Error("page decode failed", zap.Int("page", page+1), zap.Error(err))
			metrics.RecordFetch("transport_error", time.Since(start).Seconds())
			return all, fmt.Errorf("decode page %d: %w", page+1, err)
		}

		page++
		metrics.TranscriptPagesTotal.Inc()
		if onPage != nil {
			onPage(page, len(all))
		}
		log.Debug("page received",
			zap.Int("page", page),
			zap.Int("messages", len(pageResp.Messages)),
			zap.Int("running_count", len(all)),
		)

		for _, raw := range pageResp.Messages {
			if msg, ok := f.normalizeMessage(raw, log); ok {
				all = append(all, msg)
			}
		}

		if !pageResp.MoreAvailable {
			break
		}
		skip += pageSize

		// Courtesy delay between pages.
		select {
		case <-ctx.Done():
			metrics.RecordFetch("canceled", time.Since(start).Seconds())
			return all, ctx.Err()
		case <-time.After(f.pageDelay):
		}
	}

	log.Info("fetch complete", zap.Int("pages", page), zap.Int("messages", len(all)))
	metrics.RecordFetch("ok", time.Since(start).Seconds())
	return all, nil
}

func (f *Fetcher) postPage(ctx context.Context, url, tok string, body model.GetMessagesRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("auth", tok)
	req.Header.Set("content-type", "application/json")

	return f.client.Do(req)
}

// checkStatus turns a non-2xx response into an APIError, compacting
// the body when it parses as JSON.
func checkStatus(resp *http.Response) *APIError {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	body := strings.TrimSpace(string(raw))

	var compact bytes.Buffer
	if json.Compact(&compact, raw) == nil {
		body = compact.String()
	}

	return &APIError{
		Status: resp.StatusCode,
		Reason: http.StatusText(resp.StatusCode),
		Body:   body,
	}
}

// normalizeMessage converts one raw message into a NormalizedMessage,
// reporting ok=false when the message is filtered out.
func (f *Fetcher) normalizeMessage(raw model.RawMessage, log *logger.Logger) (model.NormalizedMessage, bool) {
	var text string
	if len(raw.Components) > 0 {
		text = raw.Components[0].Data.Text
	}

	final := normalize.Normalize(text)
	trimmed := strings.TrimSpace(final)

	switch {
	case final == "":
		metrics.TranscriptMessagesDropped.WithLabelValues("empty").Inc()
		return model.NormalizedMessage{}, false
	case uuidPattern.MatchString(trimmed):
		metrics.TranscriptMessagesDropped.WithLabelValues("uuid").Inc()
		return model.NormalizedMessage{}, false
	case strings.Contains(trimmed, userDetailsMarker):
		metrics.TranscriptMessagesDropped.WithLabelValues("user_details").Inc()
		return model.NormalizedMessage{}, false
	}

	ts, err := time.Parse(time.RFC3339, raw.CreatedOn)
	if err != nil {
		log.Debug("dropping message with unparseable timestamp",
			zap.String("created_on", raw.CreatedOn))
		metrics.TranscriptMessagesDropped.WithLabelValues("bad_timestamp").Inc()
		return model.NormalizedMessage{}, false
	}

	sessionID := raw.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}
	userID := raw.CreatedBy
	if userID == "" {
		userID = "system"
	}

	sender := model.SenderBot
	if raw.Type == "incoming" {
		sender = model.SenderUser
	}

	metrics.TranscriptMessagesKept.Inc()
	return model.NormalizedMessage{
		Timestamp: ts,
		SessionID: sessionID,
		UserID:    userID,
		Sender:    sender,
		Message:   final,
	}, true
}
