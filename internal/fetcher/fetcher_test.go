package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/focus-analytics/transcript-insights/internal/model"
	"github.com/focus-analytics/transcript-insights/internal/token"
	"github.com/focus-analytics/transcript-insights/pkg/logger"
)

var testCred = model.Credential{AppID: "cs-app", Secret: "cs-secret"}

func testFetcher(host string) *Fetcher {
	f := New(host, token.NewIssuer(), logger.NewNop())
	f.pageDelay = 0
	return f
}

func textMessage(createdOn, sessionID, createdBy, typ, text string) model.RawMessage {
	return model.RawMessage{
		CreatedOn:  createdOn,
		SessionID:  sessionID,
		CreatedBy:  createdBy,
		Type:       typ,
		Components: []model.RawComponent{{Data: model.RawComponentData{Text: text}}},
	}
}

func TestFetchPaginates(t *testing.T) {
	var bodies []model.GetMessagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/public/bot/st-bot-1/getMessages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("auth") == "" {
			t.Error("missing auth header")
		}
		if r.Header.Get("content-type") != "application/json" {
			t.Errorf("content-type = %s", r.Header.Get("content-type"))
		}

		var body model.GetMessagesRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		bodies = append(bodies, body)

		resp := model.GetMessagesResponse{}
		switch body.Skip {
		case 0:
			resp.Messages = []model.RawMessage{
				textMessage("2026-01-05T10:02:00Z", "s1", "u1", "outgoing", "Hello, how can I help?"),
				textMessage("2026-01-05T10:01:00Z", "s1", "u1", "incoming", "Hi"),
			}
			resp.MoreAvailable = true
		case 100:
			resp.Messages = []model.RawMessage{
				textMessage("2026-01-04T09:00:00Z", "s2", "u2", "incoming", "Where is my order?"),
			}
		default:
			t.Errorf("unexpected skip %d", body.Skip)
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	f := testFetcher(server.URL)

	var pages []int
	var counts []int
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	got, err := f.Fetch(context.Background(), "st-bot-1", testCred, from, to, func(page, count int) {
		pages = append(pages, page)
		counts = append(counts, count)
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(bodies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(bodies))
	}
	for _, body := range bodies {
		if body.Limit != 100 {
			t.Errorf("limit = %d, want 100", body.Limit)
		}
		if body.DateFrom != "2026-01-01" || body.DateTo != "2026-01-08" {
			t.Errorf("dates = %s..%s", body.DateFrom, body.DateTo)
		}
		if body.Forward != "false" {
			t.Errorf("forward = %q, want the string false", body.Forward)
		}
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0].Sender != model.SenderBot || got[0].Message != "Hello, how can I help?" {
		t.Errorf("unexpected first message %+v", got[0])
	}
	if got[1].Sender != model.SenderUser {
		t.Errorf("incoming message should be USER, got %s", got[1].Sender)
	}
	if got[2].SessionID != "s2" || got[2].UserID != "u2" {
		t.Errorf("unexpected last message %+v", got[2])
	}

	if len(pages) != 2 || pages[0] != 1 || pages[1] != 2 {
		t.Errorf("progress pages = %v", pages)
	}
	if counts[0] != 0 || counts[1] != 2 {
		t.Errorf("progress counts = %v", counts)
	}
}

func TestFetchFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := model.GetMessagesResponse{
			Messages: []model.RawMessage{
				textMessage("2026-01-05T10:00:00Z", "s1", "u1", "incoming", ""),
				textMessage("2026-01-05T10:00:01Z", "s1", "u1", "incoming", "  a1b2c3d4-e5f6-7890-abcd-1234567890ab  "),
				textMessage("2026-01-05T10:00:02Z", "s1", "u1", "incoming", "x @@userdetailspayload@@ y"),
				textMessage("2026-01-05T10:00:03Z", "s1", "u1", "incoming", "<br/>"),
				textMessage("not-a-timestamp", "s1", "u1", "incoming", "dropped anyway"),
				{CreatedOn: "2026-01-05T10:00:04Z", SessionID: "s1", CreatedBy: "u1", Type: "incoming"},
				textMessage("2026-01-05T10:00:05Z", "", "", "outgoing", `{"payload": {}, "type": "carousel"}`),
				textMessage("2026-01-05T10:00:06Z", "s1", "u1", "incoming", "keep me"),
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	f := testFetcher(server.URL)
	got, err := f.Fetch(context.Background(), "st-bot-1", testCred,
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 surviving messages, got %d: %+v", len(got), got)
	}
	if got[0].Message != "[Interactive: carousel]" {
		t.Errorf("interactive label = %q", got[0].Message)
	}
	if got[0].SessionID != "unknown" || got[0].UserID != "system" {
		t.Errorf("expected identity defaults, got %+v", got[0])
	}
	if got[1].Message != "keep me" {
		t.Errorf("unexpected survivor %q", got[1].Message)
	}
}

func TestFetchStopsOnAPIError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		var body model.GetMessagesRequest
		json.NewDecoder(r.Body).Decode(&body)

		if body.Skip >= 100 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"errors": [{"msg": "something broke"}]}`))
			return
		}
		json.NewEncoder(w).Encode(model.GetMessagesResponse{
			Messages: []model.RawMessage{
				textMessage("2026-01-05T10:00:00Z", "s1", "u1", "incoming", "page one"),
			},
			MoreAvailable: true,
		})
	}))
	defer server.Close()

	f := testFetcher(server.URL)
	got, err := f.Fetch(context.Background(), "st-bot-1", testCred,
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Body != `{"errors":[{"msg":"something broke"}]}` {
		t.Errorf("body = %q", apiErr.Body)
	}

	// Partial-result policy: page one survives, page three never requested.
	if len(got) != 1 || got[0].Message != "page one" {
		t.Errorf("partial = %+v", got)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	f := testFetcher(server.URL)
	got, err := f.Fetch(context.Background(), "st-bot-1", testCred,
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if len(got) != 0 {
		t.Errorf("expected no messages, got %d", len(got))
	}
}

func TestFetchBadCredential(t *testing.T) {
	f := testFetcher("http://localhost:0")
	_, err := f.Fetch(context.Background(), "st-bot-1", model.Credential{},
		time.Now(), time.Now(), nil)
	if !errors.Is(err, ErrToken) {
		t.Fatalf("expected ErrToken, got %v", err)
	}
}
