package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/focus-analytics/transcript-insights/internal/cache"
	"github.com/focus-analytics/transcript-insights/internal/fetcher"
	"github.com/focus-analytics/transcript-insights/internal/model"
	"github.com/focus-analytics/transcript-insights/pkg/logger"
)

type fakeFetcher struct {
	calls    int
	messages []model.NormalizedMessage
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, _ model.Credential, _, _ time.Time, _ fetcher.ProgressFunc) ([]model.NormalizedMessage, error) {
	f.calls++
	return f.messages, f.err
}

var (
	testCred = model.Credential{AppID: "app", Secret: "secret"}
	from     = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to       = time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
)

func conversation() []model.NormalizedMessage {
	t1 := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	return []model.NormalizedMessage{
		{Timestamp: t1.Add(time.Minute), SessionID: "s1", UserID: "u1", Sender: model.SenderBot, Message: "A1"},
		{Timestamp: t1, SessionID: "s1", UserID: "u1", Sender: model.SenderUser, Message: "Q1"},
	}
}

func TestGenerateMemoizes(t *testing.T) {
	f := &fakeFetcher{messages: conversation()}
	svc := NewReportService("bot", testCred, f, cache.NewMemory(5*time.Minute), logger.NewNop())

	first, err := svc.Generate(context.Background(), from, to, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Pairs) != 1 || first.Pairs[0].Query != "Q1" || first.Pairs[0].Response != "A1" {
		t.Fatalf("unexpected report %+v", first)
	}
	if first.Summary.TotalQueries != 1 || first.Summary.ResponseRate != 100.0 {
		t.Errorf("unexpected summary %+v", first.Summary)
	}

	second, err := svc.Generate(context.Background(), from, to, nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.calls != 1 {
		t.Errorf("fetcher called %d times, want 1 (second call should hit cache)", f.calls)
	}
	if len(second.Pairs) != 1 {
		t.Errorf("cached report differs: %+v", second)
	}

	// A different range is a different key.
	if _, err := svc.Generate(context.Background(), from.AddDate(0, 0, 1), to, nil); err != nil {
		t.Fatal(err)
	}
	if f.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", f.calls)
	}
}

func TestGeneratePartialFetch(t *testing.T) {
	apiErr := &fetcher.APIError{Status: 500, Reason: "Internal Server Error", Body: "{}"}
	f := &fakeFetcher{messages: conversation(), err: apiErr}
	svc := NewReportService("bot", testCred, f, cache.NewMemory(5*time.Minute), logger.NewNop())

	rep, err := svc.Generate(context.Background(), from, to, nil)
	if err != nil {
		t.Fatalf("partial fetch must not be fatal, got %v", err)
	}
	if rep.Warning == "" {
		t.Error("expected warning on partial fetch")
	}
	if len(rep.Pairs) != 1 {
		t.Errorf("partial messages should still be reconstructed, got %+v", rep.Pairs)
	}

	// Partial results must not be memoized.
	if _, err := svc.Generate(context.Background(), from, to, nil); err != nil {
		t.Fatal(err)
	}
	if f.calls != 2 {
		t.Errorf("fetcher called %d times, want 2 (partial result cached?)", f.calls)
	}
}

func TestGenerateTokenFailureFatal(t *testing.T) {
	f := &fakeFetcher{err: fetcher.ErrToken}
	svc := NewReportService("bot", testCred, f, cache.NewMemory(5*time.Minute), logger.NewNop())

	if _, err := svc.Generate(context.Background(), from, to, nil); !errors.Is(err, fetcher.ErrToken) {
		t.Fatalf("expected ErrToken, got %v", err)
	}
}

func TestGenerateEmptyRange(t *testing.T) {
	f := &fakeFetcher{}
	svc := NewReportService("bot", testCred, f, cache.NewMemory(5*time.Minute), logger.NewNop())

	rep, err := svc.Generate(context.Background(), from, to, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Pairs != nil || rep.Summary.TotalQueries != 0 {
		t.Errorf("unexpected report for empty stream: %+v", rep)
	}
}

func TestExportCSV(t *testing.T) {
	f := &fakeFetcher{messages: conversation()}
	svc := NewReportService("bot", testCred, f, cache.NewMemory(5*time.Minute), logger.NewNop())

	out, err := svc.ExportCSV(context.Background(), from, to, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("missing UTF-8 BOM")
	}
	if !bytes.Contains(out, []byte("Q1")) {
		t.Errorf("export missing pair data: %q", out)
	}
}
