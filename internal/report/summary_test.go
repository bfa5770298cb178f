package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/focus-analytics/transcript-insights/internal/model"
)

func pair(day int, session, user, query, response string) model.ConversationPair {
	return model.ConversationPair{
		Timestamp: time.Date(2026, 1, day, 12, 0, 0, 0, time.UTC),
		SessionID: session,
		UserID:    user,
		Query:     query,
		Response:  response,
	}
}

func TestSummarize(t *testing.T) {
	pairs := []model.ConversationPair{
		pair(5, "s1", "u1", "hours", "9-5"),
		pair(5, "s1", "u1", "hours", ""),
		pair(5, "s2", "u2", "pricing", "see site"),
		pair(6, "s3", "u1", "hours", "9-5"),
	}

	got := Summarize(pairs)

	if got.TotalQueries != 4 {
		t.Errorf("TotalQueries = %d", got.TotalQueries)
	}
	if got.UniqueUsers != 2 {
		t.Errorf("UniqueUsers = %d", got.UniqueUsers)
	}
	if got.UniqueSessions != 3 {
		t.Errorf("UniqueSessions = %d", got.UniqueSessions)
	}
	if got.ResponseRate != 75.0 {
		t.Errorf("ResponseRate = %v, want 75.0", got.ResponseRate)
	}

	wantDaily := []model.DailyCount{
		{Date: "2026-01-05", Count: 3},
		{Date: "2026-01-06", Count: 1},
	}
	if !reflect.DeepEqual(got.DailyCounts, wantDaily) {
		t.Errorf("DailyCounts = %+v, want %+v", got.DailyCounts, wantDaily)
	}

	wantTop := []model.QueryCount{
		{Query: "hours", Count: 3},
		{Query: "pricing", Count: 1},
	}
	if !reflect.DeepEqual(got.TopQueries, wantTop) {
		t.Errorf("TopQueries = %+v, want %+v", got.TopQueries, wantTop)
	}
}

func TestSummarizeRounding(t *testing.T) {
	pairs := []model.ConversationPair{
		pair(5, "s1", "u1", "a", "x"),
		pair(5, "s2", "u1", "b", ""),
		pair(5, "s3", "u1", "c", ""),
	}
	if got := Summarize(pairs).ResponseRate; got != 33.3 {
		t.Errorf("ResponseRate = %v, want 33.3", got)
	}
}

func TestSummarizeTopQueriesLimit(t *testing.T) {
	var pairs []model.ConversationPair
	queries := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, q := range queries {
		for n := 0; n <= i; n++ {
			pairs = append(pairs, pair(5, "s", "u", q, ""))
		}
	}

	top := Summarize(pairs).TopQueries
	if len(top) != TopQueriesLimit {
		t.Fatalf("len(TopQueries) = %d, want %d", len(top), TopQueriesLimit)
	}
	if top[0].Query != "g" || top[0].Count != 7 {
		t.Errorf("top entry = %+v", top[0])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.TotalQueries != 0 || got.ResponseRate != 0 {
		t.Errorf("unexpected summary for empty input: %+v", got)
	}
	if got.DailyCounts != nil || got.TopQueries != nil {
		t.Errorf("expected no aggregate slices, got %+v", got)
	}
}
