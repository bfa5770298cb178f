package model

import (
	"time"
)

// WelcomeSentinel marks a pair synthesized for a bot message that
// arrived before any user message in its session. Pairs carrying it are
// dropped from the final report.
const WelcomeSentinel = "(Bot Initiated / Welcome)"

// ConversationPair is one reconstructed query/response unit. Timestamp
// is always the timestamp of the triggering query, never of a response.
type ConversationPair struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
}

// DailyCount is the number of queries observed on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// QueryCount is one entry of the most-frequent-queries ranking.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// ReportSummary holds the aggregate values the presentation layer
// renders as KPI cards and charts.
type ReportSummary struct {
	TotalQueries   int          `json:"total_queries"`
	UniqueUsers    int          `json:"unique_users"`
	UniqueSessions int          `json:"unique_sessions"`
	ResponseRate   float64      `json:"response_rate"`
	DailyCounts    []DailyCount `json:"daily_counts"`
	TopQueries     []QueryCount `json:"top_queries"`
}

// Report is the full output of one fetch-and-reconstruct cycle.
// Warning carries the error text of a partial fetch; the pairs built
// from the pages gathered before the failure are still included.
type Report struct {
	Summary ReportSummary      `json:"summary"`
	Pairs   []ConversationPair `json:"pairs"`
	Warning string             `json:"warning,omitempty"`
}
