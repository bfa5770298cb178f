package report

import (
	"math"
	"sort"

	"github.com/focus-analytics/transcript-insights/internal/model"
)

// TopQueriesLimit is the size of the most-frequent-queries ranking.
const TopQueriesLimit = 5

// Summarize computes the aggregate values of a reconstructed report.
func Summarize(pairs []model.ConversationPair) model.ReportSummary {
	summary := model.ReportSummary{TotalQueries: len(pairs)}
	if len(pairs) == 0 {
		return summary
	}

	users := make(map[string]struct{})
	sessions := make(map[string]struct{})
	daily := make(map[string]int)
	queries := make(map[string]int)
	responded := 0

	for _, pair := range pairs {
		users[pair.UserID] = struct{}{}
		sessions[pair.SessionID] = struct{}{}
		daily[pair.Timestamp.Format("2006-01-02")]++
		queries[pair.Query]++
		if pair.Response != "" {
			responded++
		}
	}

	summary.UniqueUsers = len(users)
	summary.UniqueSessions = len(sessions)
	summary.ResponseRate = math.Round(float64(responded)/float64(len(pairs))*1000) / 10

	for date, count := range daily {
		summary.DailyCounts = append(summary.DailyCounts, model.DailyCount{Date: date, Count: count})
	}
	sort.Slice(summary.DailyCounts, func(i, j int) bool {
		return summary.DailyCounts[i].Date < summary.DailyCounts[j].Date
	})

	for query, count := range queries {
		summary.TopQueries = append(summary.TopQueries, model.QueryCount{Query: query, Count: count})
	}
	sort.Slice(summary.TopQueries, func(i, j int) bool {
		if summary.TopQueries[i].Count != summary.TopQueries[j].Count {
			return summary.TopQueries[i].Count > summary.TopQueries[j].Count
		}
		return summary.TopQueries[i].Query < summary.TopQueries[j].Query
	})
	if len(summary.TopQueries) > TopQueriesLimit {
		summary.TopQueries = summary.TopQueries[:TopQueriesLimit]
	}

	return summary
}
