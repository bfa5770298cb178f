// Package report reconstructs query/response pairs from the flat
// message stream and derives the report surfaces built on them.
package report

import (
	"sort"

	"github.com/focus-analytics/transcript-insights/internal/model"
)

// responseJoin separates consecutive bot turns folded into one response.
const responseJoin = " \n "

// sequenced tags a message with its arrival position, the explicit
// secondary sort key for equal timestamps within a session.
type sequenced struct {
	model.NormalizedMessage
	seq int
}

// foldState is the per-session walk state: either no pair is open, or
// exactly one pair is pending its remaining bot turns.
type foldState struct {
	open    bool
	pending model.ConversationPair
}

// Reconstruct groups messages by session, orders each session by time,
// and folds consecutive bot replies into the preceding user query.
// Bot-initiated turns with no preceding user message in their session
// are synthesized under a sentinel query and dropped from the final
// output. The result is globally sorted newest first.
func Reconstruct(messages []model.NormalizedMessage) []model.ConversationPair {
	sessionOrder := make([]string, 0)
	sessions := make(map[string][]sequenced)
	for i, msg := range messages {
		if _, seen := sessions[msg.SessionID]; !seen {
			sessionOrder = append(sessionOrder, msg.SessionID)
		}
		sessions[msg.SessionID] = append(sessions[msg.SessionID], sequenced{msg, i})
	}

	var pairs []model.ConversationPair
	for _, sessionID := range sessionOrder {
		pairs = append(pairs, foldSession(sessions[sessionID])...)
	}

	final := pairs[:0:0]
	for _, pair := range pairs {
		if pair.Query != model.WelcomeSentinel {
			final = append(final, pair)
		}
	}
	if len(final) == 0 {
		return nil
	}

	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Timestamp.After(final[j].Timestamp)
	})
	return final
}

// foldSession walks one session's messages in chronological order,
// carrying the open-pair state.
func foldSession(msgs []sequenced) []model.ConversationPair {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		}
		return msgs[i].seq < msgs[j].seq
	})

	var out []model.ConversationPair
	state := foldState{}

	for _, msg := range msgs {
		switch msg.Sender {
		case model.SenderUser:
			if state.open {
				out = append(out, state.pending)
			}
			state = foldState{
				open: true,
				pending: model.ConversationPair{
					Timestamp: msg.Timestamp,
					SessionID: msg.SessionID,
					UserID:    msg.UserID,
					Query:     msg.Message,
				},
			}
		case model.SenderBot:
			if state.open {
				if state.pending.Response != "" {
					state.pending.Response += responseJoin + msg.Message
				} else {
					state.pending.Response = msg.Message
				}
				continue
			}
			// Bot spoke first: emit a terminal sentinel pair without
			// opening a pending one.
			out = append(out, model.ConversationPair{
				Timestamp: msg.Timestamp,
				SessionID: msg.SessionID,
				UserID:    msg.UserID,
				Query:     model.WelcomeSentinel,
				Response:  msg.Message,
			})
		}
	}

	if state.open {
		out = append(out, state.pending)
	}
	return out
}
