// Package model defines data structures for the transcript insights pipeline.
package model

import (
	"time"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "USER"
	SenderBot  Sender = "BOT"
)

// RawMessage is a single message as returned by the platform's
// getMessages API. It is consumed during fetching and never stored.
type RawMessage struct {
	CreatedOn  string         `json:"createdOn"`
	SessionID  string         `json:"sessionId"`
	CreatedBy  string         `json:"createdBy"`
	Type       string         `json:"type"`
	Components []RawComponent `json:"components"`
}

// RawComponent carries the nested text payload of a raw message.
// Only the first component of a message is ever inspected.
type RawComponent struct {
	Data RawComponentData `json:"data"`
}

// RawComponentData holds the text field of a component.
type RawComponentData struct {
	Text string `json:"text"`
}

// GetMessagesRequest is the request body for one page of message history.
// The platform expects forward as a string, not a boolean.
type GetMessagesRequest struct {
	Skip     int    `json:"skip"`
	Limit    int    `json:"limit"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Forward  string `json:"forward"`
}

// GetMessagesResponse is one page of message history.
type GetMessagesResponse struct {
	Messages      []RawMessage `json:"messages"`
	MoreAvailable bool         `json:"moreAvailable"`
}

// NormalizedMessage is a message that survived normalization and
// filtering. Message is never the empty string.
type NormalizedMessage struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
}
