package models

import "time"

// JournalEntry records one dispatched request and its response.
type JournalEntry struct {
	ID        int64                        `json:"id" db:"id"`
	RequestID string                       `json:"request_id" db:"request_id"`
	Source    string                       `json:"source" db:"source"`
	Request   string                       `json:"request" db:"request"`
	Response  string                       `json:"response" db:"response"`
	Failed    bool                         `json:"failed" db:"failed"`
	Duration  time.Duration                `json:"duration" db:"duration_us"`
	Metadata  JSONField[map[string]string] `json:"metadata" db:"metadata"`
	CreatedAt time.Time                    `json:"created_at" db:"created_at"`
}

// DispatchRequest is the JSON form of a dispatch call on the HTTP API.
type DispatchRequest struct {
	Request string `json:"request"`
	Source  string `json:"source,omitempty"`
}

// DispatchResponse is the JSON form of a dispatch result.
type DispatchResponse = Result[string]
