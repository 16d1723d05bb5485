// Package history archives one record per answered question so a caller
// can look up what was generated and executed for a given query id.
package history

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("history entry not found")

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Entry struct {
	ID          string    `json:"id"`
	TraceID     string    `json:"trace_id,omitempty"`
	Question    string    `json:"question"`
	SQL         string    `json:"sql,omitempty"`
	Status      Status    `json:"status"`
	Stage       string    `json:"stage,omitempty"`
	RowCount    int       `json:"row_count"`
	Explanation string    `json:"explanation,omitempty"`
	Error       string    `json:"error,omitempty"`
	Model       string    `json:"model,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type Reader interface {
	Lookup(ctx context.Context, id string) (Entry, error)
}
