// Package journal persists one record per IR bus transaction so failed
// transmissions can be inspected after the fact.
package journal

import (
	"context"
	"time"

	"github.com/kilianp07/irbridge/core/model"
)

// Record captures one transaction.
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Code       string    `json:"code"`
	Success    bool      `json:"success"`
	Value      uint16    `json:"value"`
	Resynced   bool      `json:"resynced"`
	Error      string    `json:"error,omitempty"`
	ReadError  string    `json:"read_error,omitempty"`
	DurationMS float64   `json:"duration_ms"`
}

// Failed reports whether the transaction aborted or its read failed.
func (r Record) Failed() bool { return !r.Success || r.ReadError != "" }

// FromResult converts a transaction result into a Record.
func FromResult(res model.TransmitResult) Record {
	rec := Record{
		ID:         res.ID,
		Timestamp:  res.Started,
		Code:       res.Code.String(),
		Success:    res.Success,
		Value:      res.Value,
		Resynced:   res.Resynced,
		DurationMS: float64(res.Duration.Microseconds()) / 1000,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if res.ReadErr != nil {
		rec.ReadError = res.ReadErr.Error()
	}
	return rec
}

// Query defines filters for retrieving records. Zero fields match anything.
type Query struct {
	Start time.Time
	End   time.Time
	// Code restricts results to one code, formatted like model.IRCode.String.
	Code       string
	FailedOnly bool
	// Limit keeps only the most recent Limit records.
	Limit int
}

// Match reports whether r satisfies q, ignoring Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Code != "" && r.Code != q.Code {
		return false
	}
	if q.FailedOnly && !r.Failed() {
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying. Query returns records in
// chronological order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

func timeFromUnixNano(n int64) time.Time { return time.Unix(0, n) }
