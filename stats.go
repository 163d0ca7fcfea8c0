package sqlexec

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
)

// Stats provides run statistics with thread-safe access. Counter fields
// use atomic operations so concurrent file workers can share one Stats.
type Stats struct {
	statements atomic.Int64 // statements executed to completion
	batches    atomic.Int64 // result batches written
	rows       atomic.Int64 // rows fetched and written
	skipped    atomic.Int64 // statements skipped through an ErrorHandler
	errors     atomic.Int64 // errors encountered, including skipped ones
}

// NewStats creates a Stats with initial counter values. Use this when
// restoring counters from a checkpoint.
func NewStats(statements, batches, rows, skipped, errors int64) *Stats {
	s := &Stats{}
	s.statements.Store(statements)
	s.batches.Store(batches)
	s.rows.Store(rows)
	s.skipped.Store(skipped)
	s.errors.Store(errors)
	return s
}

// Statements returns the number of statements executed to completion.
func (s *Stats) Statements() int64 { return s.statements.Load() }

// Batches returns the number of result batches produced.
func (s *Stats) Batches() int64 { return s.batches.Load() }

// Rows returns the number of rows fetched.
func (s *Stats) Rows() int64 { return s.rows.Load() }

// Skipped returns the number of statements skipped.
func (s *Stats) Skipped() int64 { return s.skipped.Load() }

// Errors returns the number of errors encountered.
func (s *Stats) Errors() int64 { return s.errors.Load() }

// LogValue implements slog.LogValuer for structured logging.
func (s *Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("statements", s.Statements()),
		slog.Int64("batches", s.Batches()),
		slog.Int64("rows", s.Rows()),
		slog.Int64("skipped", s.Skipped()),
		slog.Int64("errors", s.Errors()),
	)
}

// statsJSON is the JSON representation for marshaling/unmarshaling Stats.
type statsJSON struct {
	Statements int64 `json:"statements"`
	Batches    int64 `json:"batches"`
	Rows       int64 `json:"rows"`
	Skipped    int64 `json:"skipped"`
	Errors     int64 `json:"errors"`
}

// MarshalJSON implements json.Marshaler for Stats serialization.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Statements: s.statements.Load(),
		Batches:    s.batches.Load(),
		Rows:       s.rows.Load(),
		Skipped:    s.skipped.Load(),
		Errors:     s.errors.Load(),
	})
}

// UnmarshalJSON implements json.Unmarshaler for Stats deserialization.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var v statsJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.statements.Store(v.Statements)
	s.batches.Store(v.Batches)
	s.rows.Store(v.Rows)
	s.skipped.Store(v.Skipped)
	s.errors.Store(v.Errors)
	return nil
}

// merge adds the counters of other into s. Used by the directory runner
// to fold per-file stats into the aggregate.
func (s *Stats) merge(other *Stats) {
	s.statements.Add(other.Statements())
	s.batches.Add(other.Batches())
	s.rows.Add(other.Rows())
	s.skipped.Add(other.Skipped())
	s.errors.Add(other.Errors())
}

// restore overwrites the counters from saved values.
func (s *Stats) restore(saved *Stats) {
	s.statements.Store(saved.Statements())
	s.batches.Store(saved.Batches())
	s.rows.Store(saved.Rows())
	s.skipped.Store(saved.Skipped())
	s.errors.Store(saved.Errors())
}

// Internal increment methods. These return the new value after
// incrementing, which keeps progress-threshold checks race-free.
func (s *Stats) incStatements(n int64) int64 { return s.statements.Add(n) }
func (s *Stats) incBatches(n int64) int64    { return s.batches.Add(n) }
func (s *Stats) incRows(n int64) int64       { return s.rows.Add(n) }
func (s *Stats) incSkipped(n int64) int64    { return s.skipped.Add(n) }
func (s *Stats) incErrors(n int64) int64     { return s.errors.Add(n) }
