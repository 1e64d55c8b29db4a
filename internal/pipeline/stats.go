package pipeline

import (
	"sync/atomic"
	"time"
)

// Outcome is the terminal state of one candidate.
type Outcome int

const (
	OutcomeProcessed Outcome = iota // Thumbnail written.
	OutcomeSkipped                  // Thumbnail already present.
	OutcomeError                    // Abandoned or extraction failed.
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "error"
	}
}

// FileResult is the outcome of processing one candidate. Repaired is
// independent of Outcome: a repaired file can still end in error.
type FileResult struct {
	Candidate Candidate
	Outcome   Outcome
	Repaired  bool
	Err       *Failure
	Duration  time.Duration
}

// RunStats is a point-in-time copy of the run counters.
type RunStats struct {
	Total     int
	Processed int
	Skipped   int
	Repaired  int
	Errors    int
}

// Stats accumulates RunStats across concurrent workers.
type Stats struct {
	total, processed, skipped, repaired, errors atomic.Int64
}

// Record counts one finished candidate. Total is bumped exactly once per call.
func (s *Stats) Record(r FileResult) {
	s.total.Add(1)
	if r.Repaired {
		s.repaired.Add(1)
	}
	switch r.Outcome {
	case OutcomeProcessed:
		s.processed.Add(1)
	case OutcomeSkipped:
		s.skipped.Add(1)
	default:
		s.errors.Add(1)
	}
}

// Snapshot returns the current counts.
func (s *Stats) Snapshot() RunStats {
	return RunStats{
		Total:     int(s.total.Load()),
		Processed: int(s.processed.Load()),
		Skipped:   int(s.skipped.Load()),
		Repaired:  int(s.repaired.Load()),
		Errors:    int(s.errors.Load()),
	}
}
