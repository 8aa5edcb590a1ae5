package pipeline

import (
	"context"
	"time"
)

// Phase is the position of a run in the fixed stage chain.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseDataFetched
	PhaseAnalyzed
	PhaseReported
	PhaseDone
)

var phaseNames = [...]string{"start", "data_fetched", "analyzed", "reported", "done"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// ParsePhase maps a stored phase name back to its value.
func ParsePhase(name string) (Phase, bool) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), true
		}
	}
	return PhaseStart, false
}

// Stage is one step of the chain. It receives the run by value and returns
// only the fields it computed.
type Stage interface {
	Meta() StageMeta
	Handle(ctx context.Context, run AnalysisRun) (Update, error)
}

// StageMeta carries the scheduling information for a stage.
type StageMeta struct {
	Name     string
	Requires Phase
	Produces Phase
	Timeout  time.Duration
}

// StageError wraps a stage failure with the phase the run had reached.
type StageError struct {
	Stage string
	Phase Phase
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Stage
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
