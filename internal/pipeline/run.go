package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stockbrief/internal/market"
)

// ErrFieldAlreadySet is returned when an update touches a field an earlier
// stage already wrote.
var ErrFieldAlreadySet = errors.New("run field already set")

type field uint8

const (
	fieldData field = 1 << iota
	fieldSeries
	fieldAnalysis
	fieldReport
)

// AnalysisRun is the record carried through one pipeline execution.
type AnalysisRun struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Phase      Phase           `json:"-"`
	Data       market.Snapshot `json:"data"`
	Series     []market.Candle `json:"series,omitempty"`
	Analysis   string          `json:"analysis,omitempty"`
	Report     string          `json:"report,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at,omitempty"`

	written field
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Update is the delta a stage hands back. Nil fields are left untouched.
type Update struct {
	Data     *market.Snapshot
	Series   []market.Candle
	Analysis *string
	Report   *string
}

// IsEmpty reports whether u writes nothing.
func (u Update) IsEmpty() bool {
	return u.Data == nil && u.Series == nil && u.Analysis == nil && u.Report == nil
}

// Merge applies u to the run. Every field can be written once; the run is
// left unchanged when any field of u was already written.
func (r *AnalysisRun) Merge(u Update) error {
	var touched field
	if u.Data != nil {
		touched |= fieldData
	}
	if u.Series != nil {
		touched |= fieldSeries
	}
	if u.Analysis != nil {
		touched |= fieldAnalysis
	}
	if u.Report != nil {
		touched |= fieldReport
	}
	if dup := touched & r.written; dup != 0 {
		return fmt.Errorf("%w: %s", ErrFieldAlreadySet, dup)
	}
	if u.Data != nil {
		r.Data = *u.Data
	}
	if u.Series != nil {
		r.Series = append([]market.Candle(nil), u.Series...)
	}
	if u.Analysis != nil {
		r.Analysis = *u.Analysis
	}
	if u.Report != nil {
		r.Report = *u.Report
	}
	r.written |= touched
	return nil
}

func (f field) String() string {
	names := make([]string, 0, 4)
	for _, item := range []struct {
		bit  field
		name string
	}{
		{fieldData, "data"},
		{fieldSeries, "series"},
		{fieldAnalysis, "analysis"},
		{fieldReport, "report"},
	} {
		if f&item.bit != 0 {
			names = append(names, item.name)
		}
	}
	return strings.Join(names, ",")
}
