package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockbrief/internal/market"
	"stockbrief/internal/pipeline"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by GetRun for an unknown id.
var ErrNotFound = errors.New("run not found")

const (
	StatusDone   = "done"
	StatusFailed = "failed"

	defaultListLimit = 20
	maxListLimit     = 200
)

// RunRecord is the persisted form of a pipeline run.
type RunRecord struct {
	ID         string         `gorm:"column:id;primaryKey" json:"id"`
	Symbol     string         `gorm:"column:symbol;index" json:"symbol"`
	Phase      string         `gorm:"column:phase" json:"phase"`
	Status     string         `gorm:"column:status;index" json:"status"`
	Source     string         `gorm:"column:source" json:"source,omitempty"`
	Model      string         `gorm:"column:model" json:"model,omitempty"`
	Data       datatypes.JSON `gorm:"column:data" json:"data,omitempty"`
	Series     datatypes.JSON `gorm:"column:series" json:"-"`
	Analysis   string         `gorm:"column:analysis" json:"analysis,omitempty"`
	Report     string         `gorm:"column:report" json:"report,omitempty"`
	Error      string         `gorm:"column:error" json:"error,omitempty"`
	StartedAt  time.Time      `gorm:"column:started_at;index" json:"started_at"`
	FinishedAt time.Time      `gorm:"column:finished_at" json:"finished_at"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (RunRecord) TableName() string { return "analysis_runs" }

// Snapshot decodes the stored statistics.
func (r RunRecord) Snapshot() (market.Snapshot, error) {
	var snap market.Snapshot
	if len(r.Data) == 0 {
		return snap, nil
	}
	err := json.Unmarshal(r.Data, &snap)
	return snap, err
}

// Candles decodes the stored price window.
func (r RunRecord) Candles() ([]market.Candle, error) {
	if len(r.Series) == 0 {
		return nil, nil
	}
	var out []market.Candle
	if err := json.Unmarshal(r.Series, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RunMeta describes where a run's inputs came from.
type RunMeta struct {
	Source string
	Model  string
}

// NewRunRecord converts a finished or aborted run. runErr marks it failed.
func NewRunRecord(run pipeline.AnalysisRun, meta RunMeta, runErr error) (RunRecord, error) {
	rec := RunRecord{
		ID:         run.ID,
		Symbol:     run.Symbol,
		Phase:      run.Phase.String(),
		Status:     StatusDone,
		Source:     meta.Source,
		Model:      meta.Model,
		Analysis:   run.Analysis,
		Report:     run.Report,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if runErr != nil {
		rec.Status = StatusFailed
		rec.Error = runErr.Error()
	}
	if !run.Data.IsZero() {
		raw, err := json.Marshal(run.Data)
		if err != nil {
			return rec, err
		}
		rec.Data = datatypes.JSON(raw)
	}
	if len(run.Series) > 0 {
		raw, err := json.Marshal(run.Series)
		if err != nil {
			return rec, err
		}
		rec.Series = datatypes.JSON(raw)
	}
	return rec, nil
}

// SaveRun inserts or replaces a run.
func (s *Store) SaveRun(ctx context.Context, run pipeline.AnalysisRun, meta RunMeta, runErr error) (*RunRecord, error) {
	if strings.TrimSpace(run.ID) == "" {
		return nil, fmt.Errorf("run store: run has no id")
	}
	rec, err := NewRunRecord(run, meta, runErr)
	if err != nil {
		return nil, fmt.Errorf("run store: encode %s: %w", run.ID, err)
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("run store: save %s: %w", run.ID, err)
	}
	return &rec, nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var rec RunRecord
	err := s.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(id)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RunQuery filters ListRuns. An empty Symbol matches all symbols.
type RunQuery struct {
	Symbol string
	Limit  int
}

// ListRuns returns the newest runs first.
func (s *Store) ListRuns(ctx context.Context, q RunQuery) ([]RunRecord, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	tx := s.db.WithContext(ctx).Omit("series").Order("started_at desc").Limit(limit)
	if sym := pipeline.NormalizeSymbol(q.Symbol); sym != "" {
		tx = tx.Where("symbol = ?", sym)
	}
	var out []RunRecord
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
