package apihttp

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockbrief/internal/analysis/visual"
	"stockbrief/internal/gateway/provider"
	"stockbrief/internal/market"
	"stockbrief/internal/pipeline"
	"stockbrief/internal/store"

	"github.com/gin-gonic/gin"
)

// Analyzer runs the pipeline for one symbol.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (pipeline.AnalysisRun, error)
}

// RunStore reads persisted runs.
type RunStore interface {
	GetRun(ctx context.Context, id string) (*store.RunRecord, error)
	ListRuns(ctx context.Context, q store.RunQuery) ([]store.RunRecord, error)
}

// Router mounts the /api routes.
type Router struct {
	analyzer Analyzer
	runs     RunStore
}

func NewRouter(analyzer Analyzer, runs RunStore) *Router {
	return &Router{analyzer: analyzer, runs: runs}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/analyze", r.handleAnalyze)
	group.GET("/runs", r.handleListRuns)
	group.GET("/runs/:id", r.handleGetRun)
	group.GET("/runs/:id/chart", r.handleRunChart)
}

type analyzeRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// RunResponse is the JSON form of a run.
type RunResponse struct {
	ID         string             `json:"id"`
	Symbol     string             `json:"symbol"`
	Phase      string             `json:"phase"`
	Status     string             `json:"status"`
	Data       map[string]float64 `json:"data,omitempty"`
	Analysis   string             `json:"analysis,omitempty"`
	Report     string             `json:"report,omitempty"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// fromRun builds the reply to a live analysis. A failed run reports only
// where it stopped and why; earlier stage output stays in the run store.
func fromRun(run pipeline.AnalysisRun, runErr error) RunResponse {
	resp := RunResponse{
		ID:         run.ID,
		Symbol:     run.Symbol,
		Phase:      run.Phase.String(),
		Status:     store.StatusFailed,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
	if runErr != nil {
		resp.Error = runErr.Error()
		return resp
	}
	resp.Status = store.StatusDone
	resp.Analysis = run.Analysis
	resp.Report = run.Report
	if !run.Data.IsZero() {
		resp.Data = run.Data.Map()
	}
	return resp
}

func fromRecord(rec store.RunRecord) RunResponse {
	resp := RunResponse{
		ID:         rec.ID,
		Symbol:     rec.Symbol,
		Phase:      rec.Phase,
		Status:     rec.Status,
		Analysis:   rec.Analysis,
		Report:     rec.Report,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
	if snap, err := rec.Snapshot(); err == nil && !snap.IsZero() {
		resp.Data = snap.Map()
	}
	return resp
}

// statusFor maps a pipeline failure to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrDataUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, provider.ErrInference):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	symbol := pipeline.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	run, err := r.analyzer.Analyze(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(statusFor(err), fromRun(run, err))
		return
	}
	c.JSON(http.StatusOK, fromRun(run, nil))
}

func (r *Router) handleListRuns(c *gin.Context) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run store disabled"})
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	recs, err := r.runs.ListRuns(c.Request.Context(), store.RunQuery{Symbol: c.Query("symbol"), Limit: limit})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]RunResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
	}
	c.JSON(http.StatusOK, gin.H{"runs": out, "count": len(out)})
}

func (r *Router) lookupRun(c *gin.Context) (*store.RunRecord, bool) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run store disabled"})
		return nil, false
	}
	rec, err := r.runs.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return rec, true
}

func (r *Router) handleGetRun(c *gin.Context) {
	rec, ok := r.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, fromRecord(*rec))
}

func (r *Router) handleRunChart(c *gin.Context) {
	rec, ok := r.lookupRun(c)
	if !ok {
		return
	}
	candles, err := rec.Candles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	snap, _ := rec.Snapshot()
	var buf bytes.Buffer
	err = visual.Render(&buf, visual.RunChart{
		Symbol:   rec.Symbol,
		Subtitle: rec.StartedAt.UTC().Format(time.RFC3339),
		Candles:  candles,
		Snapshot: snap,
	})
	if errors.Is(err, market.ErrDataUnavailable) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run has no price series"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
