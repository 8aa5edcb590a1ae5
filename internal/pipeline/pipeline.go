package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockbrief/internal/logger"

	"github.com/google/uuid"
)

// ErrPhaseMismatch means a stage was reached while the run sat in a phase
// other than the one it requires.
var ErrPhaseMismatch = errors.New("phase mismatch")

// Pipeline runs a fixed chain of stages strictly in order.
type Pipeline struct {
	name   string
	stages []Stage
	now    func() time.Time
}

// New validates that the stages form a chain from PhaseStart: each stage must
// require the phase its predecessor produces.
func New(name string, stages ...Stage) (*Pipeline, error) {
	p := &Pipeline{name: name, now: time.Now}
	expect := PhaseStart
	for i, st := range stages {
		if st == nil {
			return nil, fmt.Errorf("pipeline %s: stage %d is nil", name, i)
		}
		meta := st.Meta()
		if meta.Requires != expect {
			return nil, fmt.Errorf("pipeline %s: stage %s requires %s, chain is at %s", name, meta.Name, meta.Requires, expect)
		}
		if meta.Produces <= meta.Requires {
			return nil, fmt.Errorf("pipeline %s: stage %s does not advance the phase", name, meta.Name)
		}
		expect = meta.Produces
		p.stages = append(p.stages, st)
	}
	return p, nil
}

// Name identifies the pipeline in logs.
func (p *Pipeline) Name() string { return p.name }

// Run executes every stage for symbol. On failure the returned run holds
// whatever earlier stages produced and the error is a *StageError.
func (p *Pipeline) Run(ctx context.Context, symbol string) (AnalysisRun, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	run := AnalysisRun{
		ID:        uuid.NewString(),
		Symbol:    NormalizeSymbol(symbol),
		Phase:     PhaseStart,
		StartedAt: p.now(),
	}
	for _, st := range p.stages {
		if err := p.runStage(ctx, &run, st); err != nil {
			run.FinishedAt = p.now()
			logger.Warnf("[pipeline] %s %s aborted at %s: %v", p.name, run.Symbol, run.Phase, err)
			return run, err
		}
	}
	run.Phase = PhaseDone
	run.FinishedAt = p.now()
	logger.Debugf("[pipeline] %s %s done in %s", p.name, run.Symbol, run.FinishedAt.Sub(run.StartedAt))
	return run, nil
}

func (p *Pipeline) runStage(ctx context.Context, run *AnalysisRun, st Stage) error {
	meta := st.Meta()
	fail := func(err error) error {
		return &StageError{Stage: meta.Name, Phase: run.Phase, Err: err}
	}
	if run.Phase != meta.Requires {
		return fail(fmt.Errorf("%w: need %s, have %s", ErrPhaseMismatch, meta.Requires, run.Phase))
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	runCtx := ctx
	if meta.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, meta.Timeout)
		defer cancel()
	}
	update, err := st.Handle(runCtx, *run)
	if err != nil {
		return fail(err)
	}
	if update.IsEmpty() {
		logger.Debugf("[pipeline] %s produced no output for %s", meta.Name, run.Symbol)
	}
	if err := run.Merge(update); err != nil {
		return fail(err)
	}
	run.Phase = meta.Produces
	return nil
}
