package stages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockbrief/internal/gateway/provider"
	"stockbrief/internal/logger"
	"stockbrief/internal/pkg/text"
	"stockbrief/internal/pipeline"
	"stockbrief/internal/prompt"
	"stockbrief/internal/report"
)

// PromptRenderer is satisfied by prompt.Registry and prompt.Set.
type PromptRenderer interface {
	Render(kind prompt.Kind, vars prompt.Vars) (prompt.Rendered, error)
}

// InferenceConfig is shared by the analysis and report stages.
type InferenceConfig struct {
	Name           string
	Model          string
	Temperature    float64
	StripReasoning bool
	Timeout        time.Duration
}

// inference holds the single prompt/response round trip both model stages
// perform.
type inference struct {
	model   provider.ChatModel
	prompts PromptRenderer
	cfg     InferenceConfig
}

func (in inference) complete(ctx context.Context, kind prompt.Kind, vars prompt.Vars) (string, error) {
	if in.model == nil {
		return "", fmt.Errorf("%w: chat model unavailable", provider.ErrInference)
	}
	if in.prompts == nil {
		return "", fmt.Errorf("prompt renderer unavailable")
	}
	rendered, err := in.prompts.Render(kind, vars)
	if err != nil {
		return "", err
	}
	msgs := make([]provider.Message, 0, 2)
	if strings.TrimSpace(rendered.System) != "" {
		msgs = append(msgs, provider.SystemMessage(rendered.System))
	}
	msgs = append(msgs, provider.UserMessage(rendered.User))
	out, err := in.model.Complete(ctx, provider.ChatRequest{
		Purpose:     string(kind),
		Model:       in.cfg.Model,
		Messages:    msgs,
		Temperature: in.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	if in.cfg.StripReasoning {
		out = report.StripReasoning(out)
	}
	logger.Debugf("[%s] %s returned %d chars: %s", kind, in.model.ID(), len(out), text.Truncate(text.OneLine(out), 160))
	return out, nil
}

// AnalysisAgent asks the model for a technical read of the snapshot.
type AnalysisAgent struct {
	meta pipeline.StageMeta
	inference
}

func NewAnalysisAgent(cfg InferenceConfig, model provider.ChatModel, prompts PromptRenderer) *AnalysisAgent {
	return &AnalysisAgent{
		meta: pipeline.StageMeta{
			Name:     nameOrDefault(cfg.Name, "analysis_agent"),
			Requires: pipeline.PhaseDataFetched,
			Produces: pipeline.PhaseAnalyzed,
			Timeout:  cfg.Timeout,
		},
		inference: inference{model: model, prompts: prompts, cfg: cfg},
	}
}

func (a *AnalysisAgent) Meta() pipeline.StageMeta { return a.meta }

func (a *AnalysisAgent) Handle(ctx context.Context, run pipeline.AnalysisRun) (pipeline.Update, error) {
	logger.Infof("Analyzing data...")
	analysis, err := a.complete(ctx, prompt.KindAnalysis, prompt.Vars{
		Symbol: run.Symbol,
		Data:   run.Data.String(),
	})
	if err != nil {
		return pipeline.Update{}, err
	}
	return pipeline.Update{Analysis: &analysis}, nil
}

// ReportGenerator turns the analysis into the final investment report.
type ReportGenerator struct {
	meta pipeline.StageMeta
	inference
}

func NewReportGenerator(cfg InferenceConfig, model provider.ChatModel, prompts PromptRenderer) *ReportGenerator {
	return &ReportGenerator{
		meta: pipeline.StageMeta{
			Name:     nameOrDefault(cfg.Name, "report_generator"),
			Requires: pipeline.PhaseAnalyzed,
			Produces: pipeline.PhaseReported,
			Timeout:  cfg.Timeout,
		},
		inference: inference{model: model, prompts: prompts, cfg: cfg},
	}
}

func (r *ReportGenerator) Meta() pipeline.StageMeta { return r.meta }

func (r *ReportGenerator) Handle(ctx context.Context, run pipeline.AnalysisRun) (pipeline.Update, error) {
	logger.Infof("Generating report...")
	final, err := r.complete(ctx, prompt.KindReport, prompt.Vars{
		Symbol:   run.Symbol,
		Analysis: run.Analysis,
	})
	if err != nil {
		return pipeline.Update{}, err
	}
	return pipeline.Update{Report: &final}, nil
}
