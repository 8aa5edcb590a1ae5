package stages

import (
	"stockbrief/internal/gateway/provider"
	"stockbrief/internal/market"
	"stockbrief/internal/pipeline"
)

// Options assembles the three-stage chain.
type Options struct {
	Source  market.Source
	Model   provider.ChatModel
	Prompts PromptRenderer

	Fetch    DataFetcherConfig
	Analysis InferenceConfig
	Report   InferenceConfig
}

// NewPipeline wires DataFetcher, AnalysisAgent and ReportGenerator in order.
func NewPipeline(name string, opts Options) (*pipeline.Pipeline, error) {
	return pipeline.New(name,
		NewDataFetcher(opts.Fetch, opts.Source),
		NewAnalysisAgent(opts.Analysis, opts.Model, opts.Prompts),
		NewReportGenerator(opts.Report, opts.Model, opts.Prompts),
	)
}
