package baseline

import (
	"context"

	"crudbench/benchmark"
	"crudbench/benchmark/crud"
	"crudbench/report"

	zlog "github.com/rs/zerolog/log"
)

const DefaultResultsFile = "database_performance_results.txt"

// CRUD timings without secondary indexes. Rows for update and delete are picked with a plain
// LIMIT, so which rows are touched is left to the database.
type Baseline struct {
	runner *crud.Runner
	sink   *report.Sink
}

// runner should use the crud.Unordered selection policy
func New(runner *crud.Runner, sink *report.Sink) *Baseline {
	return &Baseline{runner: runner, sink: sink}
}

func (b *Baseline) log(msg string) {
	zlog.Info().Str("benchmark", "baseline").Msg(msg)
}

func (b *Baseline) Setup(ctx context.Context) error {
	return b.runner.EnsureSchema(ctx)
}

// Runs one cycle over sizes and writes the summary table
func (b *Baseline) RunAll(ctx context.Context, sizes []int) ([]benchmark.TierResult, error) {
	b.log("Running")
	results, err := b.runner.RunCycle(ctx, sizes)
	if err != nil {
		return results, err
	}
	report.Summary(b.sink, results)
	b.log("Done")
	return results, b.sink.Err()
}

func (b *Baseline) Run(ctx context.Context, sizes []int) error {
	_, err := b.RunAll(ctx, sizes)
	return err
}
