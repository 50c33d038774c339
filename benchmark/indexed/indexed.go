package indexed

import (
	"context"

	"crudbench/benchmark"
	"crudbench/benchmark/crud"
	"crudbench/report"

	zlog "github.com/rs/zerolog/log"
)

const DefaultResultsFile = "database_performance_results_with_indexes.txt"

// Runs the CRUD cycle twice, first without and then with the name and created_at indexes, and
// compares the timings. Rows are picked in id order so both cycles touch the same rows.
type Indexed struct {
	runner *crud.Runner
	sink   *report.Sink
}

// runner should use the crud.OrderByID selection policy
func New(runner *crud.Runner, sink *report.Sink) *Indexed {
	return &Indexed{runner: runner, sink: sink}
}

func (i *Indexed) log(msg string) {
	zlog.Info().Str("benchmark", "indexed").Msg(msg)
}

func (i *Indexed) Setup(ctx context.Context) error {
	return i.runner.EnsureSchema(ctx)
}

// Returns the results of the unindexed and the indexed cycle. Index creation and removal
// failures are reported but do not stop the run. The indexes are dropped on every return path.
func (i *Indexed) RunAll(ctx context.Context, sizes []int) (without, with []benchmark.TierResult, err error) {
	// leftovers from an earlier run would turn the first cycle into an indexed one
	if err := i.runner.ClearIndexes(ctx); err != nil {
		zlog.Warn().Err(err).Msg("Could not clear leftover indexes")
	}

	i.sink.Log("=== Тестування без індексів ===")
	i.log("Running without indexes")
	without, err = i.runner.RunCycle(ctx, sizes)
	if err != nil {
		return without, nil, err
	}

	i.runner.CreateIndexes(ctx)
	dropped := false
	defer func() {
		if !dropped {
			i.runner.DropIndexes(context.WithoutCancel(ctx))
		}
	}()

	i.sink.Log("\n=== Тестування з індексами ===")
	i.log("Running with indexes")
	with, err = i.runner.RunCycle(ctx, sizes)
	if err != nil {
		return without, with, err
	}

	i.runner.DropIndexes(ctx)
	dropped = true

	report.Comparison(i.sink, report.Compare(without, with))
	i.log("Done")
	return without, with, i.sink.Err()
}

func (i *Indexed) Run(ctx context.Context, sizes []int) error {
	_, _, err := i.RunAll(ctx, sizes)
	return err
}
