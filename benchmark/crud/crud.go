package crud

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"crudbench/benchmark"
	engine "crudbench/benchmark/engines/abstract"
	dbutils "crudbench/dbUtils"
	"crudbench/report"
	"crudbench/util"

	zlog "github.com/rs/zerolog/log"
)

const (
	NameLength        = 10
	DescriptionLength = 50
	// appended to the description of every updated row
	UpdateSuffix = "_updated"

	NameIndex      = "idx_performance_test_name"
	CreatedAtIndex = "idx_performance_test_created_at"
)

// How update, delete (and select) choose the "first N" rows
type SelectionPolicy int

const (
	// Plain LIMIT; which rows are picked is up to the database
	Unordered SelectionPolicy = iota
	// ORDER BY id LIMIT; always the N lowest ids
	OrderByID
)

func (p SelectionPolicy) String() string {
	if p == OrderByID {
		return "orderById"
	}
	return "unordered"
}

// One row of the benchmark table
type Record struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Runs the timed CRUD operations against the benchmark table over a single connection
type Runner struct {
	db          dbutils.DB
	engine      engine.Engine
	policy      SelectionPolicy
	rng         *rand.Rand
	sink        *report.Sink
	maintenance bool
	statements  statements
}

type statements struct {
	insert string
	sel    string
	update string
	delete string
}

type Option func(*Runner)

// Runs the engine maintenance statements after every reset
func WithMaintenance(enabled bool) Option {
	return func(r *Runner) { r.maintenance = enabled }
}

// Uses rng to generate the record contents
func WithRand(rng *rand.Rand) Option {
	return func(r *Runner) { r.rng = rng }
}

func New(db dbutils.DB, e engine.Engine, policy SelectionPolicy, sink *report.Sink, opts ...Option) *Runner {
	r := &Runner{
		db:     db,
		engine: e,
		policy: policy,
		sink:   sink,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = util.NewRand(0)
	}
	r.statements = buildStatements(e, policy)
	return r
}

func buildStatements(e engine.Engine, policy SelectionPolicy) statements {
	order := ""
	if policy == OrderByID {
		order = " order by id"
	}
	limit := order + " limit " + e.Placeholder(1)
	subquery := "select id from " + engine.Table + limit
	return statements{
		insert: fmt.Sprintf("insert into %s (name, description, created_at) values (%s, %s, %s)",
			engine.Table, e.Placeholder(1), e.Placeholder(2), e.Placeholder(3)),
		sel:    "select id, name, description, created_at from " + engine.Table + limit,
		update: "update " + engine.Table + " set description = description || '" + UpdateSuffix + "' where id in (" + subquery + ")",
		delete: "delete from " + engine.Table + " where id in (" + subquery + ")",
	}
}

func (r *Runner) log(msg string) {
	zlog.Info().Str("engine", r.engine.Name()).Str("policy", r.policy.String()).Msg(msg)
}

// Creates the benchmark table if it does not exist
func (r *Runner) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.engine.CreateTable()); err != nil {
		return fmt.Errorf("create table %s: %w", engine.Table, err)
	}
	return nil
}

// Empties the table and restarts the id sequence, so the next insert gets id 1
func (r *Runner) ResetTable(ctx context.Context) error {
	if err := dbutils.ExecAll(ctx, r.db, r.engine.Reset()); err != nil {
		return fmt.Errorf("reset table: %w", err)
	}
	if r.maintenance {
		if err := dbutils.ExecAll(ctx, r.db, r.engine.Maintenance()); err != nil {
			return fmt.Errorf("maintenance: %w", err)
		}
	}
	return nil
}

// Inserts count generated records one at a time in a single transaction. Generation happens
// inline, so the returned seconds include it.
func (r *Runner) InsertRecords(ctx context.Context, count int) (float64, error) {
	return util.Measure(func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin insert: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, r.statements.insert)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := 0; i < count; i++ {
			name := util.RandomLowercaseString(r.rng, NameLength)
			description := util.RandomLowercaseString(r.rng, DescriptionLength)
			if _, err := stmt.ExecContext(ctx, name, description, time.Now()); err != nil {
				return fmt.Errorf("insert record %d: %w", i, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit insert: %w", err)
		}
		return nil
	})
}

// Reads up to count rows and returns them
func (r *Runner) fetchRecords(ctx context.Context, count int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, r.statements.sel, count)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var name, description sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&rec.ID, &name, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Name, rec.Description, rec.CreatedAt = name.String, description.String, createdAt.Time
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	return records, nil
}

// Reads up to count rows, returning the seconds it took
func (r *Runner) SelectRecords(ctx context.Context, count int) (float64, error) {
	return util.Measure(func() error {
		_, err := r.fetchRecords(ctx, count)
		return err
	})
}

// Appends UpdateSuffix to the description of up to count rows chosen by the selection policy
func (r *Runner) UpdateRecords(ctx context.Context, count int) (float64, error) {
	return util.Measure(func() error {
		return r.execCommitted(ctx, "update", r.statements.update, count)
	})
}

// Deletes up to count rows chosen by the selection policy
func (r *Runner) DeleteRecords(ctx context.Context, count int) (float64, error) {
	return util.Measure(func() error {
		return r.execCommitted(ctx, "delete", r.statements.delete, count)
	})
}

func (r *Runner) execCommitted(ctx context.Context, op string, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s records: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", op, err)
	}
	return nil
}

// Resets the table, then writes the tier header and runs insert, select, update and delete for size records, writing each
// duration to the report
func (r *Runner) RunTier(ctx context.Context, size int) (benchmark.TierResult, error) {
	result := benchmark.TierResult{Size: size}
	if err := r.ResetTable(ctx); err != nil {
		return result, err
	}
	report.TierHeader(r.sink, size)

	steps := []struct {
		op  string
		fn  func(context.Context, int) (float64, error)
		dst *float64
	}{
		{benchmark.Insert, r.InsertRecords, &result.InsertTime},
		{benchmark.Select, r.SelectRecords, &result.SelectTime},
		{benchmark.Update, r.UpdateRecords, &result.UpdateTime},
		{benchmark.Delete, r.DeleteRecords, &result.DeleteTime},
	}
	for _, step := range steps {
		rt, err := step.fn(ctx, size)
		if err != nil {
			return result, err
		}
		*step.dst = rt
		report.Timing(r.sink, step.op, size, rt)
		zlog.Debug().Str("op", step.op).Int("size", size).Float64("rt", rt).Msg("completed")
	}

	return result, r.sink.Err()
}

// Runs a tier for each size, in order
func (r *Runner) RunCycle(ctx context.Context, sizes []int) ([]benchmark.TierResult, error) {
	results := []benchmark.TierResult{}
	for _, size := range sizes {
		zlog.Info().Int("size", size).Msg("Tier started")
		result, err := r.RunTier(ctx, size)
		if err != nil {
			return results, fmt.Errorf("tier %d: %w", size, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Creates the name and created_at indexes in one transaction. Failures are reported and
// swallowed; the benchmark then continues without indexes.
func (r *Runner) CreateIndexes(ctx context.Context) bool {
	err := dbutils.ExecTx(ctx, r.db, []string{
		"create index if not exists " + NameIndex + " on " + engine.Table + " (name)",
		"create index if not exists " + CreatedAtIndex + " on " + engine.Table + " (created_at)",
	})
	if err != nil {
		zlog.Warn().Err(err).Msg("Index creation failed")
		r.sink.Logf("Помилка при створенні індексів: %v", err)
		return false
	}
	r.log("Indexes created")
	r.sink.Log("Індекси успішно створено")
	return true
}

var dropIndexes = []string{
	"drop index if exists " + NameIndex,
	"drop index if exists " + CreatedAtIndex,
}

// Drops both indexes in one transaction. Failures are reported and swallowed.
func (r *Runner) DropIndexes(ctx context.Context) bool {
	err := dbutils.ExecTx(ctx, r.db, dropIndexes)
	if err != nil {
		zlog.Warn().Err(err).Msg("Index removal failed")
		r.sink.Logf("Помилка при видаленні індексів: %v", err)
		return false
	}
	r.log("Indexes dropped")
	r.sink.Log("Індекси успішно видалено")
	return true
}

// Drops indexes left behind by an interrupted run. Nothing is written to the report.
func (r *Runner) ClearIndexes(ctx context.Context) error {
	if err := dbutils.ExecTx(ctx, r.db, dropIndexes); err != nil {
		return fmt.Errorf("clear indexes: %w", err)
	}
	return nil
}
