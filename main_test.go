package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"crudbench/benchmark/crud"
	engine "crudbench/benchmark/engines/abstract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestBuildArgsDefaults(t *testing.T) {
	args, err := buildArgs("", env(map[string]string{
		"PGHOST":     "localhost",
		"PGPORT":     "5433",
		"PGDATABASE": "bench",
		"PGUSER":     "bench",
		"PGPASSWORD": "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "indexed", args.Benchmark)
	assert.Equal(t, "postgres", args.Engine)
	assert.Equal(t, []int{1000, 10000, 100000, 1000000}, args.Sizes)
	assert.Equal(t, engine.Connection{Host: "localhost", Port: 5433, Database: "bench", User: "bench", Password: "secret"}, args.Connection)
}

func TestBuildArgsInvalidPort(t *testing.T) {
	_, err := buildArgs("", env(map[string]string{"PGPORT": "five"}))
	assert.Error(t, err)
}

func TestBuildArgsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
benchmark: baseline
engine: pgx
connection:
  host: db
  port: 5432
  database: perf
  user: runner
  password: ${BENCH_PASSWORD}
sizes: [10, 20]
resultsFile: out.txt
seed: 9
maintenance: true
`), 0o644))

	args, err := buildArgs(path, env(map[string]string{"BENCH_PASSWORD": "from-env", "PGHOST": "ignored"}))
	require.NoError(t, err)

	assert.Equal(t, "baseline", args.Benchmark)
	assert.Equal(t, "pgx", args.Engine)
	assert.Equal(t, "db", args.Connection.Host)
	assert.Equal(t, "from-env", args.Connection.Password)
	assert.Equal(t, []int{10, 20}, args.Sizes)
	assert.Equal(t, "out.txt", args.ResultsFile)
	assert.Equal(t, int64(9), args.Seed)
	assert.True(t, args.Maintenance)
}

func TestBuildArgsMissingFile(t *testing.T) {
	_, err := buildArgs(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.Error(t, err)
}

func TestValidateArgs(t *testing.T) {
	valid := func() *BenchmarkArgs {
		return &BenchmarkArgs{
			Benchmark:  "indexed",
			Engine:     "postgres",
			Sizes:      []int{10},
			Connection: engine.Connection{Host: "localhost", Port: 5432, Database: "bench", User: "bench"},
		}
	}

	e, dsn, err := validateArgs(valid())
	require.NoError(t, err)
	assert.Equal(t, "postgres", e.Name())
	assert.Equal(t, "host=localhost port=5432 dbname=bench user=bench", dsn)

	cases := map[string]func(*BenchmarkArgs){
		"unknown benchmark": func(a *BenchmarkArgs) { a.Benchmark = "micro" },
		"unknown engine":    func(a *BenchmarkArgs) { a.Engine = "riak" },
		"no sizes":          func(a *BenchmarkArgs) { a.Sizes = nil },
		"zero size":         func(a *BenchmarkArgs) { a.Sizes = []int{10, 0} },
		"missing user":      func(a *BenchmarkArgs) { a.Connection.User = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			args := valid()
			mutate(args)
			_, _, err := validateArgs(args)
			assert.Error(t, err)
		})
	}
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, crud.Unordered, policyFor("baseline"))
	assert.Equal(t, crud.OrderByID, policyFor("indexed"))
}

func TestResultsFileFor(t *testing.T) {
	assert.Equal(t, "database_performance_results.txt", resultsFileFor(&BenchmarkArgs{Benchmark: "baseline"}))
	assert.Equal(t, "database_performance_results_with_indexes.txt", resultsFileFor(&BenchmarkArgs{Benchmark: "indexed"}))
	assert.Equal(t, "custom.txt", resultsFileFor(&BenchmarkArgs{Benchmark: "indexed", ResultsFile: "custom.txt"}))
}

func TestRunSqlite(t *testing.T) {
	timing := regexp.MustCompile(`(?m)^Час (вставки|вибірки|оновлення|видалення) 10 записів: \d+\.\d{4} сек$`)

	for _, variant := range []string{"baseline", "indexed"} {
		t.Run(variant, func(t *testing.T) {
			dir := t.TempDir()
			results := filepath.Join(dir, "results.txt")
			var stdout bytes.Buffer

			err := run(context.Background(), &BenchmarkArgs{
				Benchmark:   variant,
				Engine:      "sqlite",
				Connection:  engine.Connection{Path: filepath.Join(dir, "bench.db")},
				Sizes:       []int{10},
				ResultsFile: results,
				Seed:        1,
			}, &stdout)
			require.NoError(t, err)

			data, err := os.ReadFile(results)
			require.NoError(t, err)
			expected := 4
			if variant == "indexed" {
				expected = 8
			}
			assert.Len(t, timing.FindAllString(string(data), -1), expected)
			assert.Contains(t, stdout.String(), string(data))
			assert.Contains(t, stdout.String(), "\nРезультати збережено у файлі "+results+"\n")
			assert.NotContains(t, string(data), "Результати збережено")
		})
	}
}

func TestRunConnectionFailure(t *testing.T) {
	results := filepath.Join(t.TempDir(), "results.txt")
	err := run(context.Background(), &BenchmarkArgs{
		Benchmark:   "indexed",
		Engine:      "postgres",
		Connection:  engine.Connection{Host: "127.0.0.1", Port: 1, Database: "bench", User: "bench", SSLMode: "disable"},
		Sizes:       []int{10},
		ResultsFile: results,
	}, &bytes.Buffer{})
	require.Error(t, err)

	_, statErr := os.Stat(results)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunInvalidConfig(t *testing.T) {
	err := run(context.Background(), &BenchmarkArgs{Benchmark: "baseline", Engine: "sqlite", Sizes: []int{10}}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "missing connection fields: path")
}

func TestGetBenchmarkFactory(t *testing.T) {
	assert.NotNil(t, getBenchmarkFactory("baseline"))
	assert.NotNil(t, getBenchmarkFactory("indexed"))
	assert.Nil(t, getBenchmarkFactory("delay"))
}

func TestBuildArgsKeepsLiteralDollar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
connection:
  user: ${BENCH_USER}
  password: 'pa$1word$HOME'
  database: $PGDATABASE
`), 0o644))

	args, err := buildArgs(path, env(map[string]string{"BENCH_USER": "runner", "HOME": "/root", "PGDATABASE": "envdb"}))
	require.NoError(t, err)
	assert.Equal(t, "runner", args.Connection.User)
	assert.Equal(t, "pa$1word$HOME", args.Connection.Password)
	assert.Equal(t, "$PGDATABASE", args.Connection.Database)
}

func TestExpandEnv(t *testing.T) {
	getenv := env(map[string]string{"A": "1", "B_2": "two"})
	assert.Equal(t, "1-two-", expandEnv("${A}-${B_2}-${MISSING}", getenv))
	assert.Equal(t, "$A ${ A} $", expandEnv("$A ${ A} $", getenv))
}
