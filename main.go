package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"syscall"
	"time"

	"crudbench/benchmark"
	"crudbench/benchmark/baseline"
	"crudbench/benchmark/crud"
	engine "crudbench/benchmark/engines/abstract"
	"crudbench/benchmark/engines/pgx"
	"crudbench/benchmark/engines/postgres"
	"crudbench/benchmark/engines/sqlite"
	"crudbench/benchmark/indexed"
	"crudbench/report"
	"crudbench/util"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type BenchmarkArgs struct {
	Benchmark   string
	Engine      string
	Connection  engine.Connection
	Sizes       []int
	ResultsFile string `yaml:"resultsFile"`
	Seed        int64
	Maintenance bool
}

var defaultSizes = []int{1000, 10000, 100000, 1000000}

// Prepare zerolog
func setupLogging(disableLog bool, level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	var zlevel zerolog.Level
	if disableLog {
		zlevel = zerolog.Disabled
	} else if level == "info" {
		zlevel = zerolog.InfoLevel
	} else {
		zlevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(zlevel)
}

// Returns the defaults, with the connection taken from the libpq environment variables
func defaultArgs(getenv func(string) string) (*BenchmarkArgs, error) {
	args := BenchmarkArgs{
		Benchmark: "indexed",
		Engine:    "postgres",
		Sizes:     defaultSizes,
		Connection: engine.Connection{
			Host:     getenv("PGHOST"),
			Database: getenv("PGDATABASE"),
			User:     getenv("PGUSER"),
			Password: getenv("PGPASSWORD"),
			SSLMode:  getenv("PGSSLMODE"),
		},
	}
	if port := getenv("PGPORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PGPORT %q: %w", port, err)
		}
		args.Connection.Port = p
	}
	return &args, nil
}

// Returns the BenchmarkArgs with the information in the configFile, if any, on top of the
// defaults. ${VAR} references in the file are replaced by environment variables.
func buildArgs(configFile string, getenv func(string) string) (*BenchmarkArgs, error) {
	args, err := defaultArgs(getenv)
	if err != nil {
		return nil, err
	}
	if configFile == "" {
		return args, nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal([]byte(expandEnv(string(data), getenv)), args); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configFile, err)
	}
	return args, nil
}

var envReference = regexp.MustCompile(`\$\{(\w+)\}`)

// Replaces ${VAR} references with getenv(VAR). A bare $ is kept as is.
func expandEnv(s string, getenv func(string) string) string {
	return envReference.ReplaceAllStringFunc(s, func(ref string) string {
		return getenv(envReference.FindStringSubmatch(ref)[1])
	})
}

// Returns the engine named in the config
func getEngine(name string) (engine.Engine, error) {
	switch name {
	case "postgres":
		return postgres.New(), nil
	case "pgx":
		return pgx.New(), nil
	case "sqlite":
		return sqlite.New(), nil
	}
	return nil, fmt.Errorf("engine '%s' not found", name)
}

// Checks the args, returning the engine and its data source name
func validateArgs(args *BenchmarkArgs) (engine.Engine, string, error) {
	if args.Benchmark != "baseline" && args.Benchmark != "indexed" {
		return nil, "", fmt.Errorf("benchmark '%s' not found", args.Benchmark)
	}
	if len(args.Sizes) == 0 {
		return nil, "", errors.New("no sizes to test")
	}
	for _, size := range args.Sizes {
		if size <= 0 {
			return nil, "", fmt.Errorf("invalid size %d", size)
		}
	}
	e, err := getEngine(args.Engine)
	if err != nil {
		return nil, "", err
	}
	dsn, err := e.DSN(args.Connection)
	if err != nil {
		return nil, "", err
	}
	return e, dsn, nil
}

// Returns a benchmark factory based on the benchmarkType
func getBenchmarkFactory(benchmarkType string) func(*crud.Runner, *report.Sink) benchmark.Benchmark {
	switch benchmarkType {
	case "baseline":
		return func(r *crud.Runner, s *report.Sink) benchmark.Benchmark { return baseline.New(r, s) }
	case "indexed":
		return func(r *crud.Runner, s *report.Sink) benchmark.Benchmark { return indexed.New(r, s) }
	}
	return nil
}

func policyFor(benchmarkType string) crud.SelectionPolicy {
	if benchmarkType == "indexed" {
		return crud.OrderByID
	}
	return crud.Unordered
}

func resultsFileFor(args *BenchmarkArgs) string {
	if args.ResultsFile != "" {
		return args.ResultsFile
	}
	if args.Benchmark == "baseline" {
		return baseline.DefaultResultsFile
	}
	return indexed.DefaultResultsFile
}

// Opens the database and pins a single connection for the whole run
func openConnection(ctx context.Context, e engine.Engine, dsn string) (*sql.DB, *sql.Conn, error) {
	db, err := sql.Open(e.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", e.Name(), err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to %s: %w", e.Name(), err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("acquire %s connection: %w", e.Name(), err)
	}
	return db, conn, nil
}

func run(ctx context.Context, args *BenchmarkArgs, stdout io.Writer) error {
	e, dsn, err := validateArgs(args)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	runID := uuid.NewString()
	logger := zlog.With().Str("run", runID).Logger()
	logger.Info().Str("benchmark", args.Benchmark).Str("engine", e.Name()).Ints("sizes", args.Sizes).Msg("Run started")

	db, conn, err := openConnection(ctx, e, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	defer conn.Close()

	resultsFile := resultsFileFor(args)
	sink, err := report.OpenFile(resultsFile, stdout)
	if err != nil {
		return err
	}
	defer sink.Close()

	runner := crud.New(conn, e, policyFor(args.Benchmark), sink,
		crud.WithRand(util.NewRand(args.Seed)),
		crud.WithMaintenance(args.Maintenance))
	b := getBenchmarkFactory(args.Benchmark)(runner, sink)

	if err := b.Setup(ctx); err != nil {
		return err
	}
	if err := b.Run(ctx, args.Sizes); err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\nРезультати збережено у файлі %s\n", resultsFile)
	logger.Info().Str("results", resultsFile).Msg("Run ended")
	return nil
}

func main() {
	disableLog := flag.Bool("no-log", false, "Disables the log")
	configFile := flag.String("conf", "", "Benchmark config file")
	logLevel := flag.String("level", "debug", "Log level (info|debug)")
	flag.Parse()

	setupLogging(*disableLog, *logLevel)
	args, err := buildArgs(*configFile, os.Getenv)
	if err != nil {
		zlog.Error().Err(err).Msg("Invalid config")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, args, os.Stdout)
	stop()
	if err != nil {
		zlog.Error().Err(err).Msg("Run failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
