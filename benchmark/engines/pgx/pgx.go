package pgx

import (
	engine "crudbench/benchmark/engines/abstract"
	"crudbench/benchmark/engines/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgreSQL through pgx's database/sql adapter. Same dialect as the lib/pq engine, so the
// two can be compared on the same server.
type Pgx struct {
	*postgres.Postgres
}

func New() *Pgx {
	return &Pgx{Postgres: postgres.New()}
}

func (*Pgx) Name() string {
	return "pgx"
}

func (*Pgx) DriverName() string {
	return "pgx"
}

func (*Pgx) DSN(c engine.Connection) (string, error) {
	return postgres.KeywordValueDSN("pgx", c)
}
