package sqlite

import (
	engine "crudbench/benchmark/engines/abstract"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite through go-sqlite3. Path may be ":memory:", in which case the data lives as long as
// the single connection the runner holds.
type Sqlite struct{}

func New() *Sqlite {
	return &Sqlite{}
}

func (*Sqlite) Name() string {
	return "sqlite"
}

func (*Sqlite) DriverName() string {
	return "sqlite3"
}

func (*Sqlite) DSN(c engine.Connection) (string, error) {
	if c.Path == "" {
		return "", &engine.MissingFieldsError{Engine: "sqlite", Fields: []string{"path"}}
	}
	return c.Path, nil
}

func (*Sqlite) Placeholder(int) string {
	return "?"
}

// autoincrement keeps the sequence in sqlite_sequence, which Reset clears
func (*Sqlite) CreateTable() string {
	return `
		create table if not exists ` + engine.Table + ` (
			id integer primary key autoincrement,
			name varchar(50),
			description text,
			created_at timestamp
		)
	`
}

func (*Sqlite) Reset() []string {
	return []string{
		"delete from " + engine.Table,
		"delete from sqlite_sequence where name = '" + engine.Table + "'",
	}
}

func (*Sqlite) Maintenance() []string {
	return []string{"vacuum"}
}
