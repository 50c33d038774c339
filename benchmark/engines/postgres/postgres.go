package postgres

import (
	"fmt"
	"strconv"
	"strings"

	engine "crudbench/benchmark/engines/abstract"

	_ "github.com/lib/pq"
)

// PostgreSQL through lib/pq
type Postgres struct{}

func New() *Postgres {
	return &Postgres{}
}

func (*Postgres) Name() string {
	return "postgres"
}

func (*Postgres) DriverName() string {
	return "postgres"
}

func (*Postgres) DSN(c engine.Connection) (string, error) {
	return KeywordValueDSN("postgres", c)
}

func (*Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (*Postgres) CreateTable() string {
	return `
		create table if not exists ` + engine.Table + ` (
			id serial primary key,
			name varchar(50),
			description text,
			created_at timestamp
		)
	`
}

func (*Postgres) Reset() []string {
	return []string{"truncate table " + engine.Table + " restart identity"}
}

// vacuum + checkpoint, like after populating the native engine tables
func (*Postgres) Maintenance() []string {
	return []string{"vacuum analyze " + engine.Table, "checkpoint"}
}

// Builds a libpq keyword/value connection string, accepted by both lib/pq and pgx
func KeywordValueDSN(engineName string, c engine.Connection) (string, error) {
	missing := []string{}
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.Port == 0 {
		missing = append(missing, "port")
	}
	if c.Database == "" {
		missing = append(missing, "database")
	}
	if c.User == "" {
		missing = append(missing, "user")
	}
	if len(missing) > 0 {
		return "", &engine.MissingFieldsError{Engine: engineName, Fields: missing}
	}
	if c.Port < 0 || c.Port > 65535 {
		return "", fmt.Errorf("engine %s: invalid port %d", engineName, c.Port)
	}

	parts := []string{
		"host=" + quote(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"dbname=" + quote(c.Database),
		"user=" + quote(c.User),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quote(c.Password))
	}
	if c.SSLMode != "" {
		parts = append(parts, "sslmode="+quote(c.SSLMode))
	}
	return strings.Join(parts, " "), nil
}

// quotes a keyword/value parameter when it contains spaces, quotes or backslashes
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
