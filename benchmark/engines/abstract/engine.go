package engine

import (
	"fmt"
	"strings"
)

// Name of the table every engine creates and every benchmark operates on
const Table = "performance_test"

// Connection parameters, as read from the config file
type Connection struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// database file, for file based engines
	Path string `yaml:"path"`
}

type Engine interface {
	// Name used in the config file
	Name() string
	// Name of the database/sql driver
	DriverName() string
	// Builds the data source name, failing if a required connection field is missing
	DSN(c Connection) (string, error)
	// Returns the bind parameter for the n-th (1-based) argument of a statement
	Placeholder(n int) string
	// Creates the benchmark table if it does not exist
	CreateTable() string
	// Empties the benchmark table and restarts its identity sequence
	Reset() []string
	// Run after a reset when maintenance is enabled
	Maintenance() []string
}

// Returned by Engine.DSN when required connection fields are empty
type MissingFieldsError struct {
	Engine string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("engine %s: missing connection fields: %s", e.Engine, strings.Join(e.Fields, ", "))
}
