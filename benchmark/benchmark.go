package benchmark

import "context"

type Benchmark interface {
	// Called once at the start of the run, to create the schema objects required
	Setup(ctx context.Context) error
	// Runs every tier, in order, and writes the report
	Run(ctx context.Context, sizes []int) error
}

// Operation names, in the order a tier runs them. Later operations work on the rows created
// by insert, so the order is fixed.
const (
	Insert = "Insert"
	Select = "Select"
	Update = "Update"
	Delete = "Delete"
)

var Operations = []string{Insert, Select, Update, Delete}

// Timings (seconds) of one tier
type TierResult struct {
	Size       int
	InsertTime float64
	SelectTime float64
	UpdateTime float64
	DeleteTime float64
}

// Returns the time of operation op, or 0 for an unknown operation
func (r TierResult) Time(op string) float64 {
	switch op {
	case Insert:
		return r.InsertTime
	case Select:
		return r.SelectTime
	case Update:
		return r.UpdateTime
	case Delete:
		return r.DeleteTime
	}
	return 0
}
