package report

import (
	"strings"

	"crudbench/benchmark"
)

var separator = strings.Repeat("-", 55)

// genitive form of each operation, as used in the timing lines
var opLabels = map[string]string{
	benchmark.Insert: "вставки",
	benchmark.Select: "вибірки",
	benchmark.Update: "оновлення",
	benchmark.Delete: "видалення",
}

// One line of the indexed comparison table
type ComparisonRow struct {
	Size              int
	Operation         string
	TimeWithoutIndex  float64
	TimeWithIndex     float64
	PercentDifference float64
}

// Returns how much faster (positive) or slower (negative) the indexed run was, in percent of the
// unindexed time. A zero baseline yields 0.
func PercentDiff(without, with float64) float64 {
	if without == 0 {
		return 0
	}
	return (without - with) / without * 100
}

// Writes the header that opens a tier
func TierHeader(s *Sink, size int) {
	s.Logf("\nТестування для %d записів:", size)
}

// Writes the timing line of one operation of a tier
func Timing(s *Sink, op string, size int, seconds float64) {
	s.Logf("Час %s %d записів: %.4f сек", opLabels[op], size, seconds)
}

// Writes the summary table of a single cycle
func Summary(s *Sink, results []benchmark.TierResult) {
	s.Log("\nПорівняльна таблиця часу виконання операцій:")
	s.Log("К-сть записів | Insert | Select | Update | Delete")
	s.Log(separator)
	for _, r := range results {
		s.Logf("%-12d | %-5.4f | %-5.4f | %-5.4f | %-5.4f",
			r.Size, r.InsertTime, r.SelectTime, r.UpdateTime, r.DeleteTime)
	}
}

// Pairs the tiers of both cycles by position and returns one row per (size, operation).
// Tiers missing from the indexed cycle are skipped.
func Compare(without, with []benchmark.TierResult) []ComparisonRow {
	rows := []ComparisonRow{}
	for i, w := range without {
		if i >= len(with) {
			break
		}
		for _, op := range benchmark.Operations {
			a, b := w.Time(op), with[i].Time(op)
			rows = append(rows, ComparisonRow{
				Size:              w.Size,
				Operation:         op,
				TimeWithoutIndex:  a,
				TimeWithIndex:     b,
				PercentDifference: PercentDiff(a, b),
			})
		}
	}
	return rows
}

// Writes the comparison table of the indexed benchmark
func Comparison(s *Sink, rows []ComparisonRow) {
	s.Log("\nПорівняння продуктивності:")
	s.Log("К-сть | Операція | Без індексів | З індексами | Різниця")
	s.Log(separator)
	for _, r := range rows {
		s.Logf("%-5d | %-8s | %11.4f | %11.4f | %+.2f%%",
			r.Size, r.Operation, r.TimeWithoutIndex, r.TimeWithIndex, r.PercentDifference)
	}
}
