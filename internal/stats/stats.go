// Package stats summarizes the numeric columns of a reconstructed table
// with gonum.
package stats

import (
	"math"
	"sort"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes one numeric column
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Describe summarizes every integer and real column of t, in column order
func Describe(t *table.Table) []Summary {
	var out []Summary
	for _, col := range t.Columns {
		switch t.Types[col] {
		case table.Integer, table.Real:
		default:
			continue
		}

		values := make([]float64, 0, len(t.Records))
		for _, rec := range t.Records {
			if v, ok := rec.Number(col); ok {
				values = append(values, v)
			}
		}
		s := Column(values)
		s.Column = col
		out = append(out, s)
	}
	return out
}

// Column summarizes a slice of values. Standard deviation is the sample
// deviation and is 0 for fewer than two values.
func Column(values []float64) Summary {
	s := Summary{Count: len(values)}
	if len(values) == 0 {
		return s
	}

	s.Sum = floats.Sum(values)
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean = stat.Mean(values, nil)
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s.Median = median(sorted)
	return s
}

// median of sorted values; the mean of the middle pair for even counts
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Find returns the summary for column
func Find(summaries []Summary, column string) (Summary, bool) {
	for _, s := range summaries {
		if s.Column == column {
			return s, true
		}
	}
	return Summary{}, false
}

// Round rounds every figure to the given decimal places for display
func (s Summary) Round(places int) Summary {
	scale := math.Pow(10, float64(places))
	r := func(v float64) float64 { return math.Round(v*scale) / scale }
	s.Sum, s.Mean, s.StdDev = r(s.Sum), r(s.Mean), r(s.StdDev)
	s.Min, s.Max, s.Median = r(s.Min), r(s.Max), r(s.Median)
	return s
}
