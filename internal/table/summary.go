package table

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"stringcalc/domain/instrument"
)

// Summary aggregates the numeric columns of a string table for display.
type Summary struct {
	Rows       int     `json:"rows"`
	TotalForce float64 `json:"total_force"`
	MeanForce  float64 `json:"mean_force"`
	MaxForce   float64 `json:"max_force"`
	MeanLength float64 `json:"mean_length"`
	MaxLength  float64 `json:"max_length"`
}

// Summarize computes a Summary. Cells that do not parse as finite numbers
// are left out of the aggregates; an empty column aggregates to zero.
func Summarize(snapshot instrument.TableSnapshot) Summary {
	force := column(snapshot, instrument.FieldForce)
	length := column(snapshot, instrument.FieldLength)

	s := Summary{Rows: len(snapshot)}
	s.TotalForce = orZero(stats.Sum(force))
	s.MeanForce = orZero(stats.Mean(force))
	s.MaxForce = orZero(stats.Max(force))
	s.MeanLength = orZero(stats.Mean(length))
	s.MaxLength = orZero(stats.Max(length))
	return s
}

func column(snapshot instrument.TableSnapshot, pos int) stats.Float64Data {
	var data stats.Float64Data
	for _, row := range snapshot {
		if pos >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[pos]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		data = append(data, v)
	}
	return data
}

func orZero(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
