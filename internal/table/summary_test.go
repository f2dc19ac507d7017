package table

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stringcalc/domain/instrument"
)

func TestSummarize(t *testing.T) {
	snapshot := instrument.TableSnapshot{
		{"A4", "S1", "440", "steel", "650", "0.5", "1", "80"},
		{"B4", "S2", "493", "steel", "600", "0.5", "1", "100"},
		{"C5", "S3", "523", "steel", "n/a", "0.4", "1", "?"},
	}

	s := Summarize(snapshot)
	assert.Equal(t, 3, s.Rows)
	assert.InDelta(t, 180.0, s.TotalForce, 1e-9)
	assert.InDelta(t, 90.0, s.MeanForce, 1e-9)
	assert.InDelta(t, 100.0, s.MaxForce, 1e-9)
	assert.InDelta(t, 625.0, s.MeanLength, 1e-9)
	assert.InDelta(t, 650.0, s.MaxLength, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{Rows: 1}, Summarize(instrument.TableSnapshot{{"A4"}}))
}

func TestSummarizeSkipsNonFiniteCells(t *testing.T) {
	snapshot := instrument.TableSnapshot{
		{"A4", "S1", "440", "steel", "Inf", "0.5", "1", "NaN"},
		{"B4", "S2", "493", "steel", "600", "0.5", "1", "-Infinity"},
		{"C5", "S3", "523", "steel", "610", "0.4", "1", "70"},
	}

	s := Summarize(snapshot)
	assert.Equal(t, 3, s.Rows)
	assert.InDelta(t, 70.0, s.TotalForce, 1e-9)
	assert.InDelta(t, 70.0, s.MaxForce, 1e-9)
	assert.InDelta(t, 605.0, s.MeanLength, 1e-9)
	assert.InDelta(t, 610.0, s.MaxLength, 1e-9)
}
