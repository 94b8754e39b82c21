// Package timeseries provides the raw series type fed into the selection pipeline.
package timeseries

import (
	"time"

	"github.com/pkg/errors"
)

// origin anchors synthetic timestamps so that series built without dates
// are reproducible across runs.
var origin = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Series represents a univariate time series with timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string

	// Dropped counts loaded rows whose value could not be parsed.
	Dropped int
	// Undated counts loaded rows whose date could not be parsed. When
	// non-zero the series carries synthetic timestamps.
	Undated int
}

// New creates a new time series from values, stamping them hourly from a
// fixed origin.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = origin.Add(time.Duration(i) * time.Hour)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.Errorf("timestamps and values must have the same length (%d != %d)",
			len(timestamps), len(values))
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Split cuts the series chronologically: the first round(fraction*n)
// observations form the training part, the rest the testing part.
func (s *Series) Split(fraction float64) (training, testing *Series, err error) {
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, errors.Errorf("split fraction must lie in (0, 1), got %g", fraction)
	}

	n := len(s.Values)
	cut := int(fraction*float64(n) + 0.5)
	if cut == 0 || cut == n {
		return nil, nil, errors.Errorf("splitting %d observations at %g leaves an empty part", n, fraction)
	}

	return s.Slice(0, cut), s.Slice(cut, n), nil
}

// WithValues returns a series sharing this series' timestamps and name but
// carrying the given values. The values must match the series length.
func (s *Series) WithValues(values []float64) (*Series, error) {
	if len(values) != len(s.Values) {
		return nil, errors.Errorf("expected %d values, got %d", len(s.Values), len(values))
	}

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}, nil
}

// TimestampAt returns the timestamp of observation i, or the zero time when
// the series carries no timestamp for it.
func (s *Series) TimestampAt(i int) time.Time {
	if i < 0 || i >= len(s.Timestamps) {
		return time.Time{}
	}
	return s.Timestamps[i]
}
