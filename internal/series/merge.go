// Package series aligns two differently-sampled time series onto one
// timeline with forward-fill (as-of join) semantics.
package series

import (
	"sort"
	"time"
)

type Point struct {
	Date      string  `json:"date"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Timestamp int64   `json:"timestamp"`
}

// Merge walks the union of both date sets in ascending order, carrying
// each series' last observed value forward. A point is emitted only once
// both series have started; there is no interpolation.
func Merge(a, b map[string]float64) []Point {
	dates := make(map[string]struct{}, len(a)+len(b))
	for d := range a {
		dates[d] = struct{}{}
	}
	for d := range b {
		dates[d] = struct{}{}
	}
	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	// lexicographic order is date order for YYYY-MM-DD
	sort.Strings(sorted)

	var lastA, lastB float64
	var haveA, haveB bool
	out := make([]Point, 0, len(sorted))
	for _, d := range sorted {
		if v, ok := a[d]; ok {
			lastA, haveA = v, true
		}
		if v, ok := b[d]; ok {
			lastB, haveB = v, true
		}
		if !haveA || !haveB {
			continue
		}
		p := Point{Date: d, A: lastA, B: lastB}
		if ts, err := time.Parse("2006-01-02", d); err == nil {
			p.Timestamp = ts.Unix()
		}
		out = append(out, p)
	}
	return out
}
