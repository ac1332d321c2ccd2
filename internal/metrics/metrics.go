// Package metrics derives price statistics from a series of observations.
//
// Everything here is pure: no I/O, no logging, no shared state. Days are
// calendar dates taken from each timestamp as written, so the "24h" delta
// compares the latest day with data against the previous day with data.
package metrics

import (
	"regexp"
	"slices"

	"github.com/kjannette/avaline-backend/internal/models"
)

// LowWindowDays is how many distinct days with data the low is taken over.
const LowWindowDays = 7

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Compute derives Metrics from observations. The input is not modified.
func Compute(observations []models.Observation) models.Metrics {
	points := slices.Clone(observations)
	if points == nil {
		points = []models.Observation{}
	}

	switch len(points) {
	case 0:
		return models.Metrics{Points: points}
	case 1:
		p := points[0]
		return models.Metrics{
			Points:            points,
			Current:           ptr(p.Price),
			Low7d:             ptr(p.Price),
			BestQuantityToday: ptr(p.Quantity),
		}
	}

	days, groups := GroupByDate(points)

	today := groups[days[len(days)-1]]
	cheapest := cheapestIndex(today)
	current := today[cheapest].Price

	var delta *float64
	if len(days) >= 2 {
		previous := groups[days[len(days)-2]]
		if len(previous) > 0 {
			delta = ptr(current - previous[cheapestIndex(previous)].Price)
		}
	}

	window := days[max(0, len(days)-LowWindowDays):]
	low := current
	for _, day := range window {
		group := groups[day]
		if dayLow := group[cheapestIndex(group)].Price; dayLow < low {
			low = dayLow
		}
	}

	return models.Metrics{
		Points:            points,
		Current:           ptr(current),
		Delta24h:          delta,
		Low7d:             ptr(low),
		BestQuantityToday: ptr(today[cheapest].Quantity),
	}
}

// GroupByDate buckets observations by DateKey. Keys are returned in
// ascending order; each group keeps input order.
func GroupByDate(observations []models.Observation) ([]string, map[string][]models.Observation) {
	groups := make(map[string][]models.Observation)
	for _, o := range observations {
		key := DateKey(o.Timestamp)
		groups[key] = append(groups[key], o)
	}

	days := make([]string, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	slices.Sort(days)
	return days, groups
}

// DateKey returns the YYYY-MM-DD calendar date of a timestamp in the
// reference it is written in. Unrecognized timestamps are their own key.
func DateKey(ts string) string {
	if d := datePrefix.FindString(ts); d != "" {
		return d
	}
	if t, ok := models.ParseTimestamp(ts); ok {
		return t.Format("2006-01-02")
	}
	return ts
}

// cheapestIndex returns the first index holding the lowest price.
// group must be non-empty.
func cheapestIndex(group []models.Observation) int {
	best := 0
	for i := 1; i < len(group); i++ {
		if group[i].Price < group[best].Price {
			best = i
		}
	}
	return best
}

func ptr[T any](v T) *T {
	return &v
}
