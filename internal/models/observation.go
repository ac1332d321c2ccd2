package models

import (
	"strings"
	"time"
)

// Observation is one vendor's quote for a ticket quantity, seen at Timestamp.
type Observation struct {
	Vendor    string  `json:"vendor"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// Metrics is derived from a set of observations on every request.
// A nil field means the value cannot be derived from Points.
//
// BestQuantityToday is the quantity of today's cheapest observation. It is
// serialized as avg_qty7d, the name existing clients read.
type Metrics struct {
	Points            []Observation `json:"points"`
	Current           *float64      `json:"current"`
	Delta24h          *float64      `json:"delta24h"`
	Low7d             *float64      `json:"low7d"`
	BestQuantityToday *int          `json:"avg_qty7d"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseTimestamp parses the timestamp formats found in the price sheet.
// Zoned timestamps keep their own offset.
func ParseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
