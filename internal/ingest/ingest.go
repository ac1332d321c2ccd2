// Package ingest turns raw tabular rows into observations.
//
// Rows are laid out as quantity, vendor, price, timestamp. Anything the
// metrics code could trip over is dropped here.
package ingest

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/kjannette/avaline-backend/internal/models"
)

// ParseRows skips the header row, drops invalid rows and returns the rest
// sorted oldest first.
func ParseRows(rows [][]any) []models.Observation {
	if len(rows) <= 1 {
		return []models.Observation{}
	}

	out := make([]models.Observation, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if o, ok := ParseRow(row); ok {
			out = append(out, o)
		}
	}
	SortByTimestamp(out)
	return out
}

// ParseRow reads one data row. It reports false for short rows, a
// non-integer quantity, a non-numeric price or an unreadable timestamp.
func ParseRow(row []any) (models.Observation, bool) {
	if len(row) < 4 {
		return models.Observation{}, false
	}

	qty, ok := parseQuantity(cell(row[0]))
	if !ok {
		return models.Observation{}, false
	}
	price, ok := parsePrice(cell(row[2]))
	if !ok {
		return models.Observation{}, false
	}
	ts := cell(row[3])
	if _, ok := models.ParseTimestamp(ts); !ok {
		return models.Observation{}, false
	}

	return models.Observation{
		Vendor:    cell(row[1]),
		Quantity:  qty,
		Price:     price,
		Timestamp: ts,
	}, true
}

// Valid applies the row rules to an observation read from somewhere other
// than a sheet, such as the database.
func Valid(o models.Observation) bool {
	if !quantityInRange(float64(o.Quantity)) || math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
		return false
	}
	_, ok := models.ParseTimestamp(o.Timestamp)
	return ok
}

// SortByTimestamp orders observations oldest first, keeping the relative
// order of equal instants.
func SortByTimestamp(obs []models.Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		a, _ := models.ParseTimestamp(obs[i].Timestamp)
		b, _ := models.ParseTimestamp(obs[j].Timestamp)
		return a.Before(b)
	})
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func parseQuantity(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, quantityInRange(float64(n))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || !quantityInRange(f) {
		return 0, false
	}
	return int(f), true
}

// quantityInRange keeps quantities inside the INTEGER column range.
// NaN and infinities fail both comparisons.
func quantityInRange(f float64) bool {
	return f >= math.MinInt32 && f <= math.MaxInt32
}

// parsePrice accepts plain numbers and sheet currency formatting ($1,250.00).
func parsePrice(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
