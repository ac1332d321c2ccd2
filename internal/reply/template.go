// Package reply turns price metrics into Avaline's words.
//
// ComposeTemplate is deterministic and only ever prints figures it was given.
// Composer layers a text generator on top and falls back to the template
// whenever generation is unavailable or fails.
package reply

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kjannette/avaline-backend/internal/models"
)

const (
	NoDataReply   = "Blimey, no current pricing data available. Bit of a sticky wicket, that."
	closingPhrase = "Keep calm and carry on watching."
)

// ComposeTemplate renders metrics as a grounded sentence.
func ComposeTemplate(m models.Metrics) string {
	m = usable(m)
	if m.Current == nil {
		return NoDataReply
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today's floor is %s", usd(*m.Current))
	if m.Delta24h != nil {
		fmt.Fprintf(&b, ", %s since yesterday", signedUSD(*m.Delta24h))
	}
	b.WriteString(". ")

	if m.Low7d != nil {
		fmt.Fprintf(&b, "The weekly low is %s. ", usd(*m.Low7d))
	}
	if m.BestQuantityToday != nil {
		fmt.Fprintf(&b, "The cheapest listing today is for %s. ", tickets(*m.BestQuantityToday))
	}

	b.WriteString(closingPhrase)
	return b.String()
}

// usable treats non-finite figures as missing.
func usable(m models.Metrics) models.Metrics {
	m.Current = finite(m.Current)
	m.Delta24h = finite(m.Delta24h)
	m.Low7d = finite(m.Low7d)
	return m
}

func finite(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	return p
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// usd prints the value to the cent with no grouping: 450, 450.5.
func usd(v float64) string {
	if !isFinite(v) {
		return "N/A"
	}
	return "$" + decimal.NewFromFloat(v).Round(2).String()
}

func signedUSD(v float64) string {
	if v >= 0 {
		return "+" + usd(v)
	}
	return "-" + usd(-v)
}

func tickets(n int) string {
	if n == 1 {
		return "1 ticket"
	}
	return fmt.Sprintf("%d tickets", n)
}

// wholeUSD rounds to whole dollars and groups thousands: $1,235.
func wholeUSD(v float64) string {
	if !isFinite(v) {
		return "N/A"
	}
	d := decimal.NewFromFloat(v).Round(0)
	if d.IsNegative() {
		return "-$" + groupThousands(d.Neg().String())
	}
	return "$" + groupThousands(d.String())
}

// groupedUSD keeps the fraction and groups thousands: $1,234.5.
func groupedUSD(v float64) string {
	if !isFinite(v) {
		return "N/A"
	}
	d := decimal.NewFromFloat(v)
	sign := ""
	if d.IsNegative() {
		sign, d = "-", d.Neg()
	}
	whole, frac, found := strings.Cut(d.String(), ".")
	out := sign + "$" + groupThousands(whole)
	if found {
		out += "." + frac
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
