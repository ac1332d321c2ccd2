package advisory

import (
	"fmt"
	"math"
)

// Band is the purchase advice for a price.
type Band string

const (
	BandUnknown    Band = "unknown"
	BandEncourage  Band = "encourage"
	BandCautious   Band = "cautious"
	BandDiscourage Band = "discourage"
)

// Thresholds holds the two policy breakpoints.
// Prices above DiscourageAbove discourage buying; prices at or below
// EncourageAtOrBelow encourage it; anything between is cautious.
type Thresholds struct {
	DiscourageAbove    float64
	EncourageAtOrBelow float64
}

var DefaultThresholds = Thresholds{
	DiscourageAbove:    600,
	EncourageAtOrBelow: 400,
}

func (t Thresholds) Validate() error {
	for _, v := range []float64{t.DiscourageAbove, t.EncourageAtOrBelow} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("advisory thresholds must be finite, got %v", v)
		}
	}
	if t.EncourageAtOrBelow > t.DiscourageAbove {
		return fmt.Errorf("advisory thresholds inverted: encourage at or below %.2f exceeds discourage above %.2f",
			t.EncourageAtOrBelow, t.DiscourageAbove)
	}
	return nil
}

// Classify maps today's floor price to a band. A nil price is unknown.
func (t Thresholds) Classify(current *float64) Band {
	if current == nil {
		return BandUnknown
	}
	switch p := *current; {
	case p > t.DiscourageAbove:
		return BandDiscourage
	case p > t.EncourageAtOrBelow:
		return BandCautious
	default:
		return BandEncourage
	}
}

// Classify uses DefaultThresholds.
func Classify(current *float64) Band {
	return DefaultThresholds.Classify(current)
}
