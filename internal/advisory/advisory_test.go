package advisory

import (
	"math"
	"testing"
)

func price(v float64) *float64 { return &v }

func TestClassify_Breakpoints(t *testing.T) {
	cases := []struct {
		current *float64
		want    Band
	}{
		{price(601), BandDiscourage},
		{price(600.01), BandDiscourage},
		{price(600), BandCautious},
		{price(400.5), BandCautious},
		{price(400), BandEncourage},
		{price(399), BandEncourage},
		{price(0), BandEncourage},
		{nil, BandUnknown},
	}

	for _, tc := range cases {
		if got := Classify(tc.current); got != tc.want {
			label := "nil"
			if tc.current != nil {
				label = "non-nil"
			}
			t.Fatalf("Classify(%s %v) = %s, want %s", label, deref(tc.current), got, tc.want)
		}
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	th := Thresholds{DiscourageAbove: 300, EncourageAtOrBelow: 150}
	if got := th.Classify(price(301)); got != BandDiscourage {
		t.Fatalf("expected discourage, got %s", got)
	}
	if got := th.Classify(price(200)); got != BandCautious {
		t.Fatalf("expected cautious, got %s", got)
	}
	if got := th.Classify(price(150)); got != BandEncourage {
		t.Fatalf("expected encourage, got %s", got)
	}
}

func TestThresholds_Validate(t *testing.T) {
	if err := DefaultThresholds.Validate(); err != nil {
		t.Fatalf("default thresholds should be valid: %v", err)
	}
	bad := Thresholds{DiscourageAbove: 300, EncourageAtOrBelow: 500}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected inverted thresholds to fail")
	}
	nan := Thresholds{DiscourageAbove: math.NaN(), EncourageAtOrBelow: 400}
	if err := nan.Validate(); err == nil {
		t.Fatal("expected NaN threshold to fail")
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
