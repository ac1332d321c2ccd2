package reply

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kjannette/avaline-backend/internal/advisory"
	"github.com/kjannette/avaline-backend/internal/models"
)

// Prompt is what a text generator is asked to answer.
type Prompt struct {
	System string
	User   string
}

// Combined joins both parts for single-input generation APIs.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}

type marketContext struct {
	CurrentPrice     *float64      `json:"currentPrice"`
	PriceChange24h   *float64      `json:"priceChange24h"`
	WeeklyLow        *float64      `json:"weeklyLow"`
	CheapestQuantity *int          `json:"cheapestQuantity"`
	PriceTrend       string        `json:"priceTrend"`
	IsGoodDeal       bool          `json:"isGoodDeal"`
	Advice           advisory.Band `json:"advice"`
}

// BuildPrompt frames the metrics and an optional question for Avaline.
func BuildPrompt(m models.Metrics, question, event string, th advisory.Thresholds) Prompt {
	m = usable(m)
	system := strings.Join([]string{
		"You are Avaline: a friendly woman from Northern England, mid-20s, with a 1990s vibe.",
		"Light Northern slang (e.g., 'ay up', 'hi love', 'cheeky'), no heavy phonetic spellings.",
		"Be warm, witty, and never fabricate numbers. Only use the provided data.",
		"Purchase guidance policy based on the current price:",
		fmt.Sprintf("- Above %s: discourage purchasing and suggest waiting.", wholeUSD(th.DiscourageAbove)),
		fmt.Sprintf("- Between %s and %s: cautiously consider purchasing, weighing pros and cons.",
			wholeUSD(th.DiscourageAbove), wholeUSD(th.EncourageAtOrBelow)),
		fmt.Sprintf("- At or below %s: encourage purchasing confidently.", wholeUSD(th.EncourageAtOrBelow)),
		"Apply this policy naturally in character without stating the thresholds unless asked.",
		"Mention that there is a link below the chat bubble to subscribe to email price alerts.",
	}, "\n")

	qty := "N/A"
	if m.BestQuantityToday != nil {
		qty = strconv.Itoa(*m.BestQuantityToday)
	}

	ask := "\nGeneral update, please give a market read and advice."
	if question != "" {
		ask = fmt.Sprintf("\nUser asked: %q", question)
	}

	raw, err := json.Marshal(marketContext{
		CurrentPrice:     m.Current,
		PriceChange24h:   m.Delta24h,
		WeeklyLow:        m.Low7d,
		CheapestQuantity: m.BestQuantityToday,
		PriceTrend:       trend(m.Delta24h),
		IsGoodDeal:       m.Current != nil && m.Low7d != nil && *m.Current <= *m.Low7d*1.1,
		Advice:           th.Classify(m.Current),
	})

	lines := []string{
		fmt.Sprintf("Market data for %s:", event),
		"- Current lowest price: " + orNA(m.Current, wholeUSD),
		"- 24h change: " + orNA(m.Delta24h, signedWholeUSD),
		"- 7-day low: " + orNA(m.Low7d, wholeUSD),
		"- Cheapest quantity today: " + qty,
		ask,
	}
	if err != nil {
		fmt.Printf("[AVALINE] Market context not encoded: %v\n", err)
	} else {
		lines = append(lines, "\nRaw JSON: "+string(raw))
	}
	user := strings.Join(lines, "\n")

	return Prompt{System: system, User: user}
}

func trend(delta *float64) string {
	switch {
	case delta == nil:
		return "unknown"
	case *delta > 0:
		return "rising"
	case *delta < 0:
		return "falling"
	default:
		return "flat"
	}
}

func signedWholeUSD(v float64) string {
	if v >= 0 {
		return "+" + wholeUSD(v)
	}
	return wholeUSD(v)
}

func orNA(v *float64, format func(float64) string) string {
	if v == nil {
		return "N/A"
	}
	return format(*v)
}
