package reply

import (
	"fmt"

	"github.com/kjannette/avaline-backend/internal/advisory"
	"github.com/kjannette/avaline-backend/internal/models"
)

type bandVoice struct {
	exclaim string
	advice  string
}

var voices = map[advisory.Band]bandVoice{
	advisory.BandDiscourage: {"Rubbish!", "i might check back later. these are a bit steep, love."},
	advisory.BandCautious:   {"Lovely!", "these prices aren't half bad... i might give this a go, love!"},
	advisory.BandEncourage:  {"Brilliant!", "go for it, lovey!"},
}

// Greeting is the landing-page line: today's floor plus band advice.
func Greeting(m models.Metrics, event string, th advisory.Thresholds) (string, advisory.Band) {
	m = usable(m)
	band := th.Classify(m.Current)
	v, ok := voices[band]
	if !ok {
		return fmt.Sprintf("Hello, love! No prices in for %s just yet. Pop back in a bit.", event), band
	}
	return fmt.Sprintf("Hello, love! Current prices for %s are looking like %s at their lowest. %s %s",
		event, groupedUSD(*m.Current), v.exclaim, v.advice), band
}
