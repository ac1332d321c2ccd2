package reply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kjannette/avaline-backend/internal/advisory"
	"github.com/kjannette/avaline-backend/internal/models"
)

// MaxReplyLength bounds any reply, in runes.
const MaxReplyLength = 1200

var ErrEmptyReply = errors.New("text generator returned no text")

// TextGenerator produces free text for a prompt. It may fail for any reason.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

type Composer struct {
	gen        TextGenerator
	event      string
	thresholds advisory.Thresholds
}

// NewComposer returns a Composer. A nil gen always uses the template.
func NewComposer(gen TextGenerator, event string, th advisory.Thresholds) *Composer {
	return &Composer{gen: gen, event: event, thresholds: th}
}

// Reply is a composed answer and whether the generator wrote it.
type Reply struct {
	Text      string
	Generated bool
}

// Compose asks the generator for a reply and falls back to ComposeTemplate
// when there is no generator or it fails. It never returns an error.
func (c *Composer) Compose(ctx context.Context, m models.Metrics, question string) Reply {
	if c.gen == nil {
		return Reply{Text: ComposeTemplate(m)}
	}

	text, err := c.generate(ctx, m, question)
	if err != nil {
		fmt.Printf("[AVALINE] Text generation failed, using template reply: %v\n", err)
		return Reply{Text: ComposeTemplate(m)}
	}
	return Reply{Text: text, Generated: true}
}

func (c *Composer) generate(ctx context.Context, m models.Metrics, question string) (string, error) {
	text, err := c.gen.Generate(ctx, BuildPrompt(m, question, c.event, c.thresholds))
	if err != nil {
		return "", err
	}
	text = Truncate(strings.TrimSpace(text), MaxReplyLength)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// Greeting renders the landing-page greeting with the composer's settings.
func (c *Composer) Greeting(m models.Metrics) (string, advisory.Band) {
	return Greeting(m, c.event, c.thresholds)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
