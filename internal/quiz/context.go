// Package quiz turns a topic's attachments into a validated multiple-choice
// quiz and runs the interactive session over it. Quiz results are ephemeral;
// nothing here writes back to the content store.
package quiz

import (
	"errors"
	"strings"

	"github.com/studybuddy-ai/studybuddy/internal/content"
)

// MaxContextLen bounds the extracted context, in runes. Anything past it is
// hard-truncated, not summarized.
const MaxContextLen = 15000

// ErrNoContext reports a quiz request on a topic with no attachments.
// Callers must check for it before a session is created.
var ErrNoContext = errors.New("topic has no attachments")

// BuildContext derives the text block describing what a topic is about.
// Plain-text attachments contribute their content inline; binary kinds
// (pdf, slide-deck, image) contribute only a line naming the file — no
// binary parsing is attempted.
func BuildContext(topic content.Topic) (string, error) {
	if len(topic.Attachments) == 0 {
		return "", ErrNoContext
	}

	var b strings.Builder
	b.WriteString("Topic: ")
	b.WriteString(topic.Title)
	b.WriteString(".")
	for _, att := range topic.Attachments {
		if att.Kind == content.KindPlainText {
			b.WriteString("\nContent from ")
			b.WriteString(att.Name)
			b.WriteString(": ")
			b.WriteString(att.Payload)
		} else {
			b.WriteString("\nFile attached: ")
			b.WriteString(att.Name)
		}
	}

	return truncate(b.String(), MaxContextLen), nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
