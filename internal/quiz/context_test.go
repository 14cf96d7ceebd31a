package quiz_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/studybuddy-ai/studybuddy/internal/content"
	"github.com/studybuddy-ai/studybuddy/internal/quiz"
)

func TestBuildContext_PlainTextInline(t *testing.T) {
	topic := content.Topic{
		Title: "Mitosis",
		Attachments: []content.Attachment{
			{Name: "notes.txt", Kind: content.KindPlainText, Payload: "Mitosis has four phases."},
		},
	}

	got, err := quiz.BuildContext(topic)
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	want := "Topic: Mitosis.\nContent from notes.txt: Mitosis has four phases."
	if got != want {
		t.Errorf("BuildContext() = %q, want %q", got, want)
	}
}

func TestBuildContext_BinaryKindsAreNamedNotParsed(t *testing.T) {
	topic := content.Topic{
		Title: "Cell Structure",
		Attachments: []content.Attachment{
			{Name: "slides.pptx", Kind: content.KindSlideDeck, Payload: "b64blob"},
			{Name: "diagram.png", Kind: content.KindImage, Payload: "b64blob"},
			{Name: "paper.pdf", Kind: content.KindPDF, Payload: "b64blob"},
		},
	}

	got, err := quiz.BuildContext(topic)
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	for _, name := range []string{"slides.pptx", "diagram.png", "paper.pdf"} {
		if !strings.Contains(got, "File attached: "+name) {
			t.Errorf("context missing placeholder for %s: %q", name, got)
		}
	}
	if strings.Contains(got, "b64blob") {
		t.Error("binary payload leaked into context")
	}
}

func TestBuildContext_PreservesAttachmentOrder(t *testing.T) {
	topic := content.Topic{
		Title: "Mixed",
		Attachments: []content.Attachment{
			{Name: "a.txt", Kind: content.KindPlainText, Payload: "first"},
			{Name: "b.pdf", Kind: content.KindPDF},
			{Name: "c.txt", Kind: content.KindPlainText, Payload: "third"},
		},
	}

	got, _ := quiz.BuildContext(topic)
	ia := strings.Index(got, "a.txt")
	ib := strings.Index(got, "b.pdf")
	ic := strings.Index(got, "c.txt")
	if !(ia < ib && ib < ic) {
		t.Errorf("attachments out of order in context: %q", got)
	}
}

func TestBuildContext_NoAttachments(t *testing.T) {
	_, err := quiz.BuildContext(content.Topic{Title: "Empty"})
	if !errors.Is(err, quiz.ErrNoContext) {
		t.Fatalf("BuildContext() error = %v, want ErrNoContext", err)
	}
}

func TestBuildContext_HardTruncation(t *testing.T) {
	topic := content.Topic{
		Title: "Long",
		Attachments: []content.Attachment{
			{Name: "big.txt", Kind: content.KindPlainText, Payload: strings.Repeat("x", quiz.MaxContextLen*2)},
		},
	}

	got, err := quiz.BuildContext(topic)
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if n := len([]rune(got)); n != quiz.MaxContextLen {
		t.Errorf("context length = %d runes, want exactly %d", n, quiz.MaxContextLen)
	}

	// Determinism: same input, same output.
	again, _ := quiz.BuildContext(topic)
	if got != again {
		t.Error("truncation is not deterministic")
	}
}
