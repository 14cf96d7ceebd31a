// Package content owns the Subject → Topic → Attachment tree and the
// mutators that keep it consistent. It is the single source of truth for
// study content; quiz results are never written back here.
package content

import (
	"fmt"
	"strings"
)

// Category classifies which assessment a topic belongs to. It is assigned
// at creation and never changes.
type Category string

const (
	CategoryMidterm Category = "midterm"
	CategoryFinal   Category = "final"
	CategoryQuiz    Category = "quiz"
)

// ParseCategory maps a raw string to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMidterm:
		return CategoryMidterm, nil
	case CategoryFinal:
		return CategoryFinal, nil
	case CategoryQuiz:
		return CategoryQuiz, nil
	}
	return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s)}
}

// AttachmentKind describes what kind of file an attachment holds. Inferred
// once at upload time from the file name / MIME type, immutable after.
type AttachmentKind string

const (
	KindPDF       AttachmentKind = "pdf"
	KindSlideDeck AttachmentKind = "slide-deck"
	KindPlainText AttachmentKind = "plain-text"
	KindImage     AttachmentKind = "image"
)

// InferKind determines the attachment kind from the original filename and
// MIME type. Anything unrecognized is treated as a PDF, matching the upload
// dialog's accept list.
func InferKind(filename, mimeType string) AttachmentKind {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".pptx"):
		return KindSlideDeck
	case strings.HasSuffix(name, ".txt"):
		return KindPlainText
	case strings.HasPrefix(strings.ToLower(mimeType), "image/"):
		return KindImage
	}
	return KindPDF
}

// Attachment is a file or text blob attached to a topic. Payload holds
// inline text for plain-text attachments and an encoded blob otherwise.
// Attachments are append-only; they are never edited in place.
type Attachment struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Kind    AttachmentKind `json:"kind"`
	Payload string         `json:"payload"`
}

// Topic is a gradeable unit of study content within a subject.
type Topic struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Category    Category     `json:"category"`
	Completed   bool         `json:"completed"`
	Attachments []Attachment `json:"attachments"`
}

// Subject is a top-level syllabus unit owning an ordered list of topics.
// Color is a cosmetic hint for the UI, persisted verbatim.
type Subject struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Topics []Topic `json:"topics"`
}

// Tree is the full persisted subject tree.
type Tree struct {
	Subjects []Subject `json:"subjects"`
}

// TopicDraft is the input shape for batch topic creation.
type TopicDraft struct {
	Title    string
	Category Category
}

func cloneSubject(s Subject) Subject {
	out := s
	out.Topics = make([]Topic, len(s.Topics))
	for i, t := range s.Topics {
		out.Topics[i] = t
		out.Topics[i].Attachments = append([]Attachment(nil), t.Attachments...)
	}
	return out
}
