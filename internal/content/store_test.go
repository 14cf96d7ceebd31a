package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/studybuddy-ai/studybuddy/internal/content"
)

func TestStore_CreateSubject(t *testing.T) {
	store := content.NewStore(nil)

	subj, err := store.CreateSubject(context.Background(), "Biology", []content.TopicDraft{
		{Title: "Mitosis", Category: content.CategoryMidterm},
		{Title: "Genetics", Category: content.CategoryFinal},
	})
	if err != nil {
		t.Fatalf("CreateSubject() error = %v", err)
	}
	if subj.ID == "" {
		t.Error("CreateSubject() returned empty id")
	}
	if len(subj.Topics) != 2 {
		t.Fatalf("topics = %d, want 2", len(subj.Topics))
	}
	for _, topic := range subj.Topics {
		if topic.ID == "" {
			t.Error("topic has empty id")
		}
		if topic.Completed {
			t.Error("new topic should not be completed")
		}
	}
}

func TestStore_CreateSubject_EmptyName(t *testing.T) {
	store := content.NewStore(nil)

	_, err := store.CreateSubject(context.Background(), "  ", nil)
	var verr *content.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateSubject() error = %v, want ValidationError", err)
	}
}

func TestStore_CreateSubject_BadCategory(t *testing.T) {
	store := content.NewStore(nil)

	_, err := store.CreateSubject(context.Background(), "Biology", []content.TopicDraft{
		{Title: "Mitosis", Category: "pop-quiz"},
	})
	var verr *content.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateSubject() error = %v, want ValidationError", err)
	}
}

func TestStore_CategoryIsNormalized(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	subj, err := store.CreateSubject(ctx, "Biology", []content.TopicDraft{
		{Title: "Mitosis", Category: " Midterm "},
	})
	if err != nil {
		t.Fatalf("CreateSubject() error = %v", err)
	}
	if got := subj.Topics[0].Category; got != content.CategoryMidterm {
		t.Errorf("stored category = %q, want %q", got, content.CategoryMidterm)
	}

	subj, err = store.AddTopic(ctx, subj.ID, "Genetics", "FINAL")
	if err != nil {
		t.Fatalf("AddTopic() error = %v", err)
	}
	if got := subj.Topics[1].Category; got != content.CategoryFinal {
		t.Errorf("stored category = %q, want %q", got, content.CategoryFinal)
	}
}

func TestStore_IDsStayUnique(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		subj, err := store.CreateSubject(ctx, "Subject", []content.TopicDraft{
			{Title: "A", Category: content.CategoryQuiz},
			{Title: "B", Category: content.CategoryQuiz},
		})
		if err != nil {
			t.Fatalf("CreateSubject() error = %v", err)
		}
		if seen[subj.ID] {
			t.Fatalf("duplicate subject id %s", subj.ID)
		}
		seen[subj.ID] = true
		for _, topic := range subj.Topics {
			if seen[topic.ID] {
				t.Fatalf("duplicate topic id %s", topic.ID)
			}
			seen[topic.ID] = true
		}
	}

	// Deleting and recreating must not resurrect ids either.
	subjects := store.Subjects()
	if err := store.DeleteSubject(ctx, subjects[0].ID); err != nil {
		t.Fatalf("DeleteSubject() error = %v", err)
	}
	subj, _ := store.CreateSubject(ctx, "Replacement", nil)
	if seen[subj.ID] {
		t.Fatalf("recreated subject reused id %s", subj.ID)
	}
}

func TestStore_AddTopic(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	subj, _ := store.CreateSubject(ctx, "Chemistry", nil)

	updated, err := store.AddTopic(ctx, subj.ID, "Stoichiometry", content.CategoryQuiz)
	if err != nil {
		t.Fatalf("AddTopic() error = %v", err)
	}
	if len(updated.Topics) != 1 {
		t.Fatalf("topics = %d, want 1", len(updated.Topics))
	}
	if updated.Topics[0].Category != content.CategoryQuiz {
		t.Errorf("category = %q, want %q", updated.Topics[0].Category, content.CategoryQuiz)
	}
}

func TestStore_AddTopic_UnknownSubject(t *testing.T) {
	store := content.NewStore(nil)

	_, err := store.AddTopic(context.Background(), "nope", "Anything", content.CategoryQuiz)
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("AddTopic() error = %v, want ErrNotFound", err)
	}
}

func TestStore_AddTopic_EmptyTitle(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()
	subj, _ := store.CreateSubject(ctx, "Chemistry", nil)

	_, err := store.AddTopic(ctx, subj.ID, "", content.CategoryQuiz)
	var verr *content.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("AddTopic() error = %v, want ValidationError", err)
	}
}

func TestStore_ToggleTopicCompletion_IsItsOwnInverse(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	subj, _ := store.CreateSubject(ctx, "Physics", []content.TopicDraft{
		{Title: "Kinematics", Category: content.CategoryMidterm},
	})
	topicID := subj.Topics[0].ID

	once, err := store.ToggleTopicCompletion(ctx, subj.ID, topicID)
	if err != nil {
		t.Fatalf("ToggleTopicCompletion() error = %v", err)
	}
	if !once.Topics[0].Completed {
		t.Error("first toggle should mark completed")
	}

	twice, err := store.ToggleTopicCompletion(ctx, subj.ID, topicID)
	if err != nil {
		t.Fatalf("ToggleTopicCompletion() error = %v", err)
	}
	if twice.Topics[0].Completed {
		t.Error("second toggle should restore the original value")
	}
}

func TestStore_ToggleTopicCompletion_UnknownTopic(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()
	subj, _ := store.CreateSubject(ctx, "Physics", nil)

	_, err := store.ToggleTopicCompletion(ctx, subj.ID, "nope")
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("ToggleTopicCompletion() error = %v, want ErrNotFound", err)
	}
}

func TestStore_AddAttachment_AllowsDuplicateNames(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	subj, _ := store.CreateSubject(ctx, "History", []content.TopicDraft{
		{Title: "WW2", Category: content.CategoryFinal},
	})
	topicID := subj.Topics[0].ID

	for i := 0; i < 2; i++ {
		if _, err := store.AddAttachment(ctx, subj.ID, topicID, "notes.txt", content.KindPlainText, "some notes"); err != nil {
			t.Fatalf("AddAttachment() error = %v", err)
		}
	}

	topic, ok := store.Topic(subj.ID, topicID)
	if !ok {
		t.Fatal("Topic() not found")
	}
	if len(topic.Attachments) != 2 {
		t.Fatalf("attachments = %d, want 2", len(topic.Attachments))
	}
	if topic.Attachments[0].ID == topic.Attachments[1].ID {
		t.Error("duplicate-named attachments must still get distinct ids")
	}
}

func TestStore_DeleteSubject_Cascades(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	subj, _ := store.CreateSubject(ctx, "Geography", []content.TopicDraft{
		{Title: "Maps", Category: content.CategoryQuiz},
	})
	store.AddAttachment(ctx, subj.ID, subj.Topics[0].ID, "atlas.pdf", content.KindPDF, "blob")

	if err := store.DeleteSubject(ctx, subj.ID); err != nil {
		t.Fatalf("DeleteSubject() error = %v", err)
	}
	if _, ok := store.Subject(subj.ID); ok {
		t.Error("subject still resolvable after delete")
	}
	if _, ok := store.Topic(subj.ID, subj.Topics[0].ID); ok {
		t.Error("descendant topic still resolvable after delete")
	}
}

func TestStore_SetSubjectColor(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	subj, _ := store.CreateSubject(ctx, "History", nil)

	got, err := store.SetSubjectColor(ctx, subj.ID, "#f87171")
	if err != nil {
		t.Fatalf("SetSubjectColor() error = %v", err)
	}
	if got.Color != "#f87171" {
		t.Errorf("color = %q, want #f87171", got.Color)
	}

	// Stored verbatim, never validated.
	if got, err = store.SetSubjectColor(ctx, subj.ID, "chartreuse-ish"); err != nil {
		t.Fatalf("SetSubjectColor() error = %v", err)
	}
	if got.Color != "chartreuse-ish" {
		t.Errorf("color = %q, want the raw value back", got.Color)
	}

	if _, err := store.SetSubjectColor(ctx, "nope", "#fff"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("SetSubjectColor() unknown subject error = %v, want ErrNotFound", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := content.NewStore(nil)
	ctx := context.Background()

	subj, _ := store.CreateSubject(ctx, "Art", []content.TopicDraft{
		{Title: "Cubism", Category: content.CategoryQuiz},
	})

	// Mutating the returned value must not reach into the store.
	subj.Topics[0].Completed = true

	fresh, _ := store.Subject(subj.ID)
	if fresh.Topics[0].Completed {
		t.Error("mutation through a returned copy leaked into the store")
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mime     string
		want     content.AttachmentKind
	}{
		{"pptx", "deck.pptx", "application/vnd.ms-powerpoint", content.KindSlideDeck},
		{"txt", "notes.txt", "text/plain", content.KindPlainText},
		{"image", "diagram.png", "image/png", content.KindImage},
		{"pdf", "paper.pdf", "application/pdf", content.KindPDF},
		{"uppercase txt", "NOTES.TXT", "text/plain", content.KindPlainText},
		{"uppercase pptx", "DECK.PPTX", "", content.KindSlideDeck},
		{"uppercase image mime", "photo.jpeg", "IMAGE/JPEG", content.KindImage},
		{"unknown falls back to pdf", "mystery.bin", "application/octet-stream", content.KindPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := content.InferKind(tt.filename, tt.mime); got != tt.want {
				t.Errorf("InferKind(%q, %q) = %q, want %q", tt.filename, tt.mime, got, tt.want)
			}
		})
	}
}
