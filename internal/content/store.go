package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Persister durably stores the subject tree. Save is called after every
// successful mutation; Load once at startup. An empty backing store must
// load as an empty tree, not an error.
type Persister interface {
	Load(ctx context.Context) (Tree, error)
	Save(ctx context.Context, tree Tree) error
}

// Store holds the in-memory subject tree and guards it against interleaved
// mutation. Mutations run to completion one at a time; there is one logical
// owner, not a multi-writer design.
type Store struct {
	mu          sync.Mutex
	subjects    []Subject
	persister   Persister
	lastSaveErr error
}

// NewStore creates a store backed by the given persister. A nil persister
// keeps the tree in memory only.
func NewStore(p Persister) *Store {
	return &Store{persister: p}
}

// Load replaces the in-memory tree with the persisted one. Called once at
// startup, before any mutation.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	tree, err := s.persister.Load(ctx)
	if err != nil {
		return &PersistenceError{Op: "load", Err: err}
	}

	s.mu.Lock()
	s.subjects = tree.Subjects
	s.mu.Unlock()

	slog.Info("content tree loaded", "subjects", len(tree.Subjects))
	return nil
}

// CreateSubject adds a new subject with a generated id and the given initial
// topics, newest first. Fails with a ValidationError on an empty name or an
// empty topic title in the batch.
func (s *Store) CreateSubject(ctx context.Context, name string, initial []TopicDraft) (Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Subject{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	subj := Subject{
		ID:     uuid.NewString(),
		Name:   name,
		Topics: make([]Topic, 0, len(initial)),
	}
	for _, d := range initial {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			return Subject{}, &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		cat, err := ParseCategory(string(d.Category))
		if err != nil {
			return Subject{}, err
		}
		subj.Topics = append(subj.Topics, Topic{
			ID:          uuid.NewString(),
			Title:       title,
			Category:    cat,
			Attachments: []Attachment{},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = append([]Subject{subj}, s.subjects...)
	s.persist(ctx)

	slog.Info("subject created", "subject_id", subj.ID, "topics", len(subj.Topics))
	return cloneSubject(subj), nil
}

// AddTopic appends a topic to an existing subject under the given category.
func (s *Store) AddTopic(ctx context.Context, subjectID, title string, category Category) (Subject, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Subject{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	cat, err := ParseCategory(string(category))
	if err != nil {
		return Subject{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subj := s.find(subjectID)
	if subj == nil {
		return Subject{}, notFound("subject", subjectID)
	}
	subj.Topics = append(subj.Topics, Topic{
		ID:          uuid.NewString(),
		Title:       title,
		Category:    cat,
		Attachments: []Attachment{},
	})
	s.persist(ctx)

	slog.Info("topic added", "subject_id", subjectID, "category", cat)
	return cloneSubject(*subj), nil
}

// ToggleTopicCompletion flips the completed flag of a topic.
func (s *Store) ToggleTopicCompletion(ctx context.Context, subjectID, topicID string) (Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subj := s.find(subjectID)
	if subj == nil {
		return Subject{}, notFound("subject", subjectID)
	}
	for i := range subj.Topics {
		if subj.Topics[i].ID == topicID {
			subj.Topics[i].Completed = !subj.Topics[i].Completed
			s.persist(ctx)
			return cloneSubject(*subj), nil
		}
	}
	return Subject{}, notFound("topic", topicID)
}

// AddAttachment appends an attachment to a topic. Duplicate names are
// permitted; attachments are never deduplicated.
func (s *Store) AddAttachment(ctx context.Context, subjectID, topicID, name string, kind AttachmentKind, payload string) (Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subj := s.find(subjectID)
	if subj == nil {
		return Subject{}, notFound("subject", subjectID)
	}
	for i := range subj.Topics {
		if subj.Topics[i].ID == topicID {
			subj.Topics[i].Attachments = append(subj.Topics[i].Attachments, Attachment{
				ID:      uuid.NewString(),
				Name:    name,
				Kind:    kind,
				Payload: payload,
			})
			s.persist(ctx)
			slog.Info("attachment added", "topic_id", topicID, "name", name, "kind", kind)
			return cloneSubject(*subj), nil
		}
	}
	return Subject{}, notFound("topic", topicID)
}

// SetSubjectColor sets the cosmetic color hint of a subject. The value is
// stored verbatim; an empty string clears it.
func (s *Store) SetSubjectColor(ctx context.Context, subjectID, color string) (Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subj := s.find(subjectID)
	if subj == nil {
		return Subject{}, notFound("subject", subjectID)
	}
	subj.Color = color
	s.persist(ctx)
	return cloneSubject(*subj), nil
}

// DeleteSubject removes a subject and everything under it in one step.
func (s *Store) DeleteSubject(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.subjects {
		if s.subjects[i].ID == subjectID {
			s.subjects = append(s.subjects[:i], s.subjects[i+1:]...)
			s.persist(ctx)
			slog.Info("subject deleted", "subject_id", subjectID)
			return nil
		}
	}
	return notFound("subject", subjectID)
}

// Subject returns a copy of the subject with the given id.
func (s *Store) Subject(subjectID string) (Subject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subj := s.find(subjectID)
	if subj == nil {
		return Subject{}, false
	}
	return cloneSubject(*subj), true
}

// Topic returns a copy of the topic with the given id within a subject.
func (s *Store) Topic(subjectID, topicID string) (Topic, bool) {
	subj, ok := s.Subject(subjectID)
	if !ok {
		return Topic{}, false
	}
	for _, t := range subj.Topics {
		if t.ID == topicID {
			return t, true
		}
	}
	return Topic{}, false
}

// Subjects returns a copy of all subjects in display order.
func (s *Store) Subjects() []Subject {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Subject, len(s.subjects))
	for i, subj := range s.subjects {
		out[i] = cloneSubject(subj)
	}
	return out
}

// LastSaveErr reports the error from the most recent save, or nil. Save
// failures do not undo mutations; this is how callers learn about them.
func (s *Store) LastSaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// persist saves the full tree after a successful mutation. Must be called
// with the lock held.
func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	tree := Tree{Subjects: s.subjects}
	if err := s.persister.Save(ctx, tree); err != nil {
		s.lastSaveErr = &PersistenceError{Op: "save", Err: err}
		slog.Error("failed to persist content tree", "error", err)
		return
	}
	s.lastSaveErr = nil
}

func (s *Store) find(subjectID string) *Subject {
	for i := range s.subjects {
		if s.subjects[i].ID == subjectID {
			return &s.subjects[i]
		}
	}
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
