package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/studybuddy-ai/studybuddy/internal/content"
)

// Service is the caller surface for quizzes: it starts sessions against
// topics in the content store, routes answers, and tears sessions down. It
// owns the registry that guards against late generation results reaching a
// closed session.
type Service struct {
	store        *content.Store
	pipeline     *Pipeline
	advanceDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// ServiceConfig holds Service dependencies.
type ServiceConfig struct {
	Store        *content.Store
	Pipeline     *Pipeline
	AdvanceDelay time.Duration // feedback delay before auto-advance (default 1s)
}

// NewService creates the quiz service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	delay := cfg.AdvanceDelay
	if delay == 0 {
		delay = DefaultAdvanceDelay
	}
	return &Service{
		store:        cfg.Store,
		pipeline:     cfg.Pipeline,
		advanceDelay: delay,
		sessions:     make(map[string]*Session),
	}, nil
}

// StartQuiz begins a quiz for a topic. A topic with no attachments is
// rejected with ErrNoContext before any session exists. The returned session
// starts in Loading; generation runs in the background and the session moves
// to Active or Failed when it completes. While Loading, submits are invalid.
func (s *Service) StartQuiz(ctx context.Context, subjectID, topicID string) (*Session, error) {
	topic, ok := s.store.Topic(subjectID, topicID)
	if !ok {
		return nil, fmt.Errorf("topic %s: %w", topicID, content.ErrNotFound)
	}

	quizContext, err := BuildContext(topic)
	if err != nil {
		return nil, err
	}

	session := newSession(s.advanceDelay)
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	slog.Info("quiz started", "session_id", session.ID(), "topic_id", topicID)

	// Generation must outlive the start call. The caller's context ends with
	// its request; canceling it must not abort the in-flight service call.
	genCtx := context.WithoutCancel(ctx)

	go func() {
		questions, err := s.pipeline.Generate(genCtx, topicID, quizContext)

		// Route the result by session identity. A session closed while the
		// service call was in flight is gone from the registry; its late
		// result must not resurrect it.
		s.mu.Lock()
		current, live := s.sessions[session.ID()]
		s.mu.Unlock()
		if !live || current != session {
			slog.Debug("discarding generation result for closed session", "session_id", session.ID())
			return
		}

		if err != nil {
			session.fail(err)
			return
		}
		session.activate(questions)
	}()

	return session, nil
}

// Session looks up a live session by id.
func (s *Service) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// SubmitAnswer records an answer on a live session.
func (s *Service) SubmitAnswer(id string, selected int) (correct bool, err error) {
	sess, ok := s.Session(id)
	if !ok {
		return false, fmt.Errorf("session %s: %w", id, content.ErrNotFound)
	}
	return sess.SubmitAnswer(selected)
}

// CloseQuiz tears a session down and forgets it. Closing an unknown session
// is a no-op; the dialog may already be gone.
func (s *Service) CloseQuiz(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sess.close()
		slog.Info("quiz closed", "session_id", id, "state", sess.State().String())
	}
}
