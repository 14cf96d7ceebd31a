package quiz

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultAdvanceDelay is how long a session shows correct/incorrect feedback
// before moving to the next question. A UI affordance, not a network wait.
const DefaultAdvanceDelay = 1000 * time.Millisecond

// State is the lifecycle phase of a quiz session.
type State int

const (
	StateLoading State = iota
	StateActive
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotActive reports a submit outside the Active state (still loading,
	// already finished, or failed).
	ErrNotActive = errors.New("session is not active")
	// ErrAlreadyAnswered reports a second submit for the same question; the
	// first selection stands and the score does not change.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrBadSelection reports a selected index outside the options range.
	ErrBadSelection = errors.New("selected option out of range")
)

// Session is one ephemeral run-through of a generated quiz. It lives in
// memory only, owned by the interaction that started it, and is discarded on
// close. The zero value is not usable; sessions are created by a Service.
type Session struct {
	id           string
	advanceDelay time.Duration

	mu       sync.Mutex
	state    State
	err      error
	question []Question
	current  int
	score    int
	answered bool
	advance  *time.Timer
	closed   bool
}

func newSession(advanceDelay time.Duration) *Session {
	if advanceDelay <= 0 {
		advanceDelay = DefaultAdvanceDelay
	}
	return &Session{
		id:           uuid.NewString(),
		advanceDelay: advanceDelay,
		state:        StateLoading,
	}
}

// ID identifies the session; late pipeline results and timer callbacks are
// routed by it so they can never touch a torn-down session.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the generation error for a Failed session, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Current returns the question being asked and its 0-based position. ok is
// false outside the Active state.
func (s *Session) Current() (q Question, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return Question{}, 0, false
	}
	return s.question[s.current], s.current, true
}

// Score returns the running score and the total question count.
func (s *Session) Score() (score, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, len(s.question)
}

// SubmitAnswer records the selection for the current question and reports
// whether it was correct. The first submission per question counts; repeats
// while the advance is pending return ErrAlreadyAnswered and change nothing.
// After the feedback delay the session advances to the next question, or to
// Finished from the last one.
func (s *Session) SubmitAnswer(selected int) (correct bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return false, ErrNotActive
	}
	if s.answered {
		return false, ErrAlreadyAnswered
	}
	q := s.question[s.current]
	if selected < 0 || selected >= len(q.Options) {
		return false, ErrBadSelection
	}

	s.answered = true
	correct = selected == q.CorrectIndex
	if correct {
		s.score++
	}

	s.advance = time.AfterFunc(s.advanceDelay, s.advanceNow)
	return correct, nil
}

// advanceNow fires after the feedback delay. A session closed in the
// meantime is left untouched.
func (s *Session) advanceNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateActive || !s.answered {
		return
	}
	if s.current == len(s.question)-1 {
		s.state = StateFinished
		return
	}
	s.current++
	s.answered = false
}

// activate moves Loading → Active with the validated questions. No-op if the
// session was closed while the pipeline ran.
func (s *Session) activate(questions []Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateLoading {
		return
	}
	s.question = questions
	s.state = StateActive
	s.current = 0
	s.score = 0
}

// fail moves Loading → Failed with the generation error.
func (s *Session) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateLoading {
		return
	}
	s.state = StateFailed
	s.err = err
}

// close tears the session down: the pending advance is canceled and any late
// pipeline result is dropped.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
}
