package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/studybuddy-ai/studybuddy/internal/content"
	"github.com/studybuddy-ai/studybuddy/internal/progress"
	"github.com/studybuddy-ai/studybuddy/internal/quiz"
)

// server holds the handler dependencies.
type server struct {
	store   *content.Store
	quizzes *quiz.Service
	ready   func(r *http.Request) error
}

// newMux creates the HTTP router.
func newMux(s *server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /subjects", s.handleListSubjects)
	mux.HandleFunc("POST /subjects", s.handleCreateSubject)
	mux.HandleFunc("DELETE /subjects/{id}", s.handleDeleteSubject)
	mux.HandleFunc("POST /subjects/{id}/topics", s.handleAddTopic)
	mux.HandleFunc("POST /subjects/{id}/topics/{topicID}/toggle", s.handleToggleTopic)
	mux.HandleFunc("POST /subjects/{id}/topics/{topicID}/attachments", s.handleAddAttachment)

	mux.HandleFunc("GET /progress", s.handleProgress)
	mux.HandleFunc("GET /progress/report", s.handleProgressReport)

	mux.HandleFunc("POST /quiz/start", s.handleStartQuiz)
	mux.HandleFunc("GET /quiz/{session}", s.handleGetQuiz)
	mux.HandleFunc("POST /quiz/{session}/answer", s.handleAnswerQuiz)
	mux.HandleFunc("DELETE /quiz/{session}", s.handleCloseQuiz)

	return mux
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Subjects())
}

func (s *server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Color  string `json:"color"`
		Topics []struct {
			Title    string `json:"title"`
			Category string `json:"category"`
		} `json:"topics"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	drafts := make([]content.TopicDraft, 0, len(req.Topics))
	for _, t := range req.Topics {
		drafts = append(drafts, content.TopicDraft{
			Title:    t.Title,
			Category: content.Category(t.Category),
		})
	}

	subj, err := s.store.CreateSubject(r.Context(), req.Name, drafts)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Color != "" {
		if subj, err = s.store.SetSubjectColor(r.Context(), subj.ID, req.Color); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, subj)
}

func (s *server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSubject(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAddTopic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Category string `json:"category"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	subj, err := s.store.AddTopic(r.Context(), r.PathValue("id"), req.Title, content.Category(req.Category))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subj)
}

func (s *server) handleToggleTopic(w http.ResponseWriter, r *http.Request) {
	subj, err := s.store.ToggleTopicCompletion(r.Context(), r.PathValue("id"), r.PathValue("topicID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subj)
}

func (s *server) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		MimeType string `json:"mimeType"`
		Payload  string `json:"payload"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	kind := content.InferKind(req.Name, req.MimeType)
	subj, err := s.store.AddAttachment(r.Context(), r.PathValue("id"), r.PathValue("topicID"), req.Name, kind, req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subj)
}

func (s *server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, progress.ForAll(s.store.Subjects()))
}

func (s *server) handleProgressReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	if err := progress.WriteReport(w, progress.ForAll(s.store.Subjects())); err != nil {
		slog.Error("writing progress report", "error", err)
	}
}

func (s *server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID string `json:"subjectId"`
		TopicID   string `json:"topicId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := s.quizzes.StartQuiz(r.Context(), req.SubjectID, req.TopicID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionView(session))
}

func (s *server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	session, ok := s.quizzes.Session(r.PathValue("session"))
	if !ok {
		writeError(w, content.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *server) handleAnswerQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Selected int `json:"selected"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	correct, err := s.quizzes.SubmitAnswer(r.PathValue("session"), req.Selected)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"correct": correct})
}

func (s *server) handleCloseQuiz(w http.ResponseWriter, r *http.Request) {
	s.quizzes.CloseQuiz(r.PathValue("session"))
	w.WriteHeader(http.StatusNoContent)
}

// quizView is the wire shape of a session. The correct answer index is kept
// server side; clients learn correctness from the answer response.
type quizView struct {
	ID       string   `json:"id"`
	State    string   `json:"state"`
	Question *string  `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Index    int      `json:"index"`
	Score    int      `json:"score"`
	Total    int      `json:"total"`
	Error    string   `json:"error,omitempty"`
}

func sessionView(session *quiz.Session) quizView {
	v := quizView{
		ID:    session.ID(),
		State: session.State().String(),
	}
	v.Score, v.Total = session.Score()
	if q, index, ok := session.Current(); ok {
		v.Question = &q.Prompt
		v.Options = q.Options
		v.Index = index
	}
	if err := session.Err(); err != nil {
		v.Error = err.Error()
	}
	return v
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, content.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, quiz.ErrNoContext):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, quiz.ErrBadSelection):
		status = http.StatusBadRequest
	case errors.Is(err, quiz.ErrNotActive), errors.Is(err, quiz.ErrAlreadyAnswered):
		status = http.StatusConflict
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
