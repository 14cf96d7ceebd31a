package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/studybuddy-ai/studybuddy/internal/ai"
)

// DefaultQuestionCount is how many questions the pipeline asks the service
// for. The service may return fewer; the pipeline never pads.
const DefaultQuestionCount = 5

// Question is one validated multiple-choice question: exactly four distinct
// options and one correct index.
type Question struct {
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctAnswer"`
}

// Failure reasons for GenerationError, so callers can tell "the service is
// unreachable" apart from "the service returned unusable output".
const (
	ReasonService        = "service"
	ReasonInvalidPayload = "invalid-payload"
)

// GenerationError reports a failed quiz generation. A malformed batch is
// rejected wholesale; the pipeline never returns a partial result.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("quiz generation failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator is the single-shot generative service call the pipeline depends
// on. *ai.Router satisfies it.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (ai.Response, error)
}

// questionSchema is the structural contract the untrusted service response
// must satisfy. Everything crossing this boundary is attacker-indistinguishable
// free text until it passes.
const questionSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["question", "options", "correctAnswer"],
		"properties": {
			"question": {"type": "string", "minLength": 1},
			"options": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 4,
				"maxItems": 4
			},
			"correctAnswer": {"type": "integer", "minimum": 0, "maximum": 3}
		}
	}
}`

// Pipeline turns an extracted context into validated questions via an
// external generative service.
type Pipeline struct {
	gen    Generator
	cache  *Cache
	count  int
	model  string
	schema *gojsonschema.Schema
}

// PipelineConfig holds pipeline dependencies. Cache and Model are optional.
type PipelineConfig struct {
	Generator Generator
	Cache     *Cache
	Count     int // questions to request (default 5)
	Model     string
}

// NewPipeline creates a generation pipeline.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	count := cfg.Count
	if count == 0 {
		count = DefaultQuestionCount
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(questionSchema))
	if err != nil {
		return nil, fmt.Errorf("compile question schema: %w", err)
	}

	return &Pipeline{
		gen:    cfg.Generator,
		cache:  cfg.Cache,
		count:  count,
		model:  cfg.Model,
		schema: schema,
	}, nil
}

// Generate produces 1..count validated questions from the given context, or
// a GenerationError. topicID keys the optional cache.
func (p *Pipeline) Generate(ctx context.Context, topicID, quizContext string) ([]Question, error) {
	if strings.TrimSpace(quizContext) == "" {
		return nil, &GenerationError{Reason: ReasonInvalidPayload, Err: fmt.Errorf("empty context")}
	}

	if p.cache != nil {
		if questions, ok := p.cache.Get(ctx, topicID, quizContext); ok {
			slog.Debug("quiz cache hit", "topic_id", topicID, "questions", len(questions))
			return questions, nil
		}
	}

	resp, err := p.gen.Generate(ctx, ai.Request{
		Prompt: p.buildPrompt(quizContext),
		Model:  p.model,
	})
	if err != nil {
		return nil, &GenerationError{Reason: ReasonService, Err: err}
	}

	questions, err := p.parse(resp.Content)
	if err != nil {
		slog.Warn("service returned unusable quiz payload", "topic_id", topicID, "error", err)
		return nil, &GenerationError{Reason: ReasonInvalidPayload, Err: err}
	}

	if p.cache != nil {
		p.cache.Put(ctx, topicID, quizContext, questions)
	}

	slog.Info("quiz generated", "topic_id", topicID, "questions", len(questions), "model", resp.Model)
	return questions, nil
}

func (p *Pipeline) buildPrompt(quizContext string) string {
	return fmt.Sprintf(`Based on the following study notes, generate a %d-question multiple choice quiz.
Return ONLY a raw JSON array (no markdown formatting).
Format:
[
  {
    "question": "Question text here?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": 0
  }
]
correctAnswer is the index of the correct option (0-3).

Notes Content:
%s`, p.count, quizContext)
}

// parse validates the raw service response and decodes it. Any violation
// rejects the whole batch.
func (p *Pipeline) parse(raw string) ([]Question, error) {
	cleaned := stripFences(raw)

	result, err := p.schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("response violates question schema: %s", describeViolations(result))
	}

	var questions []Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	// The schema language cannot express option distinctness.
	for i, q := range questions {
		seen := map[string]bool{}
		for _, opt := range q.Options {
			if seen[opt] {
				return nil, fmt.Errorf("question %d has duplicate option %q", i, opt)
			}
			seen[opt] = true
		}
	}

	if len(questions) > p.count {
		questions = questions[:p.count]
	}
	return questions, nil
}

// stripFences removes markdown code-fence markers and any prose around the
// JSON array. The service is instructed to return only a raw array but is
// not contractually guaranteed to.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

func describeViolations(result *gojsonschema.Result) string {
	var parts []string
	for _, e := range result.Errors() {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
