package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"medboard_backend/internal/llm"
)

const (
	DefaultSpecialty  = "General Medicine"
	DefaultDifficulty = "Intermediate"
)

// GeneratedQuestion is a clinical question as returned by the model.
type GeneratedQuestion struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
	Difficulty    string            `json:"difficulty"`
	Specialty     string            `json:"specialty"`
	Topics        []string          `json:"topics"`

	Usage llm.Usage `json:"-"`
}

// GenerationError reports that no usable question could be produced.
type GenerationError struct {
	Specialty  string
	Difficulty string
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s %s question: %v", e.Difficulty, e.Specialty, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// QuestionGenerator produces a new clinical question. Failures are
// *GenerationError.
type QuestionGenerator interface {
	Generate(ctx context.Context, specialty, difficulty string) (*GeneratedQuestion, error)
}

type LLMQuestionGenerator struct {
	provider llm.Provider
}

func NewQuestionGenerator(provider llm.Provider) *LLMQuestionGenerator {
	return &LLMQuestionGenerator{provider: provider}
}

func (g *LLMQuestionGenerator) Generate(ctx context.Context, specialty, difficulty string) (*GeneratedQuestion, error) {
	specialty = orDefault(specialty, DefaultSpecialty)
	difficulty = orDefault(difficulty, DefaultDifficulty)
	fail := func(err error) error {
		return &GenerationError{Specialty: specialty, Difficulty: difficulty, Err: err}
	}

	req := llm.UserPrompt(generatorSystemPrompt(specialty, difficulty),
		fmt.Sprintf("Generate a %s %s clinical question for medical board exam preparation.", difficulty, specialty))
	req.Schema = clinicalQuestionSchema
	req.Temperature = 0.7
	req.MaxTokens = 1500

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, llm.PurposeGenerate), req)
	if err != nil {
		return nil, fail(err)
	}

	var q GeneratedQuestion
	if err := json.Unmarshal(resp.Content, &q); err != nil {
		return nil, fail(&llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}
	if err := q.check(); err != nil {
		return nil, fail(&llm.ErrInvalidResponse{Content: resp.Content, Err: err})
	}

	q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
	q.Specialty = orDefault(q.Specialty, specialty)
	q.Difficulty = orDefault(q.Difficulty, difficulty)
	q.Usage = resp.Usage
	return &q, nil
}

func (q *GeneratedQuestion) check() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("empty question stem")
	}
	if n := len(q.Options); n < 4 || n > 5 {
		return fmt.Errorf("expected 4-5 options, got %d", n)
	}
	for label, text := range q.Options {
		if !strings.Contains("ABCDE", label) || len(label) != 1 {
			return fmt.Errorf("unexpected option label %q", label)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("option %s is empty", label)
		}
	}
	answer := strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
	if _, ok := q.Options[answer]; !ok {
		return fmt.Errorf("correct answer %q is not one of the options %v", q.CorrectAnswer, optionLabels(q.Options))
	}
	return nil
}

func optionLabels(options map[string]string) []string {
	labels := make([]string, 0, len(options))
	for k := range options {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func generatorSystemPrompt(specialty, difficulty string) string {
	return fmt.Sprintf(`You are a medical education expert creating %s level %s questions for medical board exam preparation.

Write a clinical vignette question with:
- 4-5 answer options labelled A to E
- exactly one correct answer
- a concise explanation of why the answer is correct and the others are not

Respond with JSON containing: question, options (object keyed by option label), correct_answer (the label), explanation, difficulty, specialty, topics (list of strings).`,
		difficulty, specialty)
}

var clinicalQuestionSchema = &llm.Schema{
	Name:        "clinical-question",
	Description: "A multiple-choice clinical question for board exam preparation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
			"options": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"A": map[string]any{"type": "string"},
					"B": map[string]any{"type": "string"},
					"C": map[string]any{"type": "string"},
					"D": map[string]any{"type": "string"},
					"E": map[string]any{"type": "string"},
				},
				"required":             []any{"A", "B", "C", "D"},
				"additionalProperties": false,
			},
			"correct_answer": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D", "E"}},
			"explanation":    map[string]any{"type": "string"},
			"difficulty":     map[string]any{"type": "string"},
			"specialty":      map[string]any{"type": "string"},
			"topics":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"question", "options", "correct_answer", "explanation"},
	},
}
