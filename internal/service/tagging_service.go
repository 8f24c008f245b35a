package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"medboard_backend/internal/config"
	"medboard_backend/internal/llm"
	"medboard_backend/internal/model"
	"medboard_backend/pkg/logger"

	"go.uber.org/zap"
)

// Closed vocabularies the classifier may choose from.
var (
	TagDisciplines = []string{
		"anatomy", "physiology", "biochemistry", "pharmacology", "pathology",
		"microbiology", "immunology", "histology", "embryology", "genetics",
		"biostatistics", "ethics", "behavioral_sciences",
	}
	TagBodySystems = []string{
		"cardiovascular", "respiratory", "gastrointestinal", "genitourinary",
		"neurological", "musculoskeletal", "endocrine", "integumentary",
		"hematologic", "reproductive", "immune", "sensory",
	}
	TagSpecialties = []string{
		"internal_medicine", "surgery", "pediatrics", "ob_gyn", "psychiatry",
		"emergency", "family_medicine", "radiology", "pathology", "anesthesiology",
		"dermatology", "ophthalmology", "orthopedics", "neurology", "cardiology",
	}
	TagQuestionTypes = []string{
		"diagnosis", "treatment", "mechanism", "prevention", "prognosis",
		"anatomy", "normal_vs_abnormal",
	}
	TagAgeGroups       = []string{"neonate", "infant", "child", "adolescent", "adult", "elderly"}
	TagAcuity          = []string{"life_threatening", "urgent", "semi_urgent", "routine", "preventive"}
	TagPathophysiology = []string{
		"infectious", "neoplastic", "autoimmune", "genetic", "metabolic",
		"degenerative", "traumatic", "toxic", "congenital", "iatrogenic",
	}
)

// TaggingBackend classifies question text into a tag record.
type TaggingBackend interface {
	TagQuestion(ctx context.Context, content string, options map[string]string) (model.TagRecord, error)
	Name() string
}

const (
	BackendRemoteLLM = "remote_llm"
	BackendLocalLLM  = "local_llm"
)

// ErrLocalTaggerNotImplemented is returned by LocalLLMTagger for every question.
var ErrLocalTaggerNotImplemented = errors.New("local LLM tagging not implemented")

// NewTaggingBackend resolves the configured backend. Called once at startup.
func NewTaggingBackend(cfg config.TaggingConfig, provider llm.Provider) TaggingBackend {
	switch cfg.Backend {
	case BackendLocalLLM:
		return &LocalLLMTagger{Endpoint: cfg.LocalEndpoint}
	default:
		return &RemoteLLMTagger{Provider: provider}
	}
}

// TaggingService applies a backend and never fails: any backend error yields
// the default record.
type TaggingService struct {
	backend TaggingBackend
}

func NewTaggingService(backend TaggingBackend) *TaggingService {
	return &TaggingService{backend: backend}
}

func (s *TaggingService) Tag(ctx context.Context, content string, options map[string]string) model.TagRecord {
	tags, _ := s.Classify(ctx, content, options)
	return tags
}

// Classify is Tag that also reports whether the backend produced the record.
// ok is false when the default record stands in for a failed backend.
func (s *TaggingService) Classify(ctx context.Context, content string, options map[string]string) (model.TagRecord, bool) {
	tags, err := s.backend.TagQuestion(ctx, content, options)
	if err != nil {
		logger.Log.Warn("question tagging failed, using default tags",
			zap.String("backend", s.backend.Name()),
			zap.Error(err))
		return model.DefaultTagRecord(), false
	}
	return tags.Validate(), true
}

// Backend returns the backend chosen at startup.
func (s *TaggingService) Backend() string {
	return s.backend.Name()
}

const maxTagsPerField = 3

// RemoteLLMTagger asks a hosted model to classify the question.
type RemoteLLMTagger struct {
	Provider llm.Provider
}

func (t *RemoteLLMTagger) Name() string { return BackendRemoteLLM }

func (t *RemoteLLMTagger) TagQuestion(ctx context.Context, content string, options map[string]string) (model.TagRecord, error) {
	optionsText := "None"
	if len(options) > 0 {
		b, err := json.Marshal(options)
		if err != nil {
			return model.TagRecord{}, err
		}
		optionsText = string(b)
	}

	req := llm.UserPrompt(taggingSystemPrompt,
		fmt.Sprintf("Question: %s\n\nOptions: %s\n\nCategorize this medical question:", content, optionsText))
	req.Schema = tagSchema
	req.Temperature = 0.1
	req.MaxTokens = 500

	resp, err := t.Provider.Generate(llm.WithPurpose(ctx, llm.PurposeTag), req)
	if err != nil {
		return model.TagRecord{}, err
	}

	var tags model.TagRecord
	if err := json.Unmarshal(resp.Content, &tags); err != nil {
		return model.TagRecord{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	tags.Disciplines = firstN(tags.Disciplines, maxTagsPerField)
	tags.BodySystems = firstN(tags.BodySystems, maxTagsPerField)
	tags.Specialties = firstN(tags.Specialties, maxTagsPerField)
	tags.Pathophysiology = firstN(tags.Pathophysiology, maxTagsPerField)
	return tags, nil
}

// LocalLLMTagger is a placeholder for an on-premises model. Every question
// fails with ErrLocalTaggerNotImplemented, so TaggingService answers with the
// default record.
type LocalLLMTagger struct {
	Endpoint string
}

func (t *LocalLLMTagger) Name() string { return BackendLocalLLM }

func (t *LocalLLMTagger) TagQuestion(context.Context, string, map[string]string) (model.TagRecord, error) {
	return model.TagRecord{}, fmt.Errorf("%w (endpoint %s)", ErrLocalTaggerNotImplemented, t.Endpoint)
}

var taggingSystemPrompt = fmt.Sprintf(`You are a medical education expert who categorizes board exam questions.
Classify the question along these dimensions, choosing only from the listed values:

disciplines: %s
body_systems: %s
specialties: %s
question_type: %s
age_group: %s
acuity: %s
pathophysiology: %s

Rules:
- Use 1-3 items for each list field.
- Use null for question_type, age_group or acuity when it does not apply.
- Use an empty list when no value of a list field applies.
- Omit a field you cannot judge.
- Respond with JSON only.`,
	strings.Join(TagDisciplines, ", "),
	strings.Join(TagBodySystems, ", "),
	strings.Join(TagSpecialties, ", "),
	strings.Join(TagQuestionTypes, ", "),
	strings.Join(TagAgeGroups, ", "),
	strings.Join(TagAcuity, ", "),
	strings.Join(TagPathophysiology, ", "),
)

// tagSchema constrains values, not presence: a partial classification is kept
// and TagRecord.Validate fills the missing lists.
var tagSchema = &llm.Schema{
	Name:        "question-tags",
	Description: "Taxonomy classification of a medical exam question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"disciplines":     enumList(TagDisciplines),
			"body_systems":    enumList(TagBodySystems),
			"specialties":     enumList(TagSpecialties),
			"pathophysiology": enumList(TagPathophysiology),
			"question_type":   nullableEnum(TagQuestionTypes),
			"age_group":       nullableEnum(TagAgeGroups),
			"acuity":          nullableEnum(TagAcuity),
		},
		"additionalProperties": false,
	},
}

func enumList(values []string) map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "enum": toAny(values)},
	}
}

func nullableEnum(values []string) map[string]any {
	return map[string]any{
		"type": []any{"string", "null"},
		"enum": append(toAny(values), nil),
	}
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
