package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// Purposes used as metric and log labels.
const (
	PurposeGenerate = "question_generation"
	PurposeTag      = "question_tagging"
	PurposeFeedback = "answer_feedback"
)

// WithPurpose labels the LLM calls made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
