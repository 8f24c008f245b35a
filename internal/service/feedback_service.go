package service

import (
	"context"
	"fmt"
	"strings"

	"medboard_backend/internal/llm"
	"medboard_backend/internal/model"
	"medboard_backend/pkg/logger"

	"go.uber.org/zap"
)

const fallbackFeedback = "Unable to generate personalized feedback at this time."

const feedbackSystemPrompt = "You are a medical educator providing feedback on student answers. Be encouraging but precise in your feedback."

// AnswerEvaluator writes short feedback on a submitted answer.
type AnswerEvaluator interface {
	Feedback(ctx context.Context, question *model.Question, userAnswer string) string
}

type FeedbackService struct {
	provider llm.Provider
}

func NewFeedbackService(provider llm.Provider) *FeedbackService {
	return &FeedbackService{provider: provider}
}

// Feedback never fails; provider errors produce a fixed sentence.
func (s *FeedbackService) Feedback(ctx context.Context, question *model.Question, userAnswer string) string {
	prompt := fmt.Sprintf(`Question: %s

Correct Answer: %s

Student Answer: %s

Explanation: %s

Provide brief, constructive feedback on the student's answer in 2-3 sentences.`,
		question.Content, orDefault(question.CorrectAnswer, "Not provided"), userAnswer,
		orDefault(question.Explanation, "Not provided"))

	req := llm.UserPrompt(feedbackSystemPrompt, prompt)
	req.Temperature = 0.3
	req.MaxTokens = 300

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeFeedback), req)
	if err != nil {
		logger.Log.Warn("answer feedback failed", zap.Uint("question_id", question.ID), zap.Error(err))
		return fallbackFeedback
	}

	text := strings.TrimSpace(string(resp.Content))
	if text == "" {
		return fallbackFeedback
	}
	return text
}
