package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medboard_backend/internal/model"
	"medboard_backend/internal/util"
	"medboard_backend/pkg/logger"
	"medboard_backend/pkg/monitoring"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Provisioning tiers, used as metric and log labels.
const (
	SourceGenerated = "generated"
	SourceExisting  = "existing"
	SourceFallback  = "fallback"
)

type QuestionStore interface {
	Create(question *model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByDiscipline(discipline string) (*model.Question, error)
	Vote(id uint, up bool) (*model.Question, error)
}

type ResponseStore interface {
	Create(response *model.Response) error
}

type QuestionTagger interface {
	Tag(ctx context.Context, content string, options map[string]string) model.TagRecord
}

type SummaryInvalidator interface {
	InvalidateUser(userID uint) error
}

type QuestionService struct {
	questions QuestionStore
	responses ResponseStore
	generator QuestionGenerator
	tagger    QuestionTagger
	evaluator AnswerEvaluator
	cache     SummaryInvalidator
	log       *zap.Logger
}

func NewQuestionService(
	questions QuestionStore,
	responses ResponseStore,
	generator QuestionGenerator,
	tagger QuestionTagger,
	evaluator AnswerEvaluator,
	cache SummaryInvalidator,
) *QuestionService {
	return &QuestionService{
		questions: questions,
		responses: responses,
		generator: generator,
		tagger:    tagger,
		evaluator: evaluator,
		cache:     cache,
		log:       logger.Log,
	}
}

// ProvideQuestion returns a persisted question for the requested specialty.
// It tries, in order: a freshly generated and tagged question, a stored
// question whose legacy discipline matches, and a tagged canned question.
// Only a failure to persist the canned question is returned, as
// util.ErrServiceUnavailable.
func (s *QuestionService) ProvideQuestion(ctx context.Context, specialty, difficulty string, userID uint) (*model.Question, error) {
	specialty = orDefault(specialty, DefaultSpecialty)
	difficulty = orDefault(difficulty, DefaultDifficulty)
	log := s.log.With(
		zap.Uint("user_id", userID),
		zap.String("specialty", specialty),
		zap.String("difficulty", difficulty))

	generated, err := s.generator.Generate(ctx, specialty, difficulty)
	if err == nil {
		q := questionFromGenerated(generated, specialty, difficulty)
		q.ApplyTags(s.tagger.Tag(ctx, q.Content, generated.Options))
		if err := s.questions.Create(q); err != nil {
			log.Error("failed to save generated question", zap.Error(err))
		} else {
			s.served(log, SourceGenerated, q, generated.Usage.TotalTokens)
			return q, nil
		}
	} else {
		log.Warn("question generation failed, falling back to stored questions", zap.Error(err))
	}

	existing, err := s.questions.FindByDiscipline(specialty)
	if err == nil {
		s.served(log, SourceExisting, existing, 0)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("stored question lookup failed", zap.Error(err))
	}

	q := cannedQuestion(specialty, difficulty)
	q.ApplyTags(s.tagger.Tag(ctx, q.Content, q.OptionMap()))
	if err := s.questions.Create(q); err != nil {
		log.Error("failed to save fallback question", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", util.ErrServiceUnavailable, err)
	}
	s.served(log, SourceFallback, q, 0)
	return q, nil
}

func (s *QuestionService) served(log *zap.Logger, source string, q *model.Question, tokens int) {
	monitoring.QuestionProvisionCounter.WithLabelValues(source).Inc()
	log.Info("analytics event",
		zap.String("event", "question_generation"),
		zap.String("source", source),
		zap.Uint("question_id", q.ID),
		zap.Int("tokens_used", tokens))
}

// SubmitAnswer grades and stores a user's answer and attaches feedback.
func (s *QuestionService) SubmitAnswer(ctx context.Context, userID, questionID uint, answer string) (*model.AnswerResult, error) {
	q, err := s.questions.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	answer = strings.TrimSpace(answer)
	isCorrect := grade(q, answer)
	feedback := s.evaluator.Feedback(ctx, q, answer)

	resp := &model.Response{
		UserID:     userID,
		QuestionID: q.ID,
		UserAnswer: answer,
		IsCorrect:  isCorrect,
		Feedback:   &feedback,
	}
	if err := s.responses.Create(resp); err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}

	if err := s.cache.InvalidateUser(userID); err != nil {
		s.log.Warn("failed to invalidate analytics cache", zap.Uint("user_id", userID), zap.Error(err))
	}

	s.log.Info("analytics event",
		zap.String("event", "answer_submission"),
		zap.Uint("user_id", userID),
		zap.Uint("question_id", q.ID),
		zap.Boolp("is_correct", isCorrect))

	return &model.AnswerResult{
		ResponseID:    resp.ID,
		QuestionID:    q.ID,
		UserAnswer:    answer,
		IsCorrect:     isCorrect,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Feedback:      resp.Feedback,
	}, nil
}

// Vote records an up or down vote on a question.
func (s *QuestionService) Vote(questionID uint, direction string) (*model.VoteResult, error) {
	var up bool
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "up":
		up = true
	case "down":
	default:
		return nil, util.ErrInvalidVote
	}

	q, err := s.questions.Vote(questionID, up)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return &model.VoteResult{QuestionID: q.ID, Upvotes: q.Upvotes, Downvotes: q.Downvotes}, nil
}

// grade compares option labels case-insensitively. Questions without an
// answer key grade as unknown.
func grade(q *model.Question, answer string) *bool {
	key := strings.TrimSpace(q.CorrectAnswer)
	if key == "" {
		return nil
	}
	ok := strings.EqualFold(answer, key)
	return &ok
}

// ToQuestionView hides the answer key.
func ToQuestionView(q *model.Question) model.QuestionView {
	var view model.QuestionView
	if err := copier.Copy(&view, q); err != nil {
		logger.Log.Warn("question view copy failed", zap.Uint("question_id", q.ID), zap.Error(err))
		view.ID, view.Content = q.ID, q.Content
	}
	view.Options = q.OptionMap()
	view.Topics, _ = q.Topics.Decode()
	if view.Topics == nil {
		view.Topics = []string{}
	}
	view.Tags = q.Tags()
	return view
}

func questionFromGenerated(g *GeneratedQuestion, specialty, difficulty string) *model.Question {
	discipline := specialty
	q := &model.Question{
		Content:       g.Question,
		CorrectAnswer: g.CorrectAnswer,
		Explanation:   g.Explanation,
		Difficulty:    orDefault(g.Difficulty, difficulty),
		Discipline:    &discipline,
		Topics:        model.NewEncodedList(g.Topics),
	}
	q.SetOptions(g.Options)
	return q
}

func cannedQuestion(specialty, difficulty string) *model.Question {
	discipline := specialty
	q := &model.Question{
		Content: fmt.Sprintf(
			"A patient is referred to the %s service with a new presenting complaint. "+
				"Vital signs are stable and no prior workup is available. "+
				"What is the most appropriate first step in management?", specialty),
		CorrectAnswer: "A",
		Explanation: "A focused history and physical examination guides every later decision. " +
			"Imaging, empiric therapy and referral are chosen based on what it reveals.",
		Difficulty: difficulty,
		Discipline: &discipline,
		Topics:     model.NewEncodedList([]string{specialty, "clinical reasoning"}),
	}
	q.SetOptions(map[string]string{
		"A": "Take a focused history and perform a physical examination",
		"B": "Order whole-body imaging before seeing the patient",
		"C": "Start empiric broad-spectrum treatment",
		"D": "Refer the patient to another specialty without assessment",
	})
	return q
}
