package service

import (
	"context"
	"time"

	"medboard_backend/internal/model"
	"medboard_backend/pkg/logger"

	"go.uber.org/zap"
)

type UntaggedQuestionStore interface {
	FindUntagged(limit int) ([]model.Question, error)
	UpdateTags(question *model.Question) error
}

// BackfillTagger classifies a question and reports whether the result came
// from the backend rather than the default record.
type BackfillTagger interface {
	Classify(ctx context.Context, content string, options map[string]string) (model.TagRecord, bool)
}

// AutoTaggingService 定时扫描未分类的题目，调用分类器补全分类字段并写回数据库
type AutoTaggingService struct {
	questions UntaggedQuestionStore
	tagger    BackfillTagger
	batchSize int
	pause     time.Duration
}

func NewAutoTaggingService(questions UntaggedQuestionStore, tagger BackfillTagger) *AutoTaggingService {
	return &AutoTaggingService{
		questions: questions,
		tagger:    tagger,
		batchSize: 50,
		pause:     time.Second,
	}
}

// RunAutoTagging tags one batch of untagged questions and returns how many
// were updated. A question whose classification fell back to the default
// record is left untagged so its legacy discipline still applies.
func (s *AutoTaggingService) RunAutoTagging(ctx context.Context) int {
	questions, err := s.questions.FindUntagged(s.batchSize)
	if err != nil {
		logger.Log.Error("查询未分类题目失败", zap.Error(err))
		return 0
	}
	if len(questions) == 0 {
		return 0
	}

	logger.Log.Info("开始为题目自动分类", zap.Int("count", len(questions)))

	tagged, skipped := 0, 0
	for i := range questions {
		if ctx.Err() != nil {
			break
		}

		q := &questions[i]
		if s.tagOne(ctx, q) {
			tagged++
		} else {
			skipped++
		}

		// 避免 AI API 限流
		if s.pause > 0 && i < len(questions)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(s.pause):
			}
		}
	}

	logger.Log.Info("题目自动分类完成",
		zap.Int("tagged", tagged),
		zap.Int("skipped", skipped),
		zap.Int("total", len(questions)))
	return tagged
}

func (s *AutoTaggingService) tagOne(ctx context.Context, q *model.Question) bool {
	tags, ok := s.tagger.Classify(ctx, q.Content, q.OptionMap())
	if !ok {
		logger.Log.Debug("分类失败，保留题目原有学科", zap.Uint("id", q.ID))
		return false
	}

	q.ApplyTags(tags)
	if err := s.questions.UpdateTags(q); err != nil {
		logger.Log.Warn("更新题目分类失败", zap.Uint("id", q.ID), zap.Error(err))
		return false
	}
	return true
}
