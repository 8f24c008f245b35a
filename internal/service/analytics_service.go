package service

import (
	"fmt"
	"math"
	"time"

	"medboard_backend/internal/model"
	"medboard_backend/internal/taxonomy"
	"medboard_backend/internal/util"
	"medboard_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	defaultReportDays  = 30
	dailyActivityDays  = 7
	popularDisciplineN = 10
)

type AnswerHistoryStore interface {
	ListWithQuestions(userID uint) ([]model.AnsweredQuestion, error)
	ListWithQuestionsSince(userID uint, since time.Time) ([]model.AnsweredQuestion, error)
	CountSince(userID uint, since time.Time) (total, correct int64, err error)
	CountByDifficulty(userID uint, since time.Time) ([]model.CountRow, error)
	CountByDay(userID uint, since time.Time) ([]model.CountRow, error)
	UsageSince(since time.Time) (activeUsers, answered int64, err error)
	PopularDisciplines(since time.Time, limit int) ([]model.DisciplineUsage, error)
}

// SummaryCache stores summaries per user generation. InvalidateUser starts a
// new generation, so a summary computed under an older one is never served.
type SummaryCache interface {
	SummaryVersion(userID uint) (int64, error)
	GetSummary(userID uint, version int64, dim taxonomy.Dimension) ([]taxonomy.CategoryStat, bool)
	SetSummary(userID uint, version int64, dim taxonomy.Dimension, stats []taxonomy.CategoryStat) error
	InvalidateUser(userID uint) error
}

type AnalyticsService struct {
	history    AnswerHistoryStore
	cache      SummaryCache
	aggregator *taxonomy.Aggregator
	log        *zap.Logger
	now        func() time.Time
}

func NewAnalyticsService(history AnswerHistoryStore, cache SummaryCache) *AnalyticsService {
	return &AnalyticsService{
		history:    history,
		cache:      cache,
		aggregator: taxonomy.NewAggregator(taxonomy.NewExtractor(logger.Log)),
		log:        logger.Log,
		now:        time.Now,
	}
}

// Summary returns the user's accuracy per category of groupBy, in order of
// first appearance. Unrecognised selectors group by discipline. With useDemo
// a fixed dataset is returned without touching storage.
func (s *AnalyticsService) Summary(userID uint, groupBy string, useDemo bool) ([]taxonomy.CategoryStat, error) {
	dim := taxonomy.ParseDimension(groupBy)
	if useDemo {
		return taxonomy.DemoStats(string(dim)), nil
	}

	// the generation is read before the answers so that an answer stored in
	// between invalidates what is computed here
	version, verr := s.cache.SummaryVersion(userID)
	if verr == nil {
		if stats, ok := s.cache.GetSummary(userID, version, dim); ok {
			return stats, nil
		}
	}

	answers, err := s.history.ListWithQuestions(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAnalyticsUnavailable, err)
	}

	stats := s.aggregator.Aggregate(answers, string(dim))
	if verr != nil {
		s.log.Warn("analytics cache unavailable", zap.Uint("user_id", userID), zap.Error(verr))
		return stats, nil
	}
	if err := s.cache.SetSummary(userID, version, dim, stats); err != nil {
		s.log.Warn("failed to cache analytics summary",
			zap.Uint("user_id", userID),
			zap.String("group_by", string(dim)),
			zap.Error(err))
	}
	return stats, nil
}

// Detailed builds the user's performance report over the last days days.
// Storage failures produce an empty report carrying the error message.
func (s *AnalyticsService) Detailed(userID uint, days int) model.PerformanceReport {
	if days <= 0 {
		days = defaultReportDays
	}
	report, err := s.detailed(userID, days)
	if err != nil {
		s.log.Error("failed to build performance report", zap.Uint("user_id", userID), zap.Error(err))
		return model.PerformanceReport{
			UserID:                userID,
			PeriodDays:            days,
			DisciplinePerformance: []model.LabelPerformance{},
			DifficultyPerformance: []model.LabelPerformance{},
			DailyActivity:         []model.DailyActivity{},
			Error:                 err.Error(),
		}
	}
	return report
}

func (s *AnalyticsService) detailed(userID uint, days int) (model.PerformanceReport, error) {
	now := s.now()
	since := now.AddDate(0, 0, -days)

	report := model.PerformanceReport{UserID: userID, PeriodDays: days}

	total, correct, err := s.history.CountSince(userID, since)
	if err != nil {
		return report, fmt.Errorf("count responses: %w", err)
	}
	report.TotalQuestions = total
	report.CorrectAnswers = correct
	report.OverallAccuracy = percent(correct, total)

	answers, err := s.history.ListWithQuestionsSince(userID, since)
	if err != nil {
		return report, fmt.Errorf("list responses: %w", err)
	}
	report.DisciplinePerformance = make([]model.LabelPerformance, 0)
	for _, st := range s.aggregator.Aggregate(answers, string(taxonomy.Disciplines)) {
		report.DisciplinePerformance = append(report.DisciplinePerformance, model.LabelPerformance{
			Label:    st.Category,
			Total:    int64(st.Total),
			Correct:  int64(st.Correct),
			Accuracy: percent(int64(st.Correct), int64(st.Total)),
		})
	}

	byDifficulty, err := s.history.CountByDifficulty(userID, since)
	if err != nil {
		return report, fmt.Errorf("count by difficulty: %w", err)
	}
	report.DifficultyPerformance = make([]model.LabelPerformance, 0, len(byDifficulty))
	for _, row := range byDifficulty {
		label := row.Label
		if label == "" {
			label = DefaultDifficulty
		}
		report.DifficultyPerformance = append(report.DifficultyPerformance, model.LabelPerformance{
			Label:    label,
			Total:    row.Total,
			Correct:  row.Correct,
			Accuracy: percent(row.Correct, row.Total),
		})
	}

	byDay, err := s.history.CountByDay(userID, now.AddDate(0, 0, -dailyActivityDays))
	if err != nil {
		return report, fmt.Errorf("count by day: %w", err)
	}
	report.DailyActivity = make([]model.DailyActivity, 0, len(byDay))
	for _, row := range byDay {
		report.DailyActivity = append(report.DailyActivity, model.DailyActivity{
			Date:              row.Label,
			QuestionsAnswered: row.Total,
			CorrectAnswers:    row.Correct,
			Accuracy:          percent(row.Correct, row.Total),
		})
	}
	return report, nil
}

// SystemStats summarises usage across all users over the last days days.
func (s *AnalyticsService) SystemStats(days int) (*model.SystemUsage, error) {
	if days <= 0 {
		days = defaultReportDays
	}
	since := s.now().AddDate(0, 0, -days)

	active, answered, err := s.history.UsageSince(since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAnalyticsUnavailable, err)
	}
	popular, err := s.history.PopularDisciplines(since, popularDisciplineN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAnalyticsUnavailable, err)
	}
	if popular == nil {
		popular = []model.DisciplineUsage{}
	}

	usage := &model.SystemUsage{
		PeriodDays:             days,
		ActiveUsers:            active,
		TotalQuestionsAnswered: answered,
		PopularDisciplines:     popular,
	}
	if active > 0 {
		usage.AvgQuestionsPerUser = round1(float64(answered) / float64(active))
	}
	return usage, nil
}

// percent is accuracy as a percentage with one decimal.
func percent(correct, total int64) float64 {
	return round1(taxonomy.Accuracy(int(correct), int(total)) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
