package repository

import (
	"medboard_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

const correctSum = "COALESCE(SUM(CASE WHEN responses.is_correct THEN 1 ELSE 0 END), 0)"

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func (r *ResponseRepository) Create(response *model.Response) error {
	return r.DB.Create(response).Error
}

// ListWithQuestions returns every response of the user paired with its
// question, oldest first. Responses whose question no longer exists are
// skipped.
func (r *ResponseRepository) ListWithQuestions(userID uint) ([]model.AnsweredQuestion, error) {
	return r.listWithQuestions(r.DB.Where("responses.user_id = ?", userID))
}

// ListWithQuestionsSince is ListWithQuestions restricted to responses created
// at or after since.
func (r *ResponseRepository) ListWithQuestionsSince(userID uint, since time.Time) ([]model.AnsweredQuestion, error) {
	return r.listWithQuestions(r.DB.Where("responses.user_id = ? AND responses.created_at >= ?", userID, since))
}

func (r *ResponseRepository) listWithQuestions(scope *gorm.DB) ([]model.AnsweredQuestion, error) {
	var responses []model.Response
	if err := scope.Preload("Question").Order("responses.id ASC").Find(&responses).Error; err != nil {
		return nil, err
	}

	out := make([]model.AnsweredQuestion, 0, len(responses))
	for _, resp := range responses {
		if resp.Question == nil {
			continue
		}
		q := *resp.Question
		resp.Question = nil
		out = append(out, model.AnsweredQuestion{Response: resp, Question: q})
	}
	return out, nil
}

// CountSince returns the user's answered and correct counts since the cutoff.
func (r *ResponseRepository) CountSince(userID uint, since time.Time) (total, correct int64, err error) {
	var row model.CountRow
	err = r.DB.Model(&model.Response{}).
		Select("COUNT(responses.id) AS total, "+correctSum+" AS correct").
		Where("responses.user_id = ? AND responses.created_at >= ?", userID, since).
		Scan(&row).Error
	return row.Total, row.Correct, err
}

// CountByDifficulty groups the user's responses since the cutoff by the
// difficulty of their questions.
func (r *ResponseRepository) CountByDifficulty(userID uint, since time.Time) ([]model.CountRow, error) {
	var rows []model.CountRow
	err := r.DB.Model(&model.Response{}).
		Select("COALESCE(questions.difficulty, '') AS label, COUNT(responses.id) AS total, "+correctSum+" AS correct").
		Joins("JOIN questions ON questions.id = responses.question_id").
		Where("responses.user_id = ? AND responses.created_at >= ?", userID, since).
		Group("questions.difficulty").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

// CountByDay groups the user's responses since the cutoff by calendar day.
// Label holds the date as YYYY-MM-DD.
func (r *ResponseRepository) CountByDay(userID uint, since time.Time) ([]model.CountRow, error) {
	var rows []model.CountRow
	err := r.DB.Model(&model.Response{}).
		Select("DATE(responses.created_at) AS label, COUNT(responses.id) AS total, "+correctSum+" AS correct").
		Where("responses.user_id = ? AND responses.created_at >= ?", userID, since).
		Group("DATE(responses.created_at)").
		Order("label ASC").
		Scan(&rows).Error
	for i := range rows {
		// MySQL returns DATE as a full timestamp when parseTime is on
		if len(rows[i].Label) > 10 {
			rows[i].Label = rows[i].Label[:10]
		}
	}
	return rows, err
}

// UsageSince returns the number of distinct answering users and answers
// since the cutoff.
func (r *ResponseRepository) UsageSince(since time.Time) (activeUsers, answered int64, err error) {
	var row struct {
		ActiveUsers int64
		Answered    int64
	}
	err = r.DB.Model(&model.Response{}).
		Select("COUNT(DISTINCT responses.user_id) AS active_users, COUNT(responses.id) AS answered").
		Where("responses.created_at >= ?", since).
		Scan(&row).Error
	return row.ActiveUsers, row.Answered, err
}

// PopularDisciplines ranks legacy question disciplines by answers since the
// cutoff.
func (r *ResponseRepository) PopularDisciplines(since time.Time, limit int) ([]model.DisciplineUsage, error) {
	var rows []model.DisciplineUsage
	err := r.DB.Model(&model.Response{}).
		Select("COALESCE(questions.discipline, 'General Medicine') AS discipline, COUNT(responses.id) AS usage_count").
		Joins("JOIN questions ON questions.id = responses.question_id").
		Where("responses.created_at >= ?", since).
		Group("questions.discipline").
		Order("usage_count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
