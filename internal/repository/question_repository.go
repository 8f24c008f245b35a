package repository

import (
	"medboard_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.DB.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// FindByDiscipline returns the oldest question whose legacy discipline equals
// discipline, or gorm.ErrRecordNotFound.
func (r *QuestionRepository) FindByDiscipline(discipline string) (*model.Question, error) {
	var question model.Question
	err := r.DB.Where("discipline = ?", discipline).Order("id ASC").First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// Vote increments the up- or down-vote counter.
func (r *QuestionRepository) Vote(id uint, up bool) (*model.Question, error) {
	column := "downvotes"
	if up {
		column = "upvotes"
	}

	res := r.DB.Model(&model.Question{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(id)
}

// FindUntagged returns up to limit questions with no structured taxonomy.
func (r *QuestionRepository) FindUntagged(limit int) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.
		Where("disciplines IS NULL AND body_systems IS NULL AND specialties IS NULL AND pathophysiology IS NULL").
		Where("question_type IS NULL AND age_group IS NULL AND acuity IS NULL").
		Order("id ASC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

// UpdateTags writes only the taxonomy columns of question.
func (r *QuestionRepository) UpdateTags(question *model.Question) error {
	return r.DB.Model(question).
		Select("disciplines", "body_systems", "specialties", "pathophysiology", "question_type", "age_group", "acuity").
		Updates(question).Error
}
