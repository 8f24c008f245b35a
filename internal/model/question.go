package model

import (
	"strings"

	"gorm.io/datatypes"
)

// swagger:model Question
type Question struct {
	BaseModel
	Content       string            `gorm:"type:text;not null" json:"content"`
	Options       datatypes.JSONMap `json:"options,omitempty"`
	CorrectAnswer string            `gorm:"size:16" json:"correctAnswer,omitempty"`
	Explanation   string            `gorm:"type:text" json:"explanation,omitempty"`
	Difficulty    string            `gorm:"size:50;index" json:"difficulty,omitempty"`

	// Discipline is the legacy single-valued category. Newer rows carry
	// Disciplines instead; see DisciplineLabels.
	Discipline *string     `gorm:"size:255;index" json:"discipline,omitempty"`
	Topics     EncodedList `json:"topics"`

	Disciplines     EncodedList `json:"disciplines"`
	BodySystems     EncodedList `json:"bodySystems"`
	Specialties     EncodedList `json:"specialties"`
	Pathophysiology EncodedList `json:"pathophysiology"`
	QuestionType    *string     `gorm:"size:50" json:"questionType,omitempty"`
	AgeGroup        *string     `gorm:"size:50" json:"ageGroup,omitempty"`
	Acuity          *string     `gorm:"size:50" json:"acuity,omitempty"`

	Upvotes   int `gorm:"default:0" json:"upvotes"`
	Downvotes int `gorm:"default:0" json:"downvotes"`
}

func (Question) TableName() string {
	return "questions"
}

// DisciplineLabels returns the multi-valued discipline form of the question.
// The structured field wins when it decodes to a non-empty list; otherwise the
// legacy scalar is lifted into a singleton list. The result is empty only when
// neither field carries a value. A decode error is returned alongside the
// legacy fallback so callers can report it; it never replaces the result.
func (q *Question) DisciplineLabels() ([]string, error) {
	items, err := q.Disciplines.Decode()
	if err == nil && hasNonBlank(items) {
		return items, nil
	}
	if q.Discipline != nil && strings.TrimSpace(*q.Discipline) != "" {
		return []string{*q.Discipline}, err
	}
	return nil, err
}

func hasNonBlank(items []string) bool {
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// OptionMap returns the answer options as label -> text.
func (q *Question) OptionMap() map[string]string {
	if len(q.Options) == 0 {
		return nil
	}
	out := make(map[string]string, len(q.Options))
	for k, v := range q.Options {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// SetOptions stores label -> text options.
func (q *Question) SetOptions(options map[string]string) {
	if len(options) == 0 {
		q.Options = nil
		return
	}
	m := make(datatypes.JSONMap, len(options))
	for k, v := range options {
		m[k] = v
	}
	q.Options = m
}

// ApplyTags flattens a tag record into the structured taxonomy columns.
func (q *Question) ApplyTags(tags TagRecord) {
	q.Disciplines = NewEncodedList(tags.Disciplines)
	q.BodySystems = NewEncodedList(tags.BodySystems)
	q.Specialties = NewEncodedList(tags.Specialties)
	q.Pathophysiology = NewEncodedList(tags.Pathophysiology)
	q.QuestionType = tags.QuestionType
	q.AgeGroup = tags.AgeGroup
	q.Acuity = tags.Acuity
}

// IsTagged reports whether any structured taxonomy column is populated.
func (q *Question) IsTagged() bool {
	return !q.Disciplines.IsAbsent() || !q.BodySystems.IsAbsent() ||
		!q.Specialties.IsAbsent() || !q.Pathophysiology.IsAbsent() ||
		q.QuestionType != nil || q.AgeGroup != nil || q.Acuity != nil
}

// Tags rebuilds the tag record from the stored columns. Columns that fail to
// decode come back as empty lists.
func (q *Question) Tags() TagRecord {
	decode := func(l EncodedList) []string {
		items, err := l.Decode()
		if err != nil {
			return nil
		}
		return items
	}
	return TagRecord{
		Disciplines:     decode(q.Disciplines),
		BodySystems:     decode(q.BodySystems),
		Specialties:     decode(q.Specialties),
		Pathophysiology: decode(q.Pathophysiology),
		QuestionType:    q.QuestionType,
		AgeGroup:        q.AgeGroup,
		Acuity:          q.Acuity,
	}.Validate()
}
