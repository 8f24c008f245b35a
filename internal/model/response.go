package model

// Response is a user's answer to one question. Rows are written once at
// submission time and never updated.
type Response struct {
	BaseModel
	UserID     uint      `gorm:"not null;index" json:"userId"`
	QuestionID uint      `gorm:"not null;index" json:"questionId"`
	Question   *Question `gorm:"foreignKey:QuestionID" json:"-"`
	UserAnswer string    `gorm:"type:text;not null" json:"userAnswer"`
	IsCorrect  *bool     `json:"isCorrect"`
	Feedback   *string   `gorm:"type:text" json:"feedback,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

// Correct reports whether the response is known to be correct.
func (r *Response) Correct() bool {
	return r.IsCorrect != nil && *r.IsCorrect
}

// AnsweredQuestion pairs a response with the question it answers.
type AnsweredQuestion struct {
	Response Response
	Question Question
}
