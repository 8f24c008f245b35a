package model

import "time"

// QuestionView is a question as served to a student: the answer key and
// explanation are withheld until an answer is submitted.
type QuestionView struct {
	ID           uint              `json:"id"`
	Content      string            `json:"content"`
	Options      map[string]string `json:"options" copier:"-"`
	Difficulty   string            `json:"difficulty,omitempty"`
	Discipline   *string           `json:"discipline,omitempty"`
	Topics       []string          `json:"topics" copier:"-"`
	Tags         TagRecord         `json:"tags" copier:"-"`
	QuestionType *string           `json:"questionType,omitempty"`
	AgeGroup     *string           `json:"ageGroup,omitempty"`
	Acuity       *string           `json:"acuity,omitempty"`
	Upvotes      int               `json:"upvotes"`
	Downvotes    int               `json:"downvotes"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// AnswerResult is returned after an answer is graded.
type AnswerResult struct {
	ResponseID    uint    `json:"responseId"`
	QuestionID    uint    `json:"questionId"`
	UserAnswer    string  `json:"userAnswer"`
	IsCorrect     *bool   `json:"isCorrect"`
	CorrectAnswer string  `json:"correctAnswer,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
	Feedback      *string `json:"feedback,omitempty"`
}

// VoteResult carries a question's counters after a vote.
type VoteResult struct {
	QuestionID uint `json:"questionId"`
	Upvotes    int  `json:"upvotes"`
	Downvotes  int  `json:"downvotes"`
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID         uint       `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
