package model

// CountRow is a grouped (label, answered, correct) tally read from the
// responses table.
type CountRow struct {
	Label   string
	Total   int64
	Correct int64
}

// DailyActivity 每日答题情况
type DailyActivity struct {
	Date              string  `json:"date"`
	QuestionsAnswered int64   `json:"questions_answered"`
	CorrectAnswers    int64   `json:"correct_answers"`
	Accuracy          float64 `json:"accuracy"`
}

// LabelPerformance is a percent-accuracy breakdown entry.
type LabelPerformance struct {
	Label    string  `json:"label"`
	Total    int64   `json:"total"`
	Correct  int64   `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// PerformanceReport 用户答题表现报告；Accuracy 为百分比，保留一位小数
type PerformanceReport struct {
	UserID                uint               `json:"user_id"`
	PeriodDays            int                `json:"period_days"`
	TotalQuestions        int64              `json:"total_questions"`
	CorrectAnswers        int64              `json:"correct_answers"`
	OverallAccuracy       float64            `json:"overall_accuracy"`
	DisciplinePerformance []LabelPerformance `json:"discipline_performance"`
	DifficultyPerformance []LabelPerformance `json:"difficulty_performance"`
	DailyActivity         []DailyActivity    `json:"daily_activity"`
	Error                 string             `json:"error,omitempty"`
}

// DisciplineUsage 学科使用次数
type DisciplineUsage struct {
	Discipline string `json:"discipline"`
	UsageCount int64  `json:"usage_count"`
}

// SystemUsage 系统使用统计
type SystemUsage struct {
	PeriodDays             int               `json:"period_days"`
	ActiveUsers            int64             `json:"active_users"`
	TotalQuestionsAnswered int64             `json:"total_questions_answered"`
	AvgQuestionsPerUser    float64           `json:"avg_questions_per_user"`
	PopularDisciplines     []DisciplineUsage `json:"popular_disciplines"`
}
