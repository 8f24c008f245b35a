package controller

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medboard_backend/internal/llm"
	"medboard_backend/internal/model"
	"medboard_backend/internal/repository"
	"medboard_backend/internal/service"
	"medboard_backend/internal/util"
	"medboard_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const generatedQuestion = `{
	"question": "A 58-year-old man has crushing substernal chest pain for 40 minutes. ECG shows ST elevation in II, III and aVF. Which artery is most likely occluded?",
	"options": {"A": "Right coronary artery", "B": "Left anterior descending artery", "C": "Left circumflex artery", "D": "Left main coronary artery"},
	"correct_answer": "A",
	"explanation": "Inferior leads reflect the territory of the right coronary artery in most patients.",
	"difficulty": "Hard",
	"specialty": "Cardiology",
	"topics": ["myocardial infarction", "ECG"]
}`

const tagReply = `{
	"disciplines": ["physiology", "pathology"],
	"body_systems": ["cardiovascular"],
	"specialties": ["cardiology", "emergency"],
	"pathophysiology": ["degenerative"],
	"question_type": "diagnosis",
	"age_group": "adult",
	"acuity": "life_threatening"
}`

type harness struct {
	router *gin.Engine
	sqlDB  *sql.DB
	llm    *llm.MockProvider
}

func newHarness(t *testing.T, replies ...llm.MockResponse) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.Models()...))

	provider := llm.NewMockProvider(replies...)
	questions := repository.NewQuestionRepository(db)
	responses := repository.NewResponseRepository(db)
	cache := repository.NewAnalyticsCacheRepository(nil, 0)
	tagging := service.NewTaggingService(&service.RemoteLLMTagger{Provider: provider})

	qc := NewQuestionController(service.NewQuestionService(
		questions, responses,
		service.NewQuestionGenerator(provider),
		tagging,
		service.NewFeedbackService(provider),
		cache,
	))
	ac := NewAnalyticsController(service.NewAnalyticsService(responses, cache))

	router := gin.New()
	authed := router.Group("/", func(c *gin.Context) {
		c.Set("user", &util.Claims{UserID: 7, Email: "student@example.edu"})
	})
	authed.GET("/question", qc.GetQuestion)
	authed.POST("/answer", qc.SubmitAnswer)
	authed.GET("/summary", ac.GetSummary)
	authed.GET("/system-stats", ac.GetSystemStats)
	authed.GET("/detailed", ac.GetDetailed)
	router.GET("/anonymous/question", qc.GetQuestion)

	return &harness{router: router, sqlDB: sqlDB, llm: provider}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, util.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func dataAs[T any](t *testing.T, data any) T {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestGetQuestion_Generated(t *testing.T) {
	h := newHarness(t, llm.MockJSON(generatedQuestion), llm.MockJSON(tagReply))

	w, resp := h.do(t, http.MethodGet, "/question?specialty=Cardiology&difficulty=Hard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := dataAs[model.QuestionView](t, resp.Data)
	assert.Contains(t, view.Content, "ST elevation")
	assert.Len(t, view.Options, 4)
	assert.Equal(t, []string{"myocardial infarction", "ECG"}, view.Topics)
	assert.Equal(t, []string{"physiology", "pathology"}, view.Tags.Disciplines)
	require.NotNil(t, view.Acuity)
	assert.Equal(t, "life_threatening", *view.Acuity)
	assert.NotContains(t, w.Body.String(), "correctAnswer")

	// one generation call, one tagging call
	assert.Equal(t, 2, h.llm.CallCount())
	assert.Equal(t, 0.7, h.llm.Calls[0].Temperature)
	assert.Equal(t, 0.1, h.llm.Calls[1].Temperature)
}

func TestSubmitAnswer_WithFeedback(t *testing.T) {
	h := newHarness(t,
		llm.MockJSON(generatedQuestion),
		llm.MockJSON(tagReply),
		llm.MockResponse{Content: json.RawMessage("Inferior STEMI points to the RCA. Review coronary territories.")},
	)

	_, resp := h.do(t, http.MethodGet, "/question", nil)
	view := dataAs[model.QuestionView](t, resp.Data)

	w, resp := h.do(t, http.MethodPost, "/answer", SubmitAnswerRequest{QuestionID: view.ID, UserAnswer: "b"})
	require.Equal(t, http.StatusOK, w.Code)

	result := dataAs[model.AnswerResult](t, resp.Data)
	require.NotNil(t, result.IsCorrect)
	assert.False(t, *result.IsCorrect)
	assert.Equal(t, "A", result.CorrectAnswer)
	require.NotNil(t, result.Feedback)
	assert.Contains(t, *result.Feedback, "coronary territories")

	w, resp = h.do(t, http.MethodGet, "/summary?group_by=body_systems", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := dataAs[[]map[string]any](t, resp.Data)
	require.Len(t, stats, 1)
	assert.Equal(t, "cardiovascular", stats[0]["category"])
	assert.EqualValues(t, 1, stats[0]["total_answered"])
	assert.EqualValues(t, 0, stats[0]["correct_count"])
}

func TestGetQuestion_Unauthenticated(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodGet, "/anonymous/question", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, h.llm.CallCount())
}

func TestStorageDown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sqlDB.Close())

	w, resp := h.do(t, http.MethodGet, "/question", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, util.ErrServiceUnavailable.Error(), resp.Message)

	w, _ = h.do(t, http.MethodGet, "/summary", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = h.do(t, http.MethodGet, "/system-stats", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// the detailed report degrades in-band
	w, resp = h.do(t, http.MethodGet, "/detailed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := dataAs[model.PerformanceReport](t, resp.Data)
	assert.NotEmpty(t, report.Error)
	assert.NotNil(t, report.DailyActivity)
}

func TestSummary_DemoData(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.sqlDB.Close())

	w, resp := h.do(t, http.MethodGet, "/summary?useTestData=true&group_by=specialties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, dataAs[[]map[string]any](t, resp.Data))
}
