package repository

import (
	"testing"
	"time"

	"medboard_backend/internal/model"
	"medboard_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection, otherwise every connection gets its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func seedQuestion(t *testing.T, db *gorm.DB, q model.Question) model.Question {
	t.Helper()
	if q.Content == "" {
		q.Content = "A 54-year-old man presents with chest pain."
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

func seedResponse(t *testing.T, db *gorm.DB, userID, questionID uint, correct *bool, at time.Time) model.Response {
	t.Helper()
	r := model.Response{UserID: userID, QuestionID: questionID, UserAnswer: "A", IsCorrect: correct}
	if !at.IsZero() {
		r.CreatedAt = at
		r.UpdatedAt = at
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}
