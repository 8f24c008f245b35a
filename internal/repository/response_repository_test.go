package repository

import (
	"testing"
	"time"

	"medboard_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseRepository_ListWithQuestions(t *testing.T) {
	db := newTestDB(t)
	repo := NewResponseRepository(db)

	cardio := seedQuestion(t, db, model.Question{Disciplines: model.NewEncodedList([]string{"Cardiology"})})
	legacy := seedQuestion(t, db, model.Question{Discipline: strPtr("Biochemistry")})

	seedResponse(t, db, 1, cardio.ID, boolPtr(true), time.Time{})
	seedResponse(t, db, 1, legacy.ID, boolPtr(false), time.Time{})
	seedResponse(t, db, 2, cardio.ID, boolPtr(true), time.Time{})

	pairs, err := repo.ListWithQuestions(1)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, cardio.ID, pairs[0].Question.ID)
	assert.True(t, pairs[0].Response.Correct())
	assert.Equal(t, "Biochemistry", *pairs[1].Question.Discipline)
	assert.False(t, pairs[1].Response.Correct())
	assert.Nil(t, pairs[0].Response.Question)

	none, err := repo.ListWithQuestions(99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestResponseRepository_SkipsDeletedQuestions(t *testing.T) {
	db := newTestDB(t)
	repo := NewResponseRepository(db)

	q := seedQuestion(t, db, model.Question{})
	seedResponse(t, db, 1, q.ID, boolPtr(true), time.Time{})
	require.NoError(t, db.Delete(&model.Question{}, q.ID).Error)

	pairs, err := repo.ListWithQuestions(1)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestResponseRepository_UserStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewResponseRepository(db)

	now := time.Now()
	easy := seedQuestion(t, db, model.Question{Difficulty: "Easy"})
	hard := seedQuestion(t, db, model.Question{Difficulty: "Hard"})

	seedResponse(t, db, 1, easy.ID, boolPtr(true), now.Add(-1*time.Hour))
	seedResponse(t, db, 1, easy.ID, boolPtr(false), now.Add(-2*time.Hour))
	seedResponse(t, db, 1, hard.ID, nil, now.Add(-26*time.Hour))
	seedResponse(t, db, 1, hard.ID, boolPtr(true), now.Add(-40*24*time.Hour))

	since := now.Add(-30 * 24 * time.Hour)

	total, correct, err := repo.CountSince(1, since)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.EqualValues(t, 1, correct)

	byDifficulty, err := repo.CountByDifficulty(1, since)
	require.NoError(t, err)
	require.Len(t, byDifficulty, 2)
	assert.Equal(t, model.CountRow{Label: "Easy", Total: 2, Correct: 1}, byDifficulty[0])
	assert.Equal(t, model.CountRow{Label: "Hard", Total: 1, Correct: 0}, byDifficulty[1])

	days, err := repo.CountByDay(1, since)
	require.NoError(t, err)
	var answered int64
	for _, d := range days {
		assert.Len(t, d.Label, 10)
		answered += d.Total
	}
	assert.EqualValues(t, 3, answered)

	recent, err := repo.ListWithQuestionsSince(1, since)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestResponseRepository_SystemUsage(t *testing.T) {
	db := newTestDB(t)
	repo := NewResponseRepository(db)

	now := time.Now()
	cardio := seedQuestion(t, db, model.Question{Discipline: strPtr("Cardiology")})
	neuro := seedQuestion(t, db, model.Question{Discipline: strPtr("Neurology")})
	untagged := seedQuestion(t, db, model.Question{})

	seedResponse(t, db, 1, cardio.ID, boolPtr(true), now)
	seedResponse(t, db, 2, cardio.ID, boolPtr(true), now)
	seedResponse(t, db, 2, neuro.ID, boolPtr(false), now)
	seedResponse(t, db, 3, untagged.ID, boolPtr(false), now)
	seedResponse(t, db, 4, neuro.ID, boolPtr(false), now.Add(-90*24*time.Hour))

	since := now.Add(-30 * 24 * time.Hour)

	users, answered, err := repo.UsageSince(since)
	require.NoError(t, err)
	assert.EqualValues(t, 3, users)
	assert.EqualValues(t, 4, answered)

	popular, err := repo.PopularDisciplines(since, 10)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, model.DisciplineUsage{Discipline: "Cardiology", UsageCount: 2}, popular[0])

	top, err := repo.PopularDisciplines(since, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
