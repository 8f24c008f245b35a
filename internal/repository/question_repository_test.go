package repository

import (
	"testing"

	"medboard_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestQuestionRepository_CreateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)

	q := &model.Question{
		Content:       "Which drug reverses heparin?",
		CorrectAnswer: "B",
		Difficulty:    "Intermediate",
		Discipline:    strPtr("Pharmacology"),
		Topics:        model.NewEncodedList([]string{"anticoagulation"}),
	}
	q.SetOptions(map[string]string{"A": "Vitamin K", "B": "Protamine sulfate", "C": "FFP", "D": "Idarucizumab"})
	q.ApplyTags(model.DefaultTagRecord())
	require.NoError(t, repo.Create(q))

	loaded, err := repo.FindByID(q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Protamine sulfate", loaded.OptionMap()["B"])
	labels, err := loaded.DisciplineLabels()
	require.NoError(t, err)
	assert.Equal(t, []string{"general_medicine"}, labels)
	assert.Equal(t, "routine", *loaded.Acuity)
	assert.True(t, loaded.IsTagged())
}

func TestQuestionRepository_MalformedListLoads(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)

	q := seedQuestion(t, db, model.Question{
		Disciplines: model.EncodedList{Raw: "Cardiology, Pharmacology", Valid: true},
	})

	loaded, err := repo.FindByID(q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology, Pharmacology", loaded.Disciplines.Raw)
	_, err = loaded.Disciplines.Decode()
	assert.Error(t, err)
}

func TestQuestionRepository_FindByDiscipline(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)

	first := seedQuestion(t, db, model.Question{Discipline: strPtr("Cardiology")})
	seedQuestion(t, db, model.Question{Discipline: strPtr("Cardiology")})
	seedQuestion(t, db, model.Question{Discipline: strPtr("Neurology")})

	found, err := repo.FindByDiscipline("Cardiology")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = repo.FindByDiscipline("Dermatology")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuestionRepository_Vote(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	q := seedQuestion(t, db, model.Question{})

	_, err := repo.Vote(q.ID, true)
	require.NoError(t, err)
	updated, err := repo.Vote(q.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Upvotes)
	assert.Equal(t, 1, updated.Downvotes)

	_, err = repo.Vote(q.ID+100, true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuestionRepository_UntaggedAndUpdateTags(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)

	untagged := seedQuestion(t, db, model.Question{Discipline: strPtr("Anatomy")})
	tagged := model.Question{Content: "tagged"}
	tagged.ApplyTags(model.DefaultTagRecord())
	seedQuestion(t, db, tagged)

	pending, err := repo.FindUntagged(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, untagged.ID, pending[0].ID)

	pending[0].ApplyTags(model.TagRecord{Disciplines: []string{"anatomy"}}.Validate())
	require.NoError(t, repo.UpdateTags(&pending[0]))

	pending, err = repo.FindUntagged(10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	loaded, err := repo.FindByID(untagged.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anatomy", *loaded.Discipline)
	labels, _ := loaded.DisciplineLabels()
	assert.Equal(t, []string{"anatomy"}, labels)
}
