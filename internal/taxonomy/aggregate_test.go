package taxonomy

import (
	"testing"

	"medboard_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func list(items ...string) model.EncodedList { return model.NewEncodedList(items) }

func answer(q model.Question, correct *bool) model.AnsweredQuestion {
	return model.AnsweredQuestion{
		Response: model.Response{QuestionID: q.ID, IsCorrect: correct},
		Question: q,
	}
}

func byCategory(stats []CategoryStat) map[string]CategoryStat {
	out := make(map[string]CategoryStat, len(stats))
	for _, s := range stats {
		out[s.Category] = s
	}
	return out
}

func TestAggregate_SingleLabelPerQuestion(t *testing.T) {
	cardio := model.Question{Disciplines: list("Cardiology")}
	cardio.ID = 1
	biochem := model.Question{Disciplines: list("Biochemistry")}
	biochem.ID = 2

	answers := []model.AnsweredQuestion{
		answer(cardio, boolPtr(true)),
		answer(cardio, boolPtr(true)),
		answer(cardio, boolPtr(false)),
		answer(biochem, boolPtr(true)),
	}

	stats := NewAggregator(nil).Aggregate(answers, "disciplines")
	require.Len(t, stats, 2)

	got := byCategory(stats)
	assert.Equal(t, 3, got["Cardiology"].Total)
	assert.Equal(t, 2, got["Cardiology"].Correct)
	assert.InDelta(t, 0.667, got["Cardiology"].Accuracy, 0.001)
	assert.Equal(t, 1, got["Biochemistry"].Total)
	assert.Equal(t, 1, got["Biochemistry"].Correct)
	assert.Equal(t, 1.0, got["Biochemistry"].Accuracy)
}

func TestAggregate_FansOutAcrossLabels(t *testing.T) {
	q := model.Question{Disciplines: list("Cardiology", "Pharmacology")}

	stats := NewAggregator(nil).Aggregate([]model.AnsweredQuestion{answer(q, boolPtr(true))}, "disciplines")

	assert.Equal(t, []CategoryStat{
		{Category: "Cardiology", Total: 1, Correct: 1, Accuracy: 1},
		{Category: "Pharmacology", Total: 1, Correct: 1, Accuracy: 1},
	}, stats)
}

func TestAggregate_EachResponseCountsOncePerLabel(t *testing.T) {
	q := model.Question{Specialties: list("surgery", "emergency", "pediatrics")}
	answers := []model.AnsweredQuestion{
		answer(q, boolPtr(true)),
		answer(q, boolPtr(false)),
		answer(q, nil),
	}

	stats := NewAggregator(nil).Aggregate(answers, "specialties")
	require.Len(t, stats, 3)
	for _, s := range stats {
		assert.Equal(t, 3, s.Total, s.Category)
		assert.Equal(t, 1, s.Correct, s.Category)
	}
}

// k is the number of distinct labels: a label repeated on one question
// counts once per response.
func TestAggregate_RepeatedLabelCountsOnce(t *testing.T) {
	q := model.Question{Disciplines: list("Cardiology", " Cardiology", "Pharmacology", "Cardiology")}

	stats := NewAggregator(nil).Aggregate([]model.AnsweredQuestion{answer(q, boolPtr(true))}, "disciplines")

	assert.Equal(t, []CategoryStat{
		{Category: "Cardiology", Total: 1, Correct: 1, Accuracy: 1},
		{Category: "Pharmacology", Total: 1, Correct: 1, Accuracy: 1},
	}, stats)
}

func TestAggregate_UnknownDimensionFallsBackToDisciplines(t *testing.T) {
	legacy := model.Question{Discipline: strPtr("Cardiology")}
	tagged := model.Question{Disciplines: list("Anatomy"), BodySystems: list("respiratory")}
	answers := []model.AnsweredQuestion{
		answer(legacy, boolPtr(true)),
		answer(tagged, boolPtr(false)),
	}

	agg := NewAggregator(nil)
	assert.Equal(t, agg.Aggregate(answers, "disciplines"), agg.Aggregate(answers, "bogus_dimension"))
	assert.Equal(t, agg.Aggregate(answers, "disciplines"), agg.Aggregate(answers, ""))
}

func TestAggregate_UntaggedQuestionsUseFallbackLabel(t *testing.T) {
	q := model.Question{}
	answers := []model.AnsweredQuestion{answer(q, boolPtr(true)), answer(q, boolPtr(false))}

	agg := NewAggregator(nil)
	for _, dim := range Dimensions {
		stats := agg.Aggregate(answers, string(dim))
		require.Len(t, stats, 1, dim)
		assert.Equal(t, dim.FallbackLabel(), stats[0].Category, dim)
		assert.Equal(t, 2, stats[0].Total, dim)
		assert.Equal(t, 1, stats[0].Correct, dim)
		assert.Equal(t, 0.5, stats[0].Accuracy, dim)
	}
}

func TestAggregate_MalformedFieldDoesNotAbort(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	agg := NewAggregator(NewExtractor(zap.New(core)))

	broken := model.Question{
		Disciplines: model.EncodedList{Raw: "Cardiology, Pharmacology", Valid: true},
		Discipline:  strPtr("Cardiology"),
	}
	broken.ID = 7
	fine := model.Question{Disciplines: list("Anatomy")}

	stats := agg.Aggregate([]model.AnsweredQuestion{
		answer(broken, boolPtr(true)),
		answer(fine, boolPtr(true)),
	}, "disciplines")

	assert.Equal(t, []string{"Cardiology", "Anatomy"}, []string{stats[0].Category, stats[1].Category})
	assert.Equal(t, 1, logs.FilterMessage("malformed taxonomy field, using fallback").Len())
}

func TestAggregate_InsertionOrderAndIdempotence(t *testing.T) {
	q1 := model.Question{BodySystems: list("renal", "endocrine")}
	q2 := model.Question{BodySystems: list("cardiovascular", "renal")}
	answers := []model.AnsweredQuestion{
		answer(q1, boolPtr(false)),
		answer(q2, boolPtr(true)),
		answer(q1, boolPtr(true)),
	}

	agg := NewAggregator(nil)
	first := agg.Aggregate(answers, "body_systems")
	second := agg.Aggregate(answers, "body_systems")

	assert.Equal(t, first, second)
	assert.Equal(t, "renal", first[0].Category)
	assert.Equal(t, "endocrine", first[1].Category)
	assert.Equal(t, "cardiovascular", first[2].Category)
	assert.Equal(t, 3, first[0].Total)
	assert.Equal(t, 2, first[0].Correct)
}

func TestAggregate_ScalarDimensions(t *testing.T) {
	q1 := model.Question{QuestionType: strPtr("treatment"), AgeGroup: strPtr("child"), Acuity: strPtr("urgent")}
	q2 := model.Question{QuestionType: strPtr("treatment")}
	answers := []model.AnsweredQuestion{answer(q1, boolPtr(true)), answer(q2, boolPtr(false))}

	agg := NewAggregator(nil)

	byType := agg.Aggregate(answers, "question_type")
	assert.Equal(t, []CategoryStat{{Category: "treatment", Total: 2, Correct: 1, Accuracy: 0.5}}, byType)

	byAge := byCategory(agg.Aggregate(answers, "age_group"))
	assert.Equal(t, 1, byAge["child"].Total)
	assert.Equal(t, 1, byAge["Unknown"].Total)

	byAcuity := byCategory(agg.Aggregate(answers, "ACUITY"))
	assert.Equal(t, 1, byAcuity["urgent"].Correct)
	assert.Equal(t, 0, byAcuity["Unknown"].Correct)
}

func TestAggregate_Empty(t *testing.T) {
	stats := NewAggregator(nil).Aggregate(nil, "disciplines")
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(0, 0))
	assert.Equal(t, 0.0, Accuracy(3, 0))
	assert.Equal(t, 0.25, Accuracy(1, 4))
}

func TestDemoStats(t *testing.T) {
	for _, dim := range Dimensions {
		stats := DemoStats(string(dim))
		require.NotEmpty(t, stats, dim)
		for _, s := range stats {
			assert.LessOrEqual(t, s.Correct, s.Total)
			assert.Equal(t, Accuracy(s.Correct, s.Total), s.Accuracy)
		}
	}

	demo := DemoStats("unknown")
	assert.Equal(t, DemoStats("disciplines"), demo)
	assert.Equal(t, "Cardiology", demo[0].Category)
	assert.Equal(t, 0.8, demo[0].Accuracy)
}
