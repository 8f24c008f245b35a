package taxonomy

import "medboard_backend/internal/model"

// CategoryStat is the accuracy of one user's answers within one category.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    int     `json:"total_answered"`
	Correct  int     `json:"correct_count"`
	Accuracy float64 `json:"accuracy"`
}

// Accuracy returns correct/total, or 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// Aggregator accumulates per-category statistics over answered questions.
// It performs no I/O.
type Aggregator struct {
	extractor *Extractor
}

func NewAggregator(extractor *Extractor) *Aggregator {
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	return &Aggregator{extractor: extractor}
}

// Aggregate groups answers by the categories of their questions under groupBy.
// A response counts in full toward every label its question carries. Output
// follows the order in which categories were first seen.
func (a *Aggregator) Aggregate(answers []model.AnsweredQuestion, groupBy string) []CategoryStat {
	dim := ParseDimension(groupBy)

	stats := make([]CategoryStat, 0)
	index := make(map[string]int)

	for i := range answers {
		correct := answers[i].Response.Correct()
		for _, label := range a.extractor.Extract(&answers[i].Question, dim) {
			pos, ok := index[label]
			if !ok {
				pos = len(stats)
				index[label] = pos
				stats = append(stats, CategoryStat{Category: label})
			}
			stats[pos].Total++
			if correct {
				stats[pos].Correct++
			}
		}
	}

	for i := range stats {
		stats[i].Accuracy = Accuracy(stats[i].Correct, stats[i].Total)
	}
	return stats
}
