package taxonomy

import (
	"strings"

	"medboard_backend/internal/model"

	"go.uber.org/zap"
)

// Extractor reads the category labels of a question for one dimension.
type Extractor struct {
	log *zap.Logger
}

// NewExtractor returns an Extractor reporting malformed data to log.
// A nil logger discards diagnostics.
func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Extract returns the labels of q under dim. The result is never empty: a
// question without usable labels gets the dimension's fallback label.
// Malformed stored lists are reported and treated as absent.
func (e *Extractor) Extract(q *model.Question, dim Dimension) []string {
	dim = ParseDimension(string(dim))

	var labels []string
	var err error
	switch dim {
	case Disciplines:
		labels, err = q.DisciplineLabels()
	case BodySystems:
		labels, err = q.BodySystems.Decode()
	case Specialties:
		labels, err = q.Specialties.Decode()
	case Pathophysiology:
		labels, err = q.Pathophysiology.Decode()
	case QuestionType:
		labels = scalarLabel(q.QuestionType)
	case AgeGroup:
		labels = scalarLabel(q.AgeGroup)
	case Acuity:
		labels = scalarLabel(q.Acuity)
	}

	if err != nil {
		e.log.Warn("malformed taxonomy field, using fallback",
			zap.Uint("question_id", q.ID),
			zap.String("dimension", string(dim)),
			zap.Error(err),
		)
	}

	labels = cleanLabels(labels)
	if len(labels) == 0 {
		return []string{dim.FallbackLabel()}
	}
	return labels
}

func scalarLabel(v *string) []string {
	if v == nil {
		return nil
	}
	return []string{*v}
}

// cleanLabels trims labels, drops blanks and repeats, keeping first-seen order.
func cleanLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
