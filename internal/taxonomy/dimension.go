// Package taxonomy groups answered questions by medical taxonomy dimension and
// computes per-category accuracy.
package taxonomy

import "strings"

// Dimension is one of the classification axes questions can be grouped by.
type Dimension string

const (
	Disciplines     Dimension = "disciplines"
	BodySystems     Dimension = "body_systems"
	Specialties     Dimension = "specialties"
	Pathophysiology Dimension = "pathophysiology"
	QuestionType    Dimension = "question_type"
	AgeGroup        Dimension = "age_group"
	Acuity          Dimension = "acuity"
)

// DefaultDimension is used for empty or unrecognised selectors.
const DefaultDimension = Disciplines

// Dimensions lists every supported dimension.
var Dimensions = []Dimension{
	Disciplines, BodySystems, Specialties, Pathophysiology, QuestionType, AgeGroup, Acuity,
}

var fallbackLabels = map[Dimension]string{
	Disciplines:     "General Medicine",
	BodySystems:     "General",
	Specialties:     "General Medicine",
	Pathophysiology: "Unknown",
	QuestionType:    "Unknown",
	AgeGroup:        "Unknown",
	Acuity:          "Unknown",
}

// ParseDimension maps a selector to a Dimension. Anything unrecognised,
// including the empty string, resolves to DefaultDimension.
func ParseDimension(s string) Dimension {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fallbackLabels[d]; ok {
		return d
	}
	return DefaultDimension
}

// FallbackLabel is the category a question falls into when it carries no
// usable label for the dimension.
func (d Dimension) FallbackLabel() string {
	if label, ok := fallbackLabels[d]; ok {
		return label
	}
	return fallbackLabels[DefaultDimension]
}

// MultiValued reports whether the dimension is stored as an encoded list.
func (d Dimension) MultiValued() bool {
	switch d {
	case Disciplines, BodySystems, Specialties, Pathophysiology:
		return true
	}
	return false
}
