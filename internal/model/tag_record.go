package model

// TagRecord is the classification of a question along the seven taxonomy
// dimensions. It is never stored on its own; ApplyTags flattens it into the
// question's columns.
type TagRecord struct {
	Disciplines     []string `json:"disciplines"`
	BodySystems     []string `json:"body_systems"`
	Specialties     []string `json:"specialties"`
	Pathophysiology []string `json:"pathophysiology"`
	QuestionType    *string  `json:"question_type"`
	AgeGroup        *string  `json:"age_group"`
	Acuity          *string  `json:"acuity"`
}

// DefaultTagRecord is used whenever a question cannot be classified.
func DefaultTagRecord() TagRecord {
	return TagRecord{
		Disciplines:     []string{"general_medicine"},
		BodySystems:     []string{"general"},
		Specialties:     []string{"internal_medicine"},
		Pathophysiology: []string{},
		QuestionType:    strPtr("diagnosis"),
		AgeGroup:        strPtr("adult"),
		Acuity:          strPtr("routine"),
	}
}

// Validate fills list fields that were not supplied with empty lists.
// Scalar fields stay nil when absent.
func (t TagRecord) Validate() TagRecord {
	if t.Disciplines == nil {
		t.Disciplines = []string{}
	}
	if t.BodySystems == nil {
		t.BodySystems = []string{}
	}
	if t.Specialties == nil {
		t.Specialties = []string{}
	}
	if t.Pathophysiology == nil {
		t.Pathophysiology = []string{}
	}
	return t
}

func strPtr(s string) *string {
	return &s
}
