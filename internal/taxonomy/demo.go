package taxonomy

type demoRow struct {
	category       string
	total, correct int
}

var demoData = map[Dimension][]demoRow{
	Disciplines: {
		{"Cardiology", 25, 20},
		{"Pulmonology", 30, 21},
		{"Biochemistry", 15, 6},
		{"Anatomy", 40, 38},
		{"Pharmacology", 22, 15},
	},
	BodySystems: {
		{"cardiovascular", 28, 22},
		{"respiratory", 19, 13},
		{"neurological", 16, 9},
		{"endocrine", 12, 10},
		{"gastrointestinal", 21, 14},
	},
	Specialties: {
		{"internal_medicine", 35, 27},
		{"pediatrics", 18, 12},
		{"surgery", 14, 8},
		{"psychiatry", 10, 8},
		{"emergency", 20, 15},
	},
	Pathophysiology: {
		{"infectious", 24, 17},
		{"neoplastic", 13, 7},
		{"autoimmune", 9, 6},
		{"metabolic", 17, 12},
		{"genetic", 8, 5},
	},
	QuestionType: {
		{"diagnosis", 45, 33},
		{"treatment", 30, 19},
		{"mechanism", 22, 17},
		{"prevention", 8, 7},
	},
	AgeGroup: {
		{"adult", 60, 44},
		{"elderly", 20, 13},
		{"child", 15, 11},
		{"neonate", 5, 3},
	},
	Acuity: {
		{"life_threatening", 14, 9},
		{"urgent", 26, 18},
		{"routine", 50, 39},
		{"preventive", 10, 8},
	},
}

// DemoStats returns a fixed dataset for groupBy, for exercising clients
// without live answers. Unrecognised selectors get the discipline dataset.
func DemoStats(groupBy string) []CategoryStat {
	rows := demoData[ParseDimension(groupBy)]
	out := make([]CategoryStat, len(rows))
	for i, r := range rows {
		out[i] = CategoryStat{
			Category: r.category,
			Total:    r.total,
			Correct:  r.correct,
			Accuracy: Accuracy(r.correct, r.total),
		}
	}
	return out
}
