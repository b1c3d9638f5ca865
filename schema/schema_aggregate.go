package schema

// CategoryPoints holds total and done story points for one category.
type CategoryPoints struct {
	Total float64 `json:"total"`
	Done  float64 `json:"done"`
}

// IterationAggregate is the per-iteration rollup every report builds on.
type IterationAggregate struct {
	IterationIndex int                         `json:"iterationIndex"` // 1-based
	IterationName  string                      `json:"iterationName,omitempty"`
	Start          string                      `json:"start"`
	End            string                      `json:"end"`
	WorkingDays    int                         `json:"workingDays"`
	TotalPoints    float64                     `json:"totalPoints"`
	DonePoints     float64                     `json:"donePoints"`
	CategoryPoints map[Category]CategoryPoints `json:"categoryPoints"`
	PlannedPoints  float64                     `json:"plannedPoints"`
}
