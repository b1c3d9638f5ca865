package schema

// CategoryProgress is the cumulative view of one category through an iteration.
type CategoryProgress struct {
	Total           float64 `json:"total"`
	CumulativeDone  float64 `json:"cumulativeDone"`
	Planned         float64 `json:"planned"`
	PlannedProgress float64 `json:"plannedProgress"`
	ActualProgress  float64 `json:"actualProgress"`
	Delta           float64 `json:"delta"`
}

// ProgressRow is the cumulative-to-date progress through one iteration.
type ProgressRow struct {
	IterationIndex  int                           `json:"iterationIndex"`
	Label           string                        `json:"label"`
	Start           string                        `json:"start"`
	End             string                        `json:"end"`
	Total           float64                       `json:"total"`
	CumulativeDone  float64                       `json:"cumulativeDone"`
	PlannedConsume  float64                       `json:"plannedConsume"`
	PlannedProgress float64                       `json:"plannedProgress"`
	ActualProgress  float64                       `json:"actualProgress"`
	Delta           float64                       `json:"delta"`
	Categories      map[Category]CategoryProgress `json:"categories"`
}

// RolePoints holds target and actual points for one role.
type RolePoints struct {
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
}

// VelocityRow is the team target versus actual for one iteration.
type VelocityRow struct {
	IterationIndex int                 `json:"iterationIndex"`
	Label          string              `json:"label"`
	WorkingDays    int                 `json:"workingDays"`
	Target         float64             `json:"target"`
	Actual         float64             `json:"actual"`
	ByRole         map[Role]RolePoints `json:"byRole"`
}

// MemberVelocity is one member's cumulative numbers over an iteration range.
type MemberVelocity struct {
	Name            string  `json:"name"`
	Role            Role    `json:"role"`
	PlannedVelocity float64 `json:"plannedVelocity"`
	WorkingDays     float64 `json:"workingDays"`
	TargetPT        float64 `json:"targetPT"`
	ActualPT        float64 `json:"actualPT"`
	ActualVelocity  float64 `json:"actualVelocity"`
}

// MemberVelocityReport wraps member rows with the clamped range they cover.
type MemberVelocityReport struct {
	From    int              `json:"from"`
	To      int              `json:"to"`
	Members []MemberVelocity `json:"members"`
}

// CategorySummary is the valid and discarded points of one category.
type CategorySummary struct {
	Points          float64 `json:"points"`
	DiscardedPoints float64 `json:"discardedPoints"`
}

// ProjectSummary is the whole-project headline numbers.
type ProjectSummary struct {
	TotalPoints     float64                      `json:"totalPoints"`
	ValidCount      int                          `json:"validCount"`
	DiscardedCount  int                          `json:"discardedCount"`
	DiscardedPoints float64                      `json:"discardedPoints"`
	Categories      map[Category]CategorySummary `json:"categories"`
}

// FeatureFilter narrows the feature table. Empty fields do not filter.
type FeatureFilter struct {
	Search    string `json:"search,omitempty"`
	Category  string `json:"category,omitempty"`
	Status    string `json:"status,omitempty"`
	Iteration string `json:"iteration,omitempty"`
	Assignee  string `json:"assignee,omitempty"`
}

// PointsIssue flags a feature whose story points cannot be counted.
type PointsIssue struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Iteration *float64 `json:"iteration"`
}

// VelocityReport bundles the team and member velocity views with the
// features whose points could not be counted.
type VelocityReport struct {
	Team         []VelocityRow        `json:"team"`
	Members      MemberVelocityReport `json:"members"`
	PointsIssues []PointsIssue        `json:"pointsIssues"`
}

// MappingReport describes how the headers of an input would be read.
type MappingReport struct {
	Headers       []string      `json:"headers"`
	Mapping       HeaderMapping `json:"mapping"`
	Unmapped      []string      `json:"unmapped"`
	MissingFields []Field       `json:"missingFields"`
	ProceedReady  bool          `json:"proceedReady"`
	Complete      bool          `json:"complete"`
}
