package schema

// Custom string types for type safety.
type (
	// Field is one of the internal feature fields a source column can map onto.
	Field string

	// InternalStatus is one of the canonical workflow states.
	InternalStatus string

	// Role is the discipline of a team member.
	Role string

	// Category is the canonical bucket a feature category normalizes into.
	Category string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// SessionState is the lifecycle state of an import session.
	SessionState string
)

// Internal fields recognized by the header mapper.
const (
	FieldTitle          Field = "title"
	FieldStatus         Field = "status"
	FieldIteration      Field = "iteration"
	FieldStoryPoints    Field = "storyPoints"
	FieldEstimatedHours Field = "estimatedHours"
	FieldActualHours    Field = "actualHours"
	FieldAssignee       Field = "assignee"
	FieldCategory       Field = "category"
)

// Internal statuses selectable in a status mapping.
const (
	StatusTodo       InternalStatus = "未対応"
	StatusInProgress InternalStatus = "作業中"
	StatusInReview   InternalStatus = "PR中"
	StatusDone       InternalStatus = "完了"
	StatusDiscarded  InternalStatus = "破棄"
)

// StatusPullRequest is what the default normalization produces for pr/in_pr values.
const StatusPullRequest InternalStatus = "プルリク中"

// Member roles.
const (
	RoleFE   Role = "FE"
	RoleBE   Role = "BE"
	RoleTest Role = "テスト"
)

// Canonical categories. CategoryOther never appears in per-category aggregates.
const (
	CategoryFE    Category = "FE"
	CategoryBE    Category = "BE"
	CategoryTest  Category = "テスト"
	CategoryOther Category = "other"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Import session states.
const (
	SessionIdle      SessionState = "idle"
	SessionParsed    SessionState = "parsed"
	SessionConfirmed SessionState = "confirmed"
	SessionAborted   SessionState = "aborted"
)

// AllFields lists the internal fields in mapping order.
var AllFields = []Field{
	FieldTitle,
	FieldStatus,
	FieldIteration,
	FieldStoryPoints,
	FieldEstimatedHours,
	FieldActualHours,
	FieldAssignee,
	FieldCategory,
}

// MandatoryFields must be mapped before an import can proceed.
var MandatoryFields = []Field{FieldTitle, FieldStatus, FieldIteration}

// EditOrder is the positional field order used when a bad row is corrected by hand.
var EditOrder = []Field{
	FieldTitle,
	FieldCategory,
	FieldStoryPoints,
	FieldEstimatedHours,
	FieldActualHours,
	FieldIteration,
	FieldStatus,
	FieldAssignee,
}

// AllInternalStatuses lists the internal statuses in workflow order.
var AllInternalStatuses = []InternalStatus{
	StatusTodo,
	StatusInProgress,
	StatusInReview,
	StatusDone,
	StatusDiscarded,
}

// AllRoles lists member roles in display order.
var AllRoles = []Role{RoleFE, RoleBE, RoleTest}

// AllCategories lists the categories that get their own aggregate bucket.
var AllCategories = []Category{CategoryFE, CategoryBE, CategoryTest}

// ValidFields lists all valid internal fields.
var ValidFields = map[Field]struct{}{
	FieldTitle:          {},
	FieldStatus:         {},
	FieldIteration:      {},
	FieldStoryPoints:    {},
	FieldEstimatedHours: {},
	FieldActualHours:    {},
	FieldAssignee:       {},
	FieldCategory:       {},
}

// ValidRoles lists all valid member roles.
var ValidRoles = map[Role]struct{}{
	RoleFE:   {},
	RoleBE:   {},
	RoleTest: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
