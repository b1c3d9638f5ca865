package schema

// RowError is a recoverable per-row validation failure.
type RowError struct {
	Row     int    `json:"row"` // 1-based line number in the source text
	Message string `json:"message"`
}

// RowWarning is a non-fatal per-row notice; the row is still accepted.
type RowWarning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BadRow keeps the original text of a rejected row for manual correction.
type BadRow struct {
	Row  int    `json:"row"`
	Text string `json:"text"`
}

// NormalizeResult is the outcome of normalizing a batch of rows.
type NormalizeResult struct {
	Features []Feature    `json:"features"`
	Errors   []RowError   `json:"errors"`
	Warnings []RowWarning `json:"warnings"`
	BadRows  []BadRow     `json:"badRows"`
}

// ImportSummary is what an import session reports after parsing.
type ImportSummary struct {
	SessionID string          `json:"sessionId"`
	State     SessionState    `json:"state"`
	Headers   []string        `json:"headers"`
	Mapping   HeaderMapping   `json:"mapping"`
	Result    NormalizeResult `json:"result"`
	Message   string          `json:"message,omitempty"`
}
