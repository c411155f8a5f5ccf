package fishbone

import "time"

// Row is a single flattened cause path from a fishbone hierarchy. SubCause is
// empty when the detail hangs directly off the main branch.
type Row struct {
	MainCause string `json:"main_cause"`
	SubCause  string `json:"sub_cause"`
	Detail    string `json:"detail"`
}

// Record is a persisted fishbone row scoped to a named session.
type Record struct {
	ID               int64     `json:"id"`
	SessionName      string    `json:"session_name"`
	ProblemStatement string    `json:"problem_statement"`
	MainCause        string    `json:"main_cause"`
	SubCause         string    `json:"sub_cause"`
	Detail           string    `json:"detail"`
	GroupName        string    `json:"group_name"`
	RowComment       string    `json:"row_comment"`
	Created          time.Time `json:"created"`
}

// Validate checks the record holds the minimum content required for
// persistence.
func (r *Record) Validate() error {
	if r.SessionName == "" {
		return ErrEmptySession
	}
	if r.MainCause == "" {
		return ErrEmptyMainCause
	}
	if r.Detail == "" {
		return ErrEmptyDetail
	}
	return nil
}
