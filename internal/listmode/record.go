package listmode

import "time"

// Record is a single reviewed entry persisted to a session schema.
type Record struct {
	ID           int64     `json:"id"`
	GroupNo      int       `json:"group_no"`
	Description  string    `json:"description"`
	CategoryName string    `json:"category_name"`
	ActivityName string    `json:"activity_name"`
	Created      time.Time `json:"created"`
}

// Validate checks the record holds the minimum content required for
// persistence. Every record needs a description and a category assignment.
func (r *Record) Validate() error {
	if r.Description == "" {
		return ErrEmptyDescription
	}
	if r.CategoryName == "" {
		return ErrEmptyCategory
	}
	return nil
}

// SessionRecords groups a session's records under its schema identifier.
type SessionRecords struct {
	SessionID string   `json:"session_id"`
	Records   []Record `json:"records"`
}
