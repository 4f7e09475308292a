package models

import "time"

// DuplicatePolicy is the user-selected rule applied uniformly to every
// duplicate detected in one import run.
type DuplicatePolicy string

const (
	PolicySkip    DuplicatePolicy = "skip"
	PolicyReplace DuplicatePolicy = "replace"
	PolicyKeep    DuplicatePolicy = "keep"
)

// ValidDuplicatePolicy reports whether p names a supported policy.
func ValidDuplicatePolicy(p DuplicatePolicy) bool {
	switch p {
	case PolicySkip, PolicyReplace, PolicyKeep:
		return true
	}
	return false
}

// ImportState is the wizard position of one import session.
type ImportState string

const (
	StateUpload    ImportState = "upload"
	StatePreview   ImportState = "preview"
	StateConfigure ImportState = "configure"
	StateResult    ImportState = "result"
)

// ImportStats summarizes one finished import run. Added/Errors are derived
// from actual persistence outcomes, not pre-commit intentions.
type ImportStats struct {
	Total         int `json:"total"`
	Added         int `json:"added"`
	Duplicates    int `json:"duplicates"`
	Errors        int `json:"errors"`
	SkippedNoName int `json:"skippedMissingField"`
}

// ImportAudit is the persistent trail of one import run, written to the
// local cache store after commit.
type ImportAudit struct {
	SessionID  string          `bson:"session_id" json:"sessionId"`
	FileName   string          `bson:"file_name" json:"fileName"`
	Policy     DuplicatePolicy `bson:"policy" json:"policy"`
	Stats      ImportStats     `bson:"stats" json:"stats"`
	StartedAt  time.Time       `bson:"started_at" json:"startedAt"`
	FinishedAt time.Time       `bson:"finished_at" json:"finishedAt"`
}
