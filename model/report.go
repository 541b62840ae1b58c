package model

import "time"

type AbsenceType string

const (
	AbsenceNoEntry       AbsenceType = "NO_ENTRY"
	AbsenceNoExit        AbsenceType = "NO_EXIT"
	AbsenceExtendedLunch AbsenceType = "EXTENDED_LUNCH"
)

// AbsenceReport is derived per detector run and persisted externally for history.
type AbsenceReport struct {
	UserID  string      `json:"userId"`
	Date    string      `json:"date"`
	Type    AbsenceType `json:"type"`
	Message string      `json:"message"`
}

type IssueType string

const (
	IssueLateEntry       IssueType = "LATE_ENTRY"
	IssueEarlyExit       IssueType = "EARLY_EXIT"
	IssueInvalidLocation IssueType = "INVALID_LOCATION"
	IssueMissingPhoto    IssueType = "MISSING_PHOTO"
	IssueExtendedLunch   IssueType = "EXTENDED_LUNCH"
)

type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "LOW"
	SeverityMedium   IssueSeverity = "MEDIUM"
	SeverityHigh     IssueSeverity = "HIGH"
	SeverityCritical IssueSeverity = "CRITICAL"
)

// AttendanceIssue is derived from a day's records for dashboards and alerting.
// ID is the source record id.
type AttendanceIssue struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Type      IssueType     `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Severity  IssueSeverity `json:"severity"`
}
