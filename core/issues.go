package core

import (
	"context"
	"fmt"
	"sort"

	"puntocheck.com/puntocheck/model"
)

// IssueAggregator derives attendance issues from a day's records for
// dashboards and alerting.
type IssueAggregator struct {
	records RecordStore
}

func NewIssueAggregator(records RecordStore) *IssueAggregator {
	return &IssueAggregator{records: records}
}

// Aggregate scans all records for the date. Output is sorted newest first;
// ties break on record id so re-runs are stable.
func (a *IssueAggregator) Aggregate(ctx context.Context, date string) ([]model.AttendanceIssue, error) {
	records, err := a.records.GetAllRecordsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("records for %s: %w", date, err)
	}

	var issues []model.AttendanceIssue
	for _, r := range records {
		if r.Type == model.EventEntrada && r.Punctuality == model.PunctualityLate {
			issues = append(issues, model.AttendanceIssue{
				ID:        r.ID,
				UserID:    r.UserID,
				Type:      model.IssueLateEntry,
				Message:   fmt.Sprintf("Entrada tardía a las %s", r.Timestamp.Format("15:04")),
				Timestamp: r.Timestamp,
				Severity:  model.SeverityMedium,
			})
		}

		if r.Type == model.EventSalida && r.Punctuality == model.PunctualityEarly {
			issues = append(issues, model.AttendanceIssue{
				ID:        r.ID,
				UserID:    r.UserID,
				Type:      model.IssueEarlyExit,
				Message:   fmt.Sprintf("Salida anticipada a las %s", r.Timestamp.Format("15:04")),
				Timestamp: r.Timestamp,
				Severity:  model.SeverityMedium,
			})
		}

		if !r.IsLocationValid {
			msg := r.LocationMessage
			if msg == "" {
				msg = "Ubicación inválida"
			}
			issues = append(issues, model.AttendanceIssue{
				ID:        r.ID,
				UserID:    r.UserID,
				Type:      model.IssueInvalidLocation,
				Message:   msg,
				Timestamp: r.Timestamp,
				Severity:  model.SeverityHigh,
			})
		}

		if r.Type == model.EventEntrada && r.PhotoRef == "" {
			issues = append(issues, model.AttendanceIssue{
				ID:        r.ID,
				UserID:    r.UserID,
				Type:      model.IssueMissingPhoto,
				Message:   "Entrada sin fotografía",
				Timestamp: r.Timestamp,
				Severity:  model.SeverityLow,
			})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Timestamp.Equal(issues[j].Timestamp) {
			return issues[i].ID < issues[j].ID
		}
		return issues[i].Timestamp.After(issues[j].Timestamp)
	})

	return issues, nil
}
