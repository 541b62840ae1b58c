package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/store"
	"puntocheck.com/puntocheck/utils"
)

func TestAggregateIssues(t *testing.T) {
	ctx := context.Background()
	date := "2026-03-04"
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 4, hour, minute, 0, 0, utils.MexicoCityTZ)
	}

	records := store.NewMemoryRecordStore()
	seed := []model.AttendanceRecord{
		{
			ID: "rec-1", UserID: "user-1", Type: model.EventEntrada, Timestamp: at(9, 45), Date: date,
			Punctuality: model.PunctualityLate, IsLocationValid: true, PhotoRef: "p1.jpg",
		},
		{
			ID: "rec-2", UserID: "user-2", Type: model.EventEntrada, Timestamp: at(9, 0), Date: date,
			Punctuality: model.PunctualityOnTime, IsLocationValid: false, LocationMessage: "a 250 m del punto de control (límite 100 m)", PhotoRef: "p2.jpg",
		},
		{
			ID: "rec-3", UserID: "user-3", Type: model.EventSalida, Timestamp: at(16, 30), Date: date,
			Punctuality: model.PunctualityEarly, IsLocationValid: true,
		},
		{
			ID: "rec-4", UserID: "user-4", Type: model.EventEntrada, Timestamp: at(9, 2), Date: date,
			Punctuality: model.PunctualityOnTime, IsLocationValid: true,
		},
		{
			ID: "rec-5", UserID: "user-5", Type: model.EventSalida, Timestamp: at(18, 1), Date: date,
			Punctuality: model.PunctualityOnTime, IsLocationValid: true,
		},
	}
	for i := range seed {
		records.InsertRecord(ctx, &seed[i])
	}

	aggregator := NewIssueAggregator(records)
	issues, err := aggregator.Aggregate(ctx, date)
	assert.NoError(t, err)
	assert.Len(t, issues, 4)

	byType := utils.GroupBy(issues, func(i model.AttendanceIssue) model.IssueType { return i.Type })
	assert.Len(t, byType[model.IssueLateEntry], 1)
	assert.Len(t, byType[model.IssueEarlyExit], 1)
	assert.Len(t, byType[model.IssueInvalidLocation], 1)
	assert.Len(t, byType[model.IssueMissingPhoto], 1)

	assert.Equal(t, model.SeverityMedium, byType[model.IssueLateEntry][0].Severity)
	assert.Equal(t, model.SeverityHigh, byType[model.IssueInvalidLocation][0].Severity)
	assert.Equal(t, model.SeverityLow, byType[model.IssueMissingPhoto][0].Severity)

	// newest first
	for i := 1; i < len(issues); i++ {
		assert.False(t, issues[i].Timestamp.After(issues[i-1].Timestamp))
	}

	// issue ids point back at their source record
	assert.Equal(t, "rec-2", byType[model.IssueInvalidLocation][0].ID)
}

func TestAggregateIssuesEmptyDay(t *testing.T) {
	aggregator := NewIssueAggregator(store.NewMemoryRecordStore())
	issues, err := aggregator.Aggregate(context.Background(), "2026-03-04")
	assert.NoError(t, err)
	assert.Empty(t, issues)
}
