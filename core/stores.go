package core

import (
	"context"
	"time"

	"puntocheck.com/puntocheck/model"
)

// RecordStore is the external attendance record backend. Reads used for
// conflict detection must reflect this process's own committed writes.
type RecordStore interface {
	GetRecordsForUserOnDate(ctx context.Context, userID, date string) ([]model.AttendanceRecord, error)
	GetAllRecordsForDate(ctx context.Context, date string) ([]model.AttendanceRecord, error)
	InsertRecord(ctx context.Context, record *model.AttendanceRecord) (string, error)
	FlagRecordForClosure(ctx context.Context, recordID string) error
	DeleteRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserDirectory resolves caller-supplied, already-authenticated identities.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*model.UserContext, error)
	ListActiveUsers(ctx context.Context) ([]model.UserContext, error)
}

// CheckpointDirectory reads kiosk geofence data and applies best-effort
// counter bumps.
type CheckpointDirectory interface {
	GetCheckpoint(ctx context.Context, checkpointID string) (*model.Checkpoint, error)
	IncrementCheckIns(ctx context.Context, checkpointID string, at time.Time) error
}

// ScheduleStore looks up administrator-managed work schedules. A missing
// schedule is (nil, nil), not an error.
type ScheduleStore interface {
	GetActiveSchedule(ctx context.Context, productType string) (*model.WorkSchedule, error)
}

// StatsStore persists daily rollups keyed by their natural identity so
// re-runs are upserts.
type StatsStore interface {
	UpsertDailyStats(ctx context.Context, stats *model.DailyStats) error
	GetDailyStats(ctx context.Context, date string) (*model.DailyStats, error)
}
