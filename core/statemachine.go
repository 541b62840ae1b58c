package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
)

// RecordEventInput is a check-in/out request from an authenticated device.
type RecordEventInput struct {
	UserID       string
	Type         model.EventType
	CheckpointID string
	ProductType  string
	Latitude     *float64
	Longitude    *float64
	PhotoRef     string
	Notes        string

	// Timestamp defaults to the current local time when zero (kiosk batch
	// imports replay historical punches with their original timestamps).
	Timestamp time.Time
}

// AttendanceService enforces the legal event sequence per user per day and
// assembles validated records. Per-user serialization makes the conflict
// check race-free; different users do not contend on a shared lock.
type AttendanceService struct {
	records     RecordStore
	users       UserDirectory
	checkpoints CheckpointDirectory
	schedules   *ScheduleResolver
	locks       userLocks

	// RejectInvalidLocation hard-rejects out-of-range check-ins instead of
	// recording them flagged. Off by default; field conditions are unreliable
	// and rejecting would block legitimate attendance.
	RejectInvalidLocation bool

	now func() time.Time
}

func NewAttendanceService(records RecordStore, users UserDirectory, checkpoints CheckpointDirectory, schedules *ScheduleResolver) *AttendanceService {
	return &AttendanceService{
		records:     records,
		users:       users,
		checkpoints: checkpoints,
		schedules:   schedules,
		now:         utils.LocalNow,
	}
}

// WithClock overrides the time source, for tests.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// RecordEvent validates, classifies and persists one attendance event.
// Business rejections come back as *AttendanceError; anything else is an
// infrastructure failure the client may retry.
func (s *AttendanceService) RecordEvent(ctx context.Context, in RecordEventInput) (*model.AttendanceRecord, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidEventType
	}

	user, err := s.users.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", in.UserID, err)
	}
	if user == nil || user.Status != model.UserActive {
		return nil, ErrUserNotActive
	}

	checkpoint, err := s.checkpoints.GetCheckpoint(ctx, in.CheckpointID)
	if err != nil {
		return nil, fmt.Errorf("resolve checkpoint %s: %w", in.CheckpointID, err)
	}
	if checkpoint == nil {
		return nil, ErrCheckpointNotFound
	}
	if checkpoint.Status != model.CheckpointActive {
		return nil, ErrCheckpointInactive
	}

	if !user.HasProductAccess(in.ProductType) || !user.HasCheckpointAccess(in.CheckpointID) {
		return nil, ErrAccessDenied
	}

	timestamp := in.Timestamp
	if timestamp.IsZero() {
		timestamp = s.now()
	}
	date := utils.DateKey(timestamp)

	// Serialize the conflict check and insert per user. The read below must
	// see this process's previously committed writes.
	mu := s.locks.lock(in.UserID)
	defer mu.Unlock()

	existing, err := s.records.GetRecordsForUserOnDate(ctx, in.UserID, date)
	if err != nil {
		return nil, fmt.Errorf("read records for %s on %s: %w", in.UserID, date, err)
	}
	if err := checkConflicts(in.Type, existing); err != nil {
		return nil, err
	}

	geo := ValidateLocation(in.Latitude, in.Longitude, checkpoint)
	if !geo.IsValid && s.RejectInvalidLocation && geo.DistanceMeters != nil {
		return nil, ErrInvalidLocation
	}

	schedule := s.schedules.Resolve(ctx, in.ProductType)
	punctuality, err := ClassifyPunctuality(in.Type, timestamp, &schedule)
	if err != nil {
		return nil, fmt.Errorf("classify punctuality: %w", err)
	}

	record := &model.AttendanceRecord{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Type:            in.Type,
		Timestamp:       timestamp,
		Date:            date,
		CheckpointID:    in.CheckpointID,
		ProductType:     in.ProductType,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		DistanceMeters:  geo.DistanceMeters,
		PhotoRef:        in.PhotoRef,
		Notes:           in.Notes,
		Punctuality:     punctuality,
		IsLocationValid: geo.IsValid,
		LocationMessage: geo.Message,
		SessionID:       newSessionID(timestamp),
	}

	if _, err := s.records.InsertRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	// Counter bumps are best-effort and must never fail the check-in.
	go func(checkpointID string, at time.Time) {
		bctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.checkpoints.IncrementCheckIns(bctx, checkpointID, at); err != nil {
			log.Printf("checkpoint %s counter update failed: %v", checkpointID, err)
		}
	}(in.CheckpointID, timestamp)

	return record, nil
}

// checkConflicts enforces NONE -> ENTRY -> {LUNCH} -> EXIT per user per day.
func checkConflicts(requested model.EventType, existing []model.AttendanceRecord) error {
	var hasEntry, hasExit bool
	for _, r := range existing {
		switch r.Type {
		case model.EventEntrada:
			hasEntry = true
		case model.EventSalida:
			hasExit = true
		}
	}

	switch requested {
	case model.EventEntrada:
		if hasEntry {
			return ErrDuplicateEntry
		}
	case model.EventSalida:
		if !hasEntry {
			return ErrMissingEntry
		}
		if hasExit {
			return ErrDuplicateExit
		}
	case model.EventComida:
		if !hasEntry {
			return ErrMissingEntry
		}
	}
	return nil
}

// newSessionID builds a correlation id for debugging. Not a security token.
func newSessionID(at time.Time) string {
	return fmt.Sprintf("%d-%s", at.UnixMilli(), uuid.NewString()[:8])
}
