package store

import (
	"context"
	"sync"
	"time"

	"puntocheck.com/puntocheck/model"
)

type MemoryRecordStore struct {
	mu      sync.RWMutex
	records []model.AttendanceRecord

	// FailReads simulates an unreachable store.
	FailReads  error
	FailWrites error
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

func (s *MemoryRecordStore) GetRecordsForUserOnDate(ctx context.Context, userID, date string) ([]model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	var out []model.AttendanceRecord
	for _, r := range s.records {
		if r.UserID == userID && r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryRecordStore) GetAllRecordsForDate(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailReads != nil {
		return nil, s.FailReads
	}
	var out []model.AttendanceRecord
	for _, r := range s.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryRecordStore) InsertRecord(ctx context.Context, record *model.AttendanceRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return "", s.FailWrites
	}
	s.records = append(s.records, *record)
	return record.ID, nil
}

func (s *MemoryRecordStore) FlagRecordForClosure(ctx context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == recordID {
			s.records[i].FlaggedForClosure = true
		}
	}
	return nil
}

func (s *MemoryRecordStore) DeleteRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []model.AttendanceRecord
	var deleted int64
	for _, r := range s.records {
		if r.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// All returns a copy of every stored record.
func (s *MemoryRecordStore) All() []model.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AttendanceRecord, len(s.records))
	copy(out, s.records)
	return out
}

type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]model.UserContext
}

func NewMemoryUserDirectory(users ...model.UserContext) *MemoryUserDirectory {
	d := &MemoryUserDirectory{users: make(map[string]model.UserContext)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *MemoryUserDirectory) Put(user model.UserContext) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

func (d *MemoryUserDirectory) GetUser(ctx context.Context, userID string) (*model.UserContext, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (d *MemoryUserDirectory) ListActiveUsers(ctx context.Context) ([]model.UserContext, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []model.UserContext
	for _, u := range d.users {
		if u.Status == model.UserActive {
			out = append(out, u)
		}
	}
	return out, nil
}

type MemoryCheckpointDirectory struct {
	mu          sync.RWMutex
	checkpoints map[string]model.Checkpoint
	Increments  int
}

func NewMemoryCheckpointDirectory(checkpoints ...model.Checkpoint) *MemoryCheckpointDirectory {
	d := &MemoryCheckpointDirectory{checkpoints: make(map[string]model.Checkpoint)}
	for _, c := range checkpoints {
		d.checkpoints[c.ID] = c
	}
	return d
}

func (d *MemoryCheckpointDirectory) GetCheckpoint(ctx context.Context, checkpointID string) (*model.Checkpoint, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.checkpoints[checkpointID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (d *MemoryCheckpointDirectory) IncrementCheckIns(ctx context.Context, checkpointID string, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.checkpoints[checkpointID]
	if ok {
		c.TotalCheckIns++
		c.LastActivityDate = &at
		d.checkpoints[checkpointID] = c
	}
	d.Increments++
	return nil
}

type MemoryScheduleStore struct {
	mu        sync.RWMutex
	schedules map[string]model.WorkSchedule

	Err error
}

func NewMemoryScheduleStore(schedules ...model.WorkSchedule) *MemoryScheduleStore {
	s := &MemoryScheduleStore{schedules: make(map[string]model.WorkSchedule)}
	for _, sch := range schedules {
		s.schedules[sch.ProductType] = sch
	}
	return s
}

func (s *MemoryScheduleStore) GetActiveSchedule(ctx context.Context, productType string) (*model.WorkSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}
	sch, ok := s.schedules[productType]
	if !ok || !sch.IsActive {
		return nil, nil
	}
	return &sch, nil
}

type MemoryStatsStore struct {
	mu    sync.RWMutex
	stats map[string]model.DailyStats
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{stats: make(map[string]model.DailyStats)}
}

func (s *MemoryStatsStore) UpsertDailyStats(ctx context.Context, stats *model.DailyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stats.Key] = *stats
	return nil
}

func (s *MemoryStatsStore) GetDailyStats(ctx context.Context, date string) (*model.DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stats[model.StatsKey(date)]
	if !ok {
		return nil, nil
	}
	return &st, nil
}
