package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"puntocheck.com/puntocheck/model"
)

// GormRecordStore persists attendance records in MySQL. Reads go through the
// same pool that wrote, so conflict-detection reads see our own commits.
type GormRecordStore struct {
	db *gorm.DB
}

func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{db: db}
}

func (s *GormRecordStore) GetRecordsForUserOnDate(ctx context.Context, userID, date string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("timestamp").
		Find(&records).Error
	return records, err
}

func (s *GormRecordStore) GetAllRecordsForDate(ctx context.Context, date string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("date = ?", date).
		Order("timestamp").
		Find(&records).Error
	return records, err
}

func (s *GormRecordStore) InsertRecord(ctx context.Context, record *model.AttendanceRecord) (string, error) {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", err
	}
	return record.ID, nil
}

func (s *GormRecordStore) FlagRecordForClosure(ctx context.Context, recordID string) error {
	return s.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("id = ?", recordID).
		Update("flagged_for_closure", true).Error
}

func (s *GormRecordStore) DeleteRecordsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&model.AttendanceRecord{})
	return result.RowsAffected, result.Error
}

type GormUserDirectory struct {
	db *gorm.DB
}

func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

func (d *GormUserDirectory) GetUser(ctx context.Context, userID string) (*model.UserContext, error) {
	var user model.UserContext
	err := d.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *GormUserDirectory) ListActiveUsers(ctx context.Context) ([]model.UserContext, error) {
	var users []model.UserContext
	err := d.db.WithContext(ctx).
		Where("status = ?", model.UserActive).
		Order("id").
		Find(&users).Error
	return users, err
}

type GormCheckpointDirectory struct {
	db *gorm.DB
}

func NewGormCheckpointDirectory(db *gorm.DB) *GormCheckpointDirectory {
	return &GormCheckpointDirectory{db: db}
}

func (d *GormCheckpointDirectory) GetCheckpoint(ctx context.Context, checkpointID string) (*model.Checkpoint, error) {
	var checkpoint model.Checkpoint
	err := d.db.WithContext(ctx).Where("id = ?", checkpointID).Take(&checkpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

func (d *GormCheckpointDirectory) IncrementCheckIns(ctx context.Context, checkpointID string, at time.Time) error {
	return d.db.WithContext(ctx).
		Model(&model.Checkpoint{}).
		Where("id = ?", checkpointID).
		UpdateColumns(map[string]interface{}{
			"total_check_ins":    gorm.Expr("total_check_ins + 1"),
			"last_activity_date": at,
		}).Error
}

type GormScheduleStore struct {
	db *gorm.DB
}

func NewGormScheduleStore(db *gorm.DB) *GormScheduleStore {
	return &GormScheduleStore{db: db}
}

func (s *GormScheduleStore) GetActiveSchedule(ctx context.Context, productType string) (*model.WorkSchedule, error) {
	var schedule model.WorkSchedule
	err := s.db.WithContext(ctx).
		Where("product_type = ? AND is_active = ?", productType, true).
		Take(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

type GormStatsStore struct {
	db *gorm.DB
}

func NewGormStatsStore(db *gorm.DB) *GormStatsStore {
	return &GormStatsStore{db: db}
}

func (s *GormStatsStore) UpsertDailyStats(ctx context.Context, stats *model.DailyStats) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stats_key"}},
		UpdateAll: true,
	}).Create(stats).Error
}

func (s *GormStatsStore) GetDailyStats(ctx context.Context, date string) (*model.DailyStats, error) {
	var stats model.DailyStats
	err := s.db.WithContext(ctx).Where("stats_key = ?", model.StatsKey(date)).Take(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
