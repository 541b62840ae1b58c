package model

import (
	"strconv"
	"strings"
	"time"
)

// WorkSchedule defines the expected entry/exit times for a product type.
// Administrator managed; read-only to this service.
type WorkSchedule struct {
	ID               int32  `gorm:"primaryKey;column:id" json:"id"`
	ProductType      string `gorm:"column:product_type;size:50;not null;index" json:"productType"`
	EntryTime        string `gorm:"column:entry_time;size:5;not null" json:"entryTime"` // HH:mm
	ExitTime         string `gorm:"column:exit_time;size:5;not null" json:"exitTime"`   // HH:mm
	ToleranceMinutes int    `gorm:"column:tolerance_minutes;not null" json:"toleranceMinutes"`
	WorkDays         string `gorm:"column:work_days;size:20;not null" json:"workDays"` // e.g. "1,2,3,4,5"
	IsActive         bool   `gorm:"column:is_active;not null;default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (WorkSchedule) TableName() string {
	return "work_schedules"
}

// WorksOn reports whether day is a scheduled work day.
func (s *WorkSchedule) WorksOn(day time.Weekday) bool {
	for _, part := range strings.Split(s.WorkDays, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if time.Weekday(n) == day {
			return true
		}
	}
	return false
}
