package model

import "time"

// DailyStats is the per-day rollup computed by the stats job. Key is
// "stats_<date>" so re-runs upsert instead of duplicating.
type DailyStats struct {
	Key              string `gorm:"primaryKey;column:stats_key;size:20" json:"key"`
	Date             string `gorm:"column:date;type:date;not null" json:"date"`
	TotalRecords     int    `gorm:"column:total_records;not null" json:"totalRecords"`
	TotalEntries     int    `gorm:"column:total_entries;not null" json:"totalEntries"`
	TotalExits       int    `gorm:"column:total_exits;not null" json:"totalExits"`
	OnTimeEntries    int    `gorm:"column:on_time_entries;not null" json:"onTimeEntries"`
	LateEntries      int    `gorm:"column:late_entries;not null" json:"lateEntries"`
	InvalidLocations int    `gorm:"column:invalid_locations;not null" json:"invalidLocations"`
	Absences         int    `gorm:"column:absences;not null" json:"absences"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (DailyStats) TableName() string {
	return "daily_stats"
}

// StatsKey builds the natural identity for a date's rollup.
func StatsKey(date string) string {
	return "stats_" + date
}
