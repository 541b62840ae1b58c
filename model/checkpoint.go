package model

import "time"

type CheckpointStatus string

const (
	CheckpointActive   CheckpointStatus = "ACTIVE"
	CheckpointInactive CheckpointStatus = "INACTIVE"
)

// Checkpoint is a physical location (kiosk) with a geofence where
// check-ins are expected to occur.
type Checkpoint struct {
	ID           string           `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name         string           `gorm:"column:name;size:100;not null" json:"name"`
	Latitude     *float64         `gorm:"column:latitude" json:"latitude"`
	Longitude    *float64         `gorm:"column:longitude" json:"longitude"`
	RadiusMeters float64          `gorm:"column:radius_meters;not null;default:100" json:"radiusMeters"`
	Status       CheckpointStatus `gorm:"column:status;size:10;not null;default:'ACTIVE'" json:"status"`

	// Aggregate counters, bumped best-effort on accepted check-ins.
	LastActivityDate *time.Time `gorm:"column:last_activity_date" json:"lastActivityDate"`
	TotalCheckIns    int64      `gorm:"column:total_check_ins;not null;default:0" json:"totalCheckIns"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}

// HasLocation reports whether the checkpoint has coordinates configured.
func (c *Checkpoint) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}
