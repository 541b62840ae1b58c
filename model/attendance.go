package model

import "time"

type EventType string

const (
	EventEntrada EventType = "ENTRADA"
	EventComida  EventType = "COMIDA"
	EventSalida  EventType = "SALIDA"
)

func (t EventType) Valid() bool {
	switch t {
	case EventEntrada, EventComida, EventSalida:
		return true
	}
	return false
}

type Punctuality string

const (
	PunctualityOnTime  Punctuality = "ON_TIME"
	PunctualityLate    Punctuality = "LATE"
	PunctualityEarly   Punctuality = "EARLY"
	PunctualityUnknown Punctuality = "UNKNOWN"
)

// AttendanceRecord is a single accepted check-in/out event. Records are
// immutable once created; corrections are handled administratively.
type AttendanceRecord struct {
	ID           string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID       string    `gorm:"column:user_id;size:36;not null;index:idx_user_date" json:"userId"`
	Type         EventType `gorm:"column:type;size:10;not null" json:"type"`
	Timestamp    time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
	Date         string    `gorm:"column:date;type:date;not null;index:idx_user_date" json:"date"`
	CheckpointID string    `gorm:"column:checkpoint_id;size:36;not null" json:"checkpointId"`
	ProductType  string    `gorm:"column:product_type;size:50;not null" json:"productType"`

	Latitude       *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude      *float64 `gorm:"column:longitude" json:"longitude"`
	DistanceMeters *float64 `gorm:"column:distance_meters" json:"distanceMeters"`

	PhotoRef string `gorm:"column:photo_ref;size:255" json:"photoRef"`
	Notes    string `gorm:"column:notes;type:text" json:"notes"`

	Punctuality       Punctuality `gorm:"column:punctuality;size:10;not null" json:"punctuality"`
	IsLocationValid   bool        `gorm:"column:is_location_valid;not null" json:"isLocationValid"`
	LocationMessage   string      `gorm:"column:location_message;size:255" json:"locationValidationMessage"`
	SessionID         string      `gorm:"column:session_id;size:64" json:"sessionId"`
	FlaggedForClosure bool        `gorm:"column:flagged_for_closure;not null;default:false" json:"flaggedForClosure"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

// HasLocation reports whether the device supplied coordinates.
func (r *AttendanceRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}
