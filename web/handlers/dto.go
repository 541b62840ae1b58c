package handlers

import (
	"time"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/web/common"
)

// RecordEventRequest is the check-in/out payload from a device. Timestamp is
// optional and local; kiosks replaying buffered punches set it, live devices
// leave it empty.
type RecordEventRequest struct {
	UserID       string               `json:"userId" binding:"required"`
	Type         string               `json:"type" binding:"required,oneof=ENTRADA COMIDA SALIDA"`
	CheckpointID string               `json:"checkpointId" binding:"required"`
	ProductType  string               `json:"productType" binding:"required"`
	Latitude     *float64             `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude    *float64             `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	PhotoRef     string               `json:"photoRef"`
	Notes        string               `json:"notes"`
	Timestamp    common.LocalDateTime `json:"timestamp"`
}

func (r *RecordEventRequest) toInput() core.RecordEventInput {
	in := core.RecordEventInput{
		UserID:       r.UserID,
		Type:         model.EventType(r.Type),
		CheckpointID: r.CheckpointID,
		ProductType:  r.ProductType,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		PhotoRef:     r.PhotoRef,
		Notes:        r.Notes,
	}
	if !r.Timestamp.IsZero() {
		in.Timestamp = r.Timestamp.Time
	}
	return in
}

type AttendanceRecordResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	Date            string    `json:"date"`
	CheckpointID    string    `json:"checkpointId"`
	Punctuality     string    `json:"punctuality"`
	IsLocationValid bool      `json:"isLocationValid"`
	LocationMessage string    `json:"locationMessage,omitempty"`
	DistanceMeters  *float64  `json:"distanceMeters,omitempty"`
	SessionID       string    `json:"sessionId"`
}

func newRecordResponse(r *model.AttendanceRecord) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		Type:            string(r.Type),
		Timestamp:       r.Timestamp,
		Date:            r.Date,
		CheckpointID:    r.CheckpointID,
		Punctuality:     string(r.Punctuality),
		IsLocationValid: r.IsLocationValid,
		LocationMessage: r.LocationMessage,
		DistanceMeters:  r.DistanceMeters,
		SessionID:       r.SessionID,
	}
}

// AbsenceReportRequest asks for an on-demand absence scan of one date.
type AbsenceReportRequest struct {
	Date common.DateOnly `json:"date" binding:"required"`
}
