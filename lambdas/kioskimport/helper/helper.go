package helper

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
)

// Punch is one buffered kiosk event from an offline batch file.
type Punch struct {
	UserID       string
	Type         model.EventType
	Timestamp    time.Time
	CheckpointID string
	ProductType  string
	Latitude     *float64
	Longitude    *float64
}

// ParseKioskCSV reads a kiosk batch export. Columns:
// userId,type,timestamp,checkpointId,productType,latitude,longitude
// with optional coordinates. Kiosk firmware versions disagree on the
// timestamp format, so any ISO-ish layout is accepted; naive timestamps are
// taken as Mexico City local time.
func ParseKioskCSV(r io.Reader) ([]Punch, error) {
	rows, err := utils.ParseCSV(r)
	if err != nil {
		return nil, err
	}

	var punches []Punch
	for i, row := range rows {
		if i == 0 {
			continue
		}

		if len(row) < 7 {
			return nil, fmt.Errorf("row %d: expected 7 columns, got %d", i, len(row))
		}

		timestamp, err := utils.ParseISOTime(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp: %w", i, err)
		}

		punch := Punch{
			UserID:       row[0],
			Type:         model.EventType(row[1]),
			Timestamp:    timestamp.In(utils.MexicoCityTZ),
			CheckpointID: row[3],
			ProductType:  row[4],
		}
		if !punch.Type.Valid() {
			return nil, fmt.Errorf("row %d: invalid event type %q", i, row[1])
		}

		if row[5] != "" && row[6] != "" {
			lat, err := strconv.ParseFloat(row[5], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid latitude: %w", i, err)
			}
			lon, err := strconv.ParseFloat(row[6], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid longitude: %w", i, err)
			}
			punch.Latitude = &lat
			punch.Longitude = &lon
		}

		punches = append(punches, punch)
	}

	// Replay must apply a user's punches in the order they happened, or the
	// conflict rules reject legitimate events.
	sort.SliceStable(punches, func(i, j int) bool {
		return punches[i].Timestamp.Before(punches[j].Timestamp)
	})

	return punches, nil
}

func (p Punch) ToInput() core.RecordEventInput {
	return core.RecordEventInput{
		UserID:       p.UserID,
		Type:         p.Type,
		CheckpointID: p.CheckpointID,
		ProductType:  p.ProductType,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Timestamp:    p.Timestamp,
	}
}
