package common

import (
	"encoding/json"
	"fmt"
	"time"

	"puntocheck.com/puntocheck/utils"
)

// DateOnly is a yyyy-MM-dd JSON value. Attendance partitions by Mexico City
// calendar day, so the date is anchored there rather than UTC.
type DateOnly struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.ParseInLocation(dateLayout, s, utils.MexicoCityTZ)
	if err != nil {
		return fmt.Errorf("invalid date format: %v", err)
	}

	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}

// Key returns the record-partition form of the date.
func (d DateOnly) Key() string {
	return utils.DateKey(d.Time)
}
