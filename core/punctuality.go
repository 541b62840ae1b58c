package core

import (
	"fmt"
	"time"

	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
)

// ClassifyPunctuality classifies an event timestamp against the resolved
// schedule. A nil schedule yields UNKNOWN. Midnight-crossing schedules are
// not supported; entry and exit are assumed to fall on the same day.
func ClassifyPunctuality(eventType model.EventType, timestamp time.Time, schedule *model.WorkSchedule) (model.Punctuality, error) {
	if schedule == nil {
		return model.PunctualityUnknown, nil
	}

	// Lunch timing is not constrained.
	if eventType == model.EventComida {
		return model.PunctualityOnTime, nil
	}

	actual := utils.MinutesSinceMidnight(timestamp)
	tolerance := schedule.ToleranceMinutes

	switch eventType {
	case model.EventEntrada:
		expected, err := utils.ParseClockTime(schedule.EntryTime)
		if err != nil {
			return model.PunctualityUnknown, fmt.Errorf("schedule %s: %w", schedule.ProductType, err)
		}
		if actual > expected+tolerance {
			return model.PunctualityLate, nil
		}
		if actual < expected-tolerance {
			return model.PunctualityEarly, nil
		}
		return model.PunctualityOnTime, nil

	case model.EventSalida:
		expected, err := utils.ParseClockTime(schedule.ExitTime)
		if err != nil {
			return model.PunctualityUnknown, fmt.Errorf("schedule %s: %w", schedule.ProductType, err)
		}
		// Leaving late is not penalized.
		if actual < expected-tolerance {
			return model.PunctualityEarly, nil
		}
		return model.PunctualityOnTime, nil
	}

	return model.PunctualityUnknown, nil
}
