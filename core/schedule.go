package core

import (
	"context"
	"fmt"
	"log"

	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
)

// DefaultSchedule is the built-in fallback so punctuality classification
// never fails for lack of configuration.
func DefaultSchedule(productType string) model.WorkSchedule {
	return model.WorkSchedule{
		ProductType:      productType,
		EntryTime:        "09:00",
		ExitTime:         "18:00",
		ToleranceMinutes: 10,
		WorkDays:         "1,2,3,4,5",
		IsActive:         true,
	}
}

// ScheduleResolver resolves the applicable work schedule for a product type,
// falling back to an injected default when no schedule matches or the store
// is unreachable. Resolution never blocks check-in recording.
type ScheduleResolver struct {
	store    ScheduleStore
	fallback func(productType string) model.WorkSchedule
}

func NewScheduleResolver(store ScheduleStore) *ScheduleResolver {
	return &ScheduleResolver{store: store, fallback: DefaultSchedule}
}

// WithFallback overrides the default-schedule factory, mainly for tests.
func (r *ScheduleResolver) WithFallback(fallback func(string) model.WorkSchedule) *ScheduleResolver {
	r.fallback = fallback
	return r
}

func (r *ScheduleResolver) Resolve(ctx context.Context, productType string) model.WorkSchedule {
	schedule, err := r.store.GetActiveSchedule(ctx, productType)
	if err != nil {
		log.Printf("schedule store unreachable for product %s, using default schedule: %v", productType, err)
		return r.fallback(productType)
	}
	if schedule == nil || !schedule.IsActive {
		return r.fallback(productType)
	}
	if err := ValidateSchedule(schedule); err != nil {
		log.Printf("invalid schedule for product %s, using default schedule: %v", productType, err)
		return r.fallback(productType)
	}
	return *schedule
}

// ValidateSchedule rejects malformed HH:mm time strings. Called at
// configuration load and again on resolution, so a bad stored schedule is a
// loud configuration error, never a per-event failure.
func ValidateSchedule(s *model.WorkSchedule) error {
	if _, err := utils.ParseClockTime(s.EntryTime); err != nil {
		return fmt.Errorf("schedule %s entry time: %w", s.ProductType, err)
	}
	if _, err := utils.ParseClockTime(s.ExitTime); err != nil {
		return fmt.Errorf("schedule %s exit time: %w", s.ProductType, err)
	}
	if s.ToleranceMinutes < 0 {
		return fmt.Errorf("schedule %s: negative tolerance", s.ProductType)
	}
	return nil
}
