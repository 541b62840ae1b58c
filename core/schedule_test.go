package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/store"
)

func activeSchedule(entryTime string) model.WorkSchedule {
	return model.WorkSchedule{
		ProductType:      "PUNTOCHECK_GO",
		EntryTime:        entryTime,
		ExitTime:         "18:00",
		ToleranceMinutes: 15,
		WorkDays:         "1,2,3,4,5",
		IsActive:         true,
	}
}

func TestResolveReturnsStoredSchedule(t *testing.T) {
	resolver := NewScheduleResolver(store.NewMemoryScheduleStore(activeSchedule("08:30")))

	got := resolver.Resolve(context.Background(), "PUNTOCHECK_GO")
	assert.Equal(t, "08:30", got.EntryTime)
	assert.Equal(t, 15, got.ToleranceMinutes)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	t.Run("no schedule for product", func(t *testing.T) {
		resolver := NewScheduleResolver(store.NewMemoryScheduleStore())

		got := resolver.Resolve(context.Background(), "PUNTOCHECK_GO")
		assert.Equal(t, DefaultSchedule("PUNTOCHECK_GO"), got)
	})

	t.Run("store unreachable", func(t *testing.T) {
		schedules := store.NewMemoryScheduleStore()
		schedules.Err = errors.New("connection refused")
		resolver := NewScheduleResolver(schedules)

		got := resolver.Resolve(context.Background(), "PUNTOCHECK_GO")
		assert.Equal(t, DefaultSchedule("PUNTOCHECK_GO"), got)
	})

	t.Run("malformed entry time", func(t *testing.T) {
		resolver := NewScheduleResolver(store.NewMemoryScheduleStore(activeSchedule("9am")))

		got := resolver.Resolve(context.Background(), "PUNTOCHECK_GO")
		assert.Equal(t, DefaultSchedule("PUNTOCHECK_GO"), got)
	})

	t.Run("negative tolerance", func(t *testing.T) {
		bad := activeSchedule("09:00")
		bad.ToleranceMinutes = -5
		resolver := NewScheduleResolver(store.NewMemoryScheduleStore(bad))

		got := resolver.Resolve(context.Background(), "PUNTOCHECK_GO")
		assert.Equal(t, DefaultSchedule("PUNTOCHECK_GO"), got)
	})
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule model.WorkSchedule
		wantErr  bool
	}{
		{"well formed", activeSchedule("09:00"), false},
		{"bad entry time", activeSchedule("9am"), true},
		{"bad exit time", func() model.WorkSchedule {
			s := activeSchedule("09:00")
			s.ExitTime = "25:00"
			return s
		}(), true},
		{"negative tolerance", func() model.WorkSchedule {
			s := activeSchedule("09:00")
			s.ToleranceMinutes = -1
			return s
		}(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(&tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
