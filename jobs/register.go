package jobs

import (
	"fmt"
	"time"
)

const (
	JobAbsenceDetection   = "absence-detection"
	JobAttendanceReminder = "attendance-reminder"
	JobLateArrivalAlert   = "late-arrival-alert"
	JobLocationViolation  = "location-violation-alert"
	JobAutoCloseStale     = "auto-close-stale-sessions"
	JobStatsRollup        = "stats-rollup"
	JobHealthCheck        = "health-check"
	JobDataCleanup        = "data-cleanup"
)

type jobSpec struct {
	name        string
	interval    time.Duration
	flex        time.Duration
	constraints []Constraint
	task        func(*Monitors) Task
}

var jobTable = []jobSpec{
	{JobAbsenceDetection, 15 * time.Minute, 2 * time.Minute, []Constraint{ConstraintNetwork}, func(m *Monitors) Task { return m.DetectAbsences }},
	{JobAttendanceReminder, 15 * time.Minute, 2 * time.Minute, []Constraint{ConstraintNetwork}, func(m *Monitors) Task { return m.SendReminders }},
	{JobLateArrivalAlert, 30 * time.Minute, 5 * time.Minute, []Constraint{ConstraintNetwork}, func(m *Monitors) Task { return m.AlertLateArrivals }},
	{JobLocationViolation, 15 * time.Minute, 2 * time.Minute, []Constraint{ConstraintNetwork}, func(m *Monitors) Task { return m.AlertLocationViolations }},
	{JobAutoCloseStale, 2 * time.Hour, 10 * time.Minute, []Constraint{ConstraintNetwork}, func(m *Monitors) Task { return m.FlagStaleSessions }},
	{JobStatsRollup, 6 * time.Hour, 30 * time.Minute, []Constraint{ConstraintNetwork}, func(m *Monitors) Task { return m.RollupStats }},
	{JobHealthCheck, time.Hour, 5 * time.Minute, []Constraint{ConstraintNetwork}, func(m *Monitors) Task { return m.CheckHealth }},
	{JobDataCleanup, 24 * time.Hour, time.Hour, []Constraint{ConstraintNetwork, ConstraintCharging}, func(m *Monitors) Task { return m.CleanupOldData }},
}

// RegisterAll registers every monitoring job with KEEP_EXISTING uniqueness so
// repeated startup registration is idempotent. overrides replaces the default
// interval per job name.
func (m *Monitors) RegisterAll(s *Scheduler, overrides map[string]time.Duration) error {
	for _, spec := range jobTable {
		interval := spec.interval
		if o, ok := overrides[spec.name]; ok && o > 0 {
			interval = o
		}
		def := JobDefinition{
			Name:        spec.name,
			Interval:    interval,
			Flex:        spec.flex,
			Constraints: spec.constraints,
			Uniqueness:  PolicyKeepExisting,
			Retry:       DefaultRetryPolicy(),
		}
		if err := s.Register(def, spec.task(m)); err != nil {
			return fmt.Errorf("register %s: %w", spec.name, err)
		}
	}
	return nil
}

// Reconfigure reschedules one job with a new interval, replacing the
// existing schedule.
func (m *Monitors) Reconfigure(s *Scheduler, name string, interval time.Duration) error {
	for _, spec := range jobTable {
		if spec.name != name {
			continue
		}
		def := JobDefinition{
			Name:        spec.name,
			Interval:    interval,
			Flex:        spec.flex,
			Constraints: spec.constraints,
			Uniqueness:  PolicyReplace,
			Retry:       DefaultRetryPolicy(),
		}
		return s.Register(def, spec.task(m))
	}
	return fmt.Errorf("unknown job %s", name)
}
