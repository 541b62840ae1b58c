package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
)

const (
	// End of the working day: users with an entry but no exit after this
	// local time are reported as NO_EXIT.
	endOfWorkDayMinutes = 18 * 60

	// A lunch still open after this long counts as extended.
	extendedLunchLimit = 2 * time.Hour
)

// AbsenceDetector compares the set of users expected to work on a date
// against their recorded events. Pure function of stored state; safe to
// re-run for the same date.
type AbsenceDetector struct {
	records   RecordStore
	users     UserDirectory
	schedules *ScheduleResolver

	now func() time.Time
}

func NewAbsenceDetector(records RecordStore, users UserDirectory, schedules *ScheduleResolver) *AbsenceDetector {
	return &AbsenceDetector{records: records, users: users, schedules: schedules, now: utils.LocalNow}
}

func (d *AbsenceDetector) WithClock(now func() time.Time) *AbsenceDetector {
	d.now = now
	return d
}

// Detect emits one report per condition per user, ordered by user id so
// identical inputs yield identical output.
func (d *AbsenceDetector) Detect(ctx context.Context, date string) ([]model.AbsenceReport, error) {
	users, err := d.users.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	day := utils.MustParseDate(date)
	now := d.now()
	endOfDay := day.Add(time.Duration(endOfWorkDayMinutes) * time.Minute)
	afterEndOfDay := !now.Before(endOfDay)

	var reports []model.AbsenceReport
	for _, user := range users {
		schedule := d.schedules.Resolve(ctx, user.PrimaryProductType())
		if !schedule.WorksOn(day.Weekday()) {
			continue
		}

		records, err := d.records.GetRecordsForUserOnDate(ctx, user.ID, date)
		if err != nil {
			return nil, fmt.Errorf("records for %s on %s: %w", user.ID, date, err)
		}

		entry := utils.Find(records, func(r model.AttendanceRecord) bool { return r.Type == model.EventEntrada })
		exit := utils.Find(records, func(r model.AttendanceRecord) bool { return r.Type == model.EventSalida })
		lunch := utils.Find(records, func(r model.AttendanceRecord) bool { return r.Type == model.EventComida })

		if entry == nil {
			reports = append(reports, model.AbsenceReport{
				UserID:  user.ID,
				Date:    date,
				Type:    model.AbsenceNoEntry,
				Message: fmt.Sprintf("Sin entrada registrada el %s", date),
			})
			continue
		}

		if exit == nil && afterEndOfDay {
			reports = append(reports, model.AbsenceReport{
				UserID:  user.ID,
				Date:    date,
				Type:    model.AbsenceNoExit,
				Message: fmt.Sprintf("Entrada a las %s sin salida registrada", entry.Timestamp.In(utils.MexicoCityTZ).Format("15:04")),
			})
		}

		if lunch != nil && exit == nil && now.Sub(lunch.Timestamp) > extendedLunchLimit {
			reports = append(reports, model.AbsenceReport{
				UserID:  user.ID,
				Date:    date,
				Type:    model.AbsenceExtendedLunch,
				Message: fmt.Sprintf("Comida iniciada a las %s sin evento posterior", lunch.Timestamp.In(utils.MexicoCityTZ).Format("15:04")),
			})
		}
	}

	return reports, nil
}
