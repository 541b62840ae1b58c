package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
)

// Notifier is the external notification collaborator. Delivery failures are
// logged here, never retried; the collaborator owns its own retry policy.
type Notifier interface {
	AlertSupervisors(ctx context.Context, subject string, lines []string) error
	PageAdministrators(ctx context.Context, subject string, lines []string) error
	RemindUser(ctx context.Context, userID, message string) error
}

// MediaCleaner purges photos and other media older than a retention window.
type MediaCleaner interface {
	PurgeMediaBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportMailer emails the daily workbook to administrators.
type ReportMailer interface {
	SendReport(ctx context.Context, subject, text, filename string, attachment []byte) error
}

const staleSessionAge = 12 * time.Hour

// Monitors owns the periodic job bodies. Each is a thin driver over the core
// components; all of them are safe to re-run for the same date.
type Monitors struct {
	records   core.RecordStore
	users     core.UserDirectory
	schedules *core.ScheduleResolver
	absences  *core.AbsenceDetector
	issues    *core.IssueAggregator
	stats     core.StatsStore
	notifier  Notifier
	cleaner   MediaCleaner
	exporter  *StatsExporter
	mailer    ReportMailer

	retentionDays int
	now           func() time.Time
}

func NewMonitors(
	records core.RecordStore,
	users core.UserDirectory,
	schedules *core.ScheduleResolver,
	absences *core.AbsenceDetector,
	issues *core.IssueAggregator,
	stats core.StatsStore,
	notifier Notifier,
	cleaner MediaCleaner,
	retentionDays int,
) *Monitors {
	return &Monitors{
		records:       records,
		users:         users,
		schedules:     schedules,
		absences:      absences,
		issues:        issues,
		stats:         stats,
		notifier:      notifier,
		cleaner:       cleaner,
		retentionDays: retentionDays,
		now:           utils.LocalNow,
	}
}

func (m *Monitors) WithClock(now func() time.Time) *Monitors {
	m.now = now
	return m
}

// WithExporter attaches a workbook exporter used by the stats rollup.
func (m *Monitors) WithExporter(exporter *StatsExporter) *Monitors {
	m.exporter = exporter
	return m
}

// WithMailer attaches an administrator report mailer used by the stats rollup.
func (m *Monitors) WithMailer(mailer ReportMailer) *Monitors {
	m.mailer = mailer
	return m
}

// DetectAbsences finds users expected to work today with missing events and
// forwards the reports to supervisors.
func (m *Monitors) DetectAbsences(ctx context.Context) error {
	date := utils.DateKey(m.now())
	reports, err := m.absences.Detect(ctx, date)
	if err != nil {
		return fmt.Errorf("absence detection for %s: %w", date, err)
	}
	if len(reports) == 0 {
		return nil
	}

	lines := utils.Map(reports, func(r model.AbsenceReport) string {
		return fmt.Sprintf("[%s] %s: %s", r.Type, r.UserID, r.Message)
	})
	m.notify(ctx, fmt.Sprintf("Ausencias detectadas %s (%d)", date, len(reports)), lines)
	return nil
}

// Reminder windows: event type -> start of the window in minutes since
// midnight. A reminder fires while now is inside [start, start+span).
var reminderWindows = []struct {
	event model.EventType
	start int
}{
	{model.EventEntrada, 8 * 60},
	{model.EventComida, 12 * 60},
	{model.EventSalida, 17 * 60},
}

const reminderSpanMinutes = 45

// SendReminders nudges active users who have not yet recorded the event
// expected in the current time-of-day window.
func (m *Monitors) SendReminders(ctx context.Context) error {
	now := m.now()
	minutes := utils.MinutesSinceMidnight(now)
	date := utils.DateKey(now)

	var due []model.EventType
	for _, w := range reminderWindows {
		if minutes >= w.start && minutes < w.start+reminderSpanMinutes {
			due = append(due, w.event)
		}
	}
	if len(due) == 0 {
		return nil
	}

	users, err := m.users.ListActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	for _, user := range users {
		schedule := m.schedules.Resolve(ctx, user.PrimaryProductType())
		if !schedule.WorksOn(now.Weekday()) {
			continue
		}

		records, err := m.records.GetRecordsForUserOnDate(ctx, user.ID, date)
		if err != nil {
			return fmt.Errorf("records for %s: %w", user.ID, err)
		}
		recorded := make(map[model.EventType]bool, len(records))
		for _, r := range records {
			recorded[r.Type] = true
		}

		for _, event := range due {
			if recorded[event] {
				continue
			}
			// COMIDA and SALIDA reminders only make sense once the day started.
			if event != model.EventEntrada && !recorded[model.EventEntrada] {
				continue
			}
			msg := reminderMessage(event)
			if err := m.notifier.RemindUser(ctx, user.ID, msg); err != nil {
				log.Printf("reminder to %s failed: %v", user.ID, err)
			}
		}
	}
	return nil
}

func reminderMessage(event model.EventType) string {
	switch event {
	case model.EventEntrada:
		return "Recuerda registrar tu entrada"
	case model.EventComida:
		return "Recuerda registrar tu comida"
	default:
		return "Recuerda registrar tu salida"
	}
}

// AlertLateArrivals forwards today's LATE_ENTRY issues to supervisors.
func (m *Monitors) AlertLateArrivals(ctx context.Context) error {
	return m.alertIssues(ctx, model.IssueLateEntry, "Entradas tardías")
}

// AlertLocationViolations forwards today's INVALID_LOCATION issues to
// supervisors.
func (m *Monitors) AlertLocationViolations(ctx context.Context) error {
	return m.alertIssues(ctx, model.IssueInvalidLocation, "Registros fuera de ubicación")
}

func (m *Monitors) alertIssues(ctx context.Context, issueType model.IssueType, subject string) error {
	date := utils.DateKey(m.now())
	issues, err := m.issues.Aggregate(ctx, date)
	if err != nil {
		return fmt.Errorf("aggregate issues for %s: %w", date, err)
	}

	filtered := utils.Filter(issues, func(i model.AttendanceIssue) bool { return i.Type == issueType })
	if len(filtered) == 0 {
		return nil
	}

	lines := utils.Map(filtered, func(i model.AttendanceIssue) string {
		return fmt.Sprintf("[%s] %s: %s", i.Severity, i.UserID, i.Message)
	})
	m.notify(ctx, fmt.Sprintf("%s %s (%d)", subject, date, len(filtered)), lines)
	return nil
}

// FlagStaleSessions marks ENTRADA records open for more than 12 hours for
// administrative closure. It never fabricates a SALIDA.
func (m *Monitors) FlagStaleSessions(ctx context.Context) error {
	now := m.now()

	// Open sessions can only live on today's or yesterday's date partition.
	dates := []string{utils.DateKey(now.AddDate(0, 0, -1)), utils.DateKey(now)}
	var flagged []string

	for _, date := range dates {
		records, err := m.records.GetAllRecordsForDate(ctx, date)
		if err != nil {
			return fmt.Errorf("records for %s: %w", date, err)
		}

		byUser := utils.GroupBy(records, func(r model.AttendanceRecord) string { return r.UserID })
		for _, userRecords := range byUser {
			var entry *model.AttendanceRecord
			var hasExit bool
			for i := range userRecords {
				switch userRecords[i].Type {
				case model.EventEntrada:
					entry = &userRecords[i]
				case model.EventSalida:
					hasExit = true
				}
			}
			if entry == nil || hasExit || entry.FlaggedForClosure {
				continue
			}
			if now.Sub(entry.Timestamp) < staleSessionAge {
				continue
			}
			if err := m.records.FlagRecordForClosure(ctx, entry.ID); err != nil {
				return fmt.Errorf("flag record %s: %w", entry.ID, err)
			}
			flagged = append(flagged, fmt.Sprintf("%s (entrada %s)", entry.UserID, entry.Timestamp.In(utils.MexicoCityTZ).Format("02/01 15:04")))
		}
	}

	if len(flagged) > 0 {
		m.notify(ctx, fmt.Sprintf("Sesiones abiertas >12h (%d)", len(flagged)), flagged)
	}
	return nil
}

// RollupStats computes and persists the prior day's aggregate statistics.
// The upsert key makes re-runs idempotent.
func (m *Monitors) RollupStats(ctx context.Context) error {
	date := utils.DateKey(m.now().AddDate(0, 0, -1))

	stats, err := m.buildDailyStats(ctx, date)
	if err != nil {
		return err
	}
	if err := m.stats.UpsertDailyStats(ctx, stats); err != nil {
		return fmt.Errorf("upsert stats for %s: %w", date, err)
	}

	if m.exporter != nil {
		workbook, err := m.exporter.Export(ctx, stats)
		if err != nil {
			// Workbook export is reporting sugar, not the rollup itself.
			log.Printf("stats export for %s failed: %v", date, err)
			return nil
		}
		if m.mailer != nil {
			subject := fmt.Sprintf("Resumen de asistencia %s", date)
			body := fmt.Sprintf("Adjunto el resumen de asistencia del %s.", date)
			if err := m.mailer.SendReport(ctx, subject, body, stats.Key+".xlsx", workbook); err != nil {
				log.Printf("report mail for %s failed: %v", date, err)
			}
		}
	}
	return nil
}

func (m *Monitors) buildDailyStats(ctx context.Context, date string) (*model.DailyStats, error) {
	records, err := m.records.GetAllRecordsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("records for %s: %w", date, err)
	}
	reports, err := m.absences.Detect(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("absences for %s: %w", date, err)
	}

	stats := &model.DailyStats{Key: model.StatsKey(date), Date: date, TotalRecords: len(records), Absences: len(reports)}
	for _, r := range records {
		switch r.Type {
		case model.EventEntrada:
			stats.TotalEntries++
			switch r.Punctuality {
			case model.PunctualityOnTime, model.PunctualityEarly:
				stats.OnTimeEntries++
			case model.PunctualityLate:
				stats.LateEntries++
			}
		case model.EventSalida:
			stats.TotalExits++
		}
		if !r.IsLocationValid {
			stats.InvalidLocations++
		}
	}
	return stats, nil
}

type HealthLevel string

const (
	HealthHealthy  HealthLevel = "HEALTHY"
	HealthCaution  HealthLevel = "CAUTION"
	HealthWarning  HealthLevel = "WARNING"
	HealthCritical HealthLevel = "CRITICAL"
)

// CheckHealth derives a severity level from today's issue counts and pages
// administrators when it reaches CRITICAL.
func (m *Monitors) CheckHealth(ctx context.Context) error {
	date := utils.DateKey(m.now())
	issues, err := m.issues.Aggregate(ctx, date)
	if err != nil {
		return fmt.Errorf("aggregate issues for %s: %w", date, err)
	}

	level := healthLevel(issues)
	log.Printf("health check %s: %s (%d issues)", date, level, len(issues))

	if level == HealthCritical {
		lines := utils.Map(issues, func(i model.AttendanceIssue) string {
			return fmt.Sprintf("[%s/%s] %s: %s", i.Severity, i.Type, i.UserID, i.Message)
		})
		if err := m.notifier.PageAdministrators(ctx, fmt.Sprintf("Estado CRÍTICO %s", date), lines); err != nil {
			log.Printf("admin page failed: %v", err)
		}
	}
	return nil
}

func healthLevel(issues []model.AttendanceIssue) HealthLevel {
	var high, medium int
	for _, i := range issues {
		switch i.Severity {
		case model.SeverityCritical:
			return HealthCritical
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		}
	}
	if high > 5 {
		return HealthWarning
	}
	if medium > 10 {
		return HealthCaution
	}
	return HealthHealthy
}

// CleanupOldData purges records and media past the retention window.
func (m *Monitors) CleanupOldData(ctx context.Context) error {
	cutoff := m.now().AddDate(0, 0, -m.retentionDays)

	deleted, err := m.records.DeleteRecordsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete records before %s: %w", cutoff.Format("2006-01-02"), err)
	}

	var media int64
	if m.cleaner != nil {
		media, err = m.cleaner.PurgeMediaBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("purge media: %w", err)
		}
	}

	log.Printf("cleanup: %d records and %d media objects older than %d days removed", deleted, media, m.retentionDays)
	return nil
}

// notify forwards lines to supervisors, logging delivery failures only.
func (m *Monitors) notify(ctx context.Context, subject string, lines []string) {
	if err := m.notifier.AlertSupervisors(ctx, subject, lines); err != nil {
		log.Printf("notification %q failed: %v", subject, err)
	}
}
