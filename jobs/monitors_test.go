package jobs

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/store"
	"puntocheck.com/puntocheck/utils"
)

type fakeNotifier struct {
	mu        sync.Mutex
	alerts    []string
	pages     []string
	reminders map[string][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{reminders: make(map[string][]string)}
}

func (n *fakeNotifier) AlertSupervisors(ctx context.Context, subject string, lines []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, subject)
	return nil
}

func (n *fakeNotifier) PageAdministrators(ctx context.Context, subject string, lines []string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pages = append(n.pages, subject)
	return nil
}

func (n *fakeNotifier) RemindUser(ctx context.Context, userID, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders[userID] = append(n.reminders[userID], message)
	return nil
}

type fakeCleaner struct {
	cutoff  time.Time
	deleted int64
}

func (c *fakeCleaner) PurgeMediaBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	c.cutoff = cutoff
	return c.deleted, nil
}

type monitorFixture struct {
	monitors *Monitors
	records  *store.MemoryRecordStore
	stats    *store.MemoryStatsStore
	notifier *fakeNotifier
	cleaner  *fakeCleaner
}

func newMonitorFixture(now time.Time, users ...model.UserContext) *monitorFixture {
	records := store.NewMemoryRecordStore()
	directory := store.NewMemoryUserDirectory(users...)
	schedules := store.NewMemoryScheduleStore(
		model.WorkSchedule{
			ProductType: "PUNTOCHECK_GO", EntryTime: "09:00", ExitTime: "18:00",
			ToleranceMinutes: 10, WorkDays: "1,2,3,4,5", IsActive: true,
		},
		model.WorkSchedule{
			ProductType: "WEEKEND", EntryTime: "09:00", ExitTime: "18:00",
			ToleranceMinutes: 10, WorkDays: "6,0", IsActive: true,
		},
	)
	resolver := core.NewScheduleResolver(schedules)
	clock := func() time.Time { return now }

	absences := core.NewAbsenceDetector(records, directory, resolver).WithClock(clock)
	issues := core.NewIssueAggregator(records)
	stats := store.NewMemoryStatsStore()
	notifier := newFakeNotifier()
	cleaner := &fakeCleaner{deleted: 7}

	monitors := NewMonitors(records, directory, resolver, absences, issues, stats, notifier, cleaner, 90).WithClock(clock)
	return &monitorFixture{monitors: monitors, records: records, stats: stats, notifier: notifier, cleaner: cleaner}
}

func weekdayWorker(id string) model.UserContext {
	return model.UserContext{ID: id, Status: model.UserActive, ProductTypes: []string{"PUNTOCHECK_GO"}}
}

func seedRecord(t *testing.T, records *store.MemoryRecordStore, r model.AttendanceRecord) {
	t.Helper()
	if r.Date == "" {
		r.Date = utils.DateKey(r.Timestamp)
	}
	_, err := records.InsertRecord(context.Background(), &r)
	assert.NoError(t, err)
}

func TestDetectAbsencesNotifiesSupervisors(t *testing.T) {
	evening := time.Date(2026, 3, 4, 18, 30, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(evening, weekdayWorker("user-1"))

	assert.NoError(t, f.monitors.DetectAbsences(context.Background()))
	if assert.Len(t, f.notifier.alerts, 1) {
		assert.Contains(t, f.notifier.alerts[0], "Ausencias")
	}
}

func TestDetectAbsencesQuietWhenClean(t *testing.T) {
	evening := time.Date(2026, 3, 4, 18, 30, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(evening, weekdayWorker("user-1"))
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "e1", UserID: "user-1", Type: model.EventEntrada,
		Timestamp: time.Date(2026, 3, 4, 9, 0, 0, 0, utils.MexicoCityTZ),
	})
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "s1", UserID: "user-1", Type: model.EventSalida,
		Timestamp: time.Date(2026, 3, 4, 18, 5, 0, 0, utils.MexicoCityTZ),
	})

	assert.NoError(t, f.monitors.DetectAbsences(context.Background()))
	assert.Empty(t, f.notifier.alerts)
}

func TestSendRemindersEntryWindow(t *testing.T) {
	morning := time.Date(2026, 3, 4, 8, 10, 0, 0, utils.MexicoCityTZ)
	weekendUser := model.UserContext{ID: "user-weekend", Status: model.UserActive, ProductTypes: []string{"WEEKEND"}}
	f := newMonitorFixture(morning, weekdayWorker("user-1"), weekdayWorker("user-2"), weekendUser)

	// user-2 already clocked in
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "e2", UserID: "user-2", Type: model.EventEntrada,
		Timestamp: time.Date(2026, 3, 4, 7, 55, 0, 0, utils.MexicoCityTZ),
	})

	assert.NoError(t, f.monitors.SendReminders(context.Background()))

	assert.Len(t, f.notifier.reminders["user-1"], 1)
	assert.Contains(t, f.notifier.reminders["user-1"][0], "entrada")
	assert.Empty(t, f.notifier.reminders["user-2"])
	assert.Empty(t, f.notifier.reminders["user-weekend"]) // Wednesday is not their work day
}

func TestSendRemindersLunchNeedsEntryFirst(t *testing.T) {
	noon := time.Date(2026, 3, 4, 12, 10, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(noon, weekdayWorker("user-1"), weekdayWorker("user-2"))

	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "e1", UserID: "user-1", Type: model.EventEntrada,
		Timestamp: time.Date(2026, 3, 4, 9, 0, 0, 0, utils.MexicoCityTZ),
	})

	assert.NoError(t, f.monitors.SendReminders(context.Background()))

	assert.Len(t, f.notifier.reminders["user-1"], 1)
	assert.Contains(t, f.notifier.reminders["user-1"][0], "comida")
	// no entry yet, a lunch reminder would only confuse
	assert.Empty(t, f.notifier.reminders["user-2"])
}

func TestSendRemindersOutsideAnyWindow(t *testing.T) {
	midAfternoon := time.Date(2026, 3, 4, 15, 0, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(midAfternoon, weekdayWorker("user-1"))

	assert.NoError(t, f.monitors.SendReminders(context.Background()))
	assert.Empty(t, f.notifier.reminders)
}

func TestAlertLateArrivals(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(now)
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "e1", UserID: "user-1", Type: model.EventEntrada,
		Timestamp:   time.Date(2026, 3, 4, 9, 40, 0, 0, utils.MexicoCityTZ),
		Punctuality: model.PunctualityLate, IsLocationValid: true, PhotoRef: "p.jpg",
	})

	assert.NoError(t, f.monitors.AlertLateArrivals(context.Background()))
	if assert.Len(t, f.notifier.alerts, 1) {
		assert.Contains(t, f.notifier.alerts[0], "tardías")
	}

	// location alert has nothing to report for the same day
	assert.NoError(t, f.monitors.AlertLocationViolations(context.Background()))
	assert.Len(t, f.notifier.alerts, 1)
}

func TestFlagStaleSessions(t *testing.T) {
	now := time.Date(2026, 3, 4, 22, 30, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(now)

	// yesterday, never closed: stale
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "stale-1", UserID: "user-1", Type: model.EventEntrada,
		Timestamp: time.Date(2026, 3, 3, 9, 0, 0, 0, utils.MexicoCityTZ),
	})
	// today, recent: not stale
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "fresh", UserID: "user-2", Type: model.EventEntrada,
		Timestamp: time.Date(2026, 3, 4, 21, 0, 0, 0, utils.MexicoCityTZ),
	})
	// today, open for more than 12h: stale
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "stale-2", UserID: "user-3", Type: model.EventEntrada,
		Timestamp: time.Date(2026, 3, 4, 8, 0, 0, 0, utils.MexicoCityTZ),
	})
	// properly closed day
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "closed-e", UserID: "user-4", Type: model.EventEntrada,
		Timestamp: time.Date(2026, 3, 3, 9, 0, 0, 0, utils.MexicoCityTZ),
	})
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "closed-s", UserID: "user-4", Type: model.EventSalida,
		Timestamp: time.Date(2026, 3, 3, 18, 0, 0, 0, utils.MexicoCityTZ),
	})

	assert.NoError(t, f.monitors.FlagStaleSessions(context.Background()))

	flagged := make(map[string]bool)
	for _, r := range f.records.All() {
		flagged[r.ID] = r.FlaggedForClosure
	}
	assert.True(t, flagged["stale-1"])
	assert.True(t, flagged["stale-2"])
	assert.False(t, flagged["fresh"])
	assert.False(t, flagged["closed-e"])
	assert.Len(t, f.notifier.alerts, 1)

	// re-run: everything already flagged, no second alert
	assert.NoError(t, f.monitors.FlagStaleSessions(context.Background()))
	assert.Len(t, f.notifier.alerts, 1)
}

type bufferUploader struct {
	key  string
	data []byte
}

func (u *bufferUploader) UploadFile(ctx context.Context, key string, body io.Reader) error {
	u.key = key
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	u.data = data
	return nil
}

type fakeMailer struct {
	subject  string
	filename string
	size     int
}

func (m *fakeMailer) SendReport(ctx context.Context, subject, text, filename string, attachment []byte) error {
	m.subject = subject
	m.filename = filename
	m.size = len(attachment)
	return nil
}

func TestRollupStats(t *testing.T) {
	// runs the morning after the day being rolled up
	now := time.Date(2026, 3, 5, 6, 0, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(now, weekdayWorker("user-1"), weekdayWorker("user-2"), weekdayWorker("user-3"))
	uploader := &bufferUploader{}
	mailer := &fakeMailer{}
	f.monitors.WithExporter(NewStatsExporter(uploader)).WithMailer(mailer)

	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 4, hour, minute, 0, 0, utils.MexicoCityTZ)
	}
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "e1", UserID: "user-1", Type: model.EventEntrada, Timestamp: at(9, 30),
		Punctuality: model.PunctualityLate, IsLocationValid: true,
	})
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "s1", UserID: "user-1", Type: model.EventSalida, Timestamp: at(18, 5),
		Punctuality: model.PunctualityOnTime, IsLocationValid: true,
	})
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "e2", UserID: "user-2", Type: model.EventEntrada, Timestamp: at(9, 0),
		Punctuality: model.PunctualityOnTime, IsLocationValid: false,
	})
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "s2", UserID: "user-2", Type: model.EventSalida, Timestamp: at(18, 0),
		Punctuality: model.PunctualityOnTime, IsLocationValid: true,
	})
	// user-3 never showed up

	assert.NoError(t, f.monitors.RollupStats(context.Background()))

	stats, err := f.stats.GetDailyStats(context.Background(), "2026-03-04")
	assert.NoError(t, err)
	if assert.NotNil(t, stats) {
		assert.Equal(t, 4, stats.TotalRecords)
		assert.Equal(t, 2, stats.TotalEntries)
		assert.Equal(t, 2, stats.TotalExits)
		assert.Equal(t, 1, stats.OnTimeEntries)
		assert.Equal(t, 1, stats.LateEntries)
		assert.Equal(t, 1, stats.InvalidLocations)
		assert.Equal(t, 1, stats.Absences)
	}

	assert.Equal(t, "reports/stats_2026-03-04.xlsx", uploader.key)
	workbook, err := excelize.OpenReader(bytes.NewReader(uploader.data))
	assert.NoError(t, err)
	defer workbook.Close()
	label, err := workbook.GetCellValue("Resumen", "A1")
	assert.NoError(t, err)
	assert.Equal(t, "Fecha", label)

	assert.Equal(t, "stats_2026-03-04.xlsx", mailer.filename)
	assert.Contains(t, mailer.subject, "2026-03-04")
	assert.Equal(t, len(uploader.data), mailer.size)

	// re-run is an upsert, not a duplicate
	assert.NoError(t, f.monitors.RollupStats(context.Background()))
	again, err := f.stats.GetDailyStats(context.Background(), "2026-03-04")
	assert.NoError(t, err)
	assert.Equal(t, stats, again)
}

func TestHealthLevel(t *testing.T) {
	issue := func(severity model.IssueSeverity) model.AttendanceIssue {
		return model.AttendanceIssue{Severity: severity}
	}
	repeat := func(severity model.IssueSeverity, n int) []model.AttendanceIssue {
		out := make([]model.AttendanceIssue, n)
		for i := range out {
			out[i] = issue(severity)
		}
		return out
	}

	tests := []struct {
		name     string
		issues   []model.AttendanceIssue
		expected HealthLevel
	}{
		{"no issues", nil, HealthHealthy},
		{"few medium issues", repeat(model.SeverityMedium, 5), HealthHealthy},
		{"many medium issues", repeat(model.SeverityMedium, 11), HealthCaution},
		{"few high issues", repeat(model.SeverityHigh, 5), HealthHealthy},
		{"many high issues", repeat(model.SeverityHigh, 6), HealthWarning},
		{"one critical outweighs everything", append(repeat(model.SeverityLow, 3), issue(model.SeverityCritical)), HealthCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, healthLevel(tt.issues))
		})
	}
}

func TestCheckHealth(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(now)

	assert.NoError(t, f.monitors.CheckHealth(context.Background()))
	assert.Empty(t, f.notifier.pages) // healthy day, nobody gets paged
}

func TestCleanupOldData(t *testing.T) {
	now := time.Date(2026, 3, 4, 3, 0, 0, 0, utils.MexicoCityTZ)
	f := newMonitorFixture(now)

	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "ancient", UserID: "user-1", Type: model.EventEntrada,
		Timestamp: now.AddDate(0, 0, -120),
	})
	seedRecord(t, f.records, model.AttendanceRecord{
		ID: "recent", UserID: "user-1", Type: model.EventEntrada,
		Timestamp: now.AddDate(0, 0, -5),
	})

	assert.NoError(t, f.monitors.CleanupOldData(context.Background()))

	remaining := f.records.All()
	if assert.Len(t, remaining, 1) {
		assert.Equal(t, "recent", remaining[0].ID)
	}
	assert.Equal(t, now.AddDate(0, 0, -90), f.cleaner.cutoff)
}
