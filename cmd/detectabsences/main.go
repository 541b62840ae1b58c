package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/infrastructure/devops"
	"puntocheck.com/puntocheck/store"
	"puntocheck.com/puntocheck/utils"
)

// One-shot absence scan for a date, for operators investigating a day without
// waiting for the periodic job.
func main() {
	date := flag.String("date", utils.DateKey(utils.LocalNow()), "date to scan (yyyy-MM-dd)")
	flag.Parse()

	if _, err := time.Parse("2006-01-02", *date); err != nil {
		log.Fatalf("invalid date %q: %v", *date, err)
	}

	ctx := context.Background()
	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	dm, err := core.NewDatabaseManager(cfg.DSN, cfg.MaxConnections, core.LogLevelError)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dm.Close()

	records := store.NewGormRecordStore(dm.DB())
	users := store.NewGormUserDirectory(dm.DB())
	resolver := core.NewScheduleResolver(store.NewGormScheduleStore(dm.DB()))

	detector := core.NewAbsenceDetector(records, users, resolver)
	reports, err := detector.Detect(ctx, *date)
	if err != nil {
		log.Fatalf("detect absences: %v", err)
	}

	if len(reports) == 0 {
		fmt.Printf("no absences on %s\n", *date)
		return
	}
	for _, r := range reports {
		fmt.Printf("%-14s %-22s %s\n", r.Type, r.UserID, r.Message)
	}
}
