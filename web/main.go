package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/infrastructure/communication"
	"puntocheck.com/puntocheck/infrastructure/devops"
	"puntocheck.com/puntocheck/infrastructure/filesystem"
	"puntocheck.com/puntocheck/jobs"
	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/store"
	"puntocheck.com/puntocheck/web/handlers"
	"puntocheck.com/puntocheck/web/middlewares"
)

func main() {
	ctx := context.Background()

	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	dm, err := core.NewDatabaseManager(cfg.DSN, cfg.MaxConnections, core.LogLevelWarn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dm.Close()

	records := store.NewGormRecordStore(dm.DB())
	users := store.NewGormUserDirectory(dm.DB())
	checkpoints := store.NewGormCheckpointDirectory(dm.DB())
	schedules := store.NewGormScheduleStore(dm.DB())
	stats := store.NewGormStatsStore(dm.DB())

	resolver := core.NewScheduleResolver(schedules).WithFallback(func(productType string) model.WorkSchedule {
		return model.WorkSchedule{
			ProductType:      productType,
			EntryTime:        cfg.DefaultSchedule.EntryTime,
			ExitTime:         cfg.DefaultSchedule.ExitTime,
			ToleranceMinutes: cfg.DefaultSchedule.ToleranceMinutes,
			WorkDays:         cfg.DefaultSchedule.WorkDays,
			IsActive:         true,
		}
	})

	service := core.NewAttendanceService(records, users, checkpoints, resolver)
	service.RejectInvalidLocation = cfg.RejectInvalidLocation

	absences := core.NewAbsenceDetector(records, users, resolver)
	issues := core.NewIssueAggregator(records)

	if cfg.EnableBackgroundJobs {
		notifier := communication.ConnectSlack()

		var cleaner jobs.MediaCleaner
		if cfg.MediaBucket != "" {
			media, err := filesystem.New(ctx, cfg.MediaBucket)
			if err != nil {
				log.Fatalf("open media bucket: %v", err)
			}
			cleaner = media
		}

		monitors := jobs.NewMonitors(records, users, resolver, absences, issues, stats, notifier, cleaner, cfg.RetentionDays)
		if cfg.ReportBucket != "" {
			reports, err := filesystem.New(ctx, cfg.ReportBucket)
			if err != nil {
				log.Fatalf("open report bucket: %v", err)
			}
			monitors.WithExporter(jobs.NewStatsExporter(reports))
		}
		if cfg.ReportEmailFrom != "" && len(cfg.ReportEmailTo) > 0 {
			monitors.WithMailer(communication.NewEmail(cfg.ReportEmailFrom, cfg.ReportEmailTo))
		}

		scheduler := jobs.NewScheduler(cfg.JobWorkers, nil)
		defer scheduler.CancelAll()
		if err := monitors.RegisterAll(scheduler, cfg.JobOverrides()); err != nil {
			log.Fatalf("register jobs: %v", err)
		}
	}

	handler := handlers.NewAttendanceHandler(service, records, issues, absences, stats)

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api/v1")
	protected.Use(middlewares.Authentication(middlewares.Secret()))
	{
		protected.POST("/attendance", handler.Record)
		protected.GET("/attendance/:userId", handler.Day)
		protected.GET("/issues/:date", handler.Issues)
		protected.GET("/stats/:date", handler.Stats)
		protected.POST("/reports/absences", handler.Absences)
	}

	r.Run(cfg.ListenAddr)
}
