package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"puntocheck.com/puntocheck/core"
	"puntocheck.com/puntocheck/infrastructure/communication"
	"puntocheck.com/puntocheck/infrastructure/devops"
	"puntocheck.com/puntocheck/infrastructure/filesystem"
	"puntocheck.com/puntocheck/lambdas/kioskimport/helper"
	"puntocheck.com/puntocheck/store"
)

// Offline kiosks buffer punches locally and upload a CSV batch once they are
// back online. The upload lands in S3 and this handler replays each punch
// through the same validation path as a live check-in.

func newService(cfg *devops.Config) (*core.AttendanceService, *core.DatabaseManager, error) {
	dm, err := core.NewDatabaseManager(cfg.DSN, cfg.MaxConnections, core.LogLevelError)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	records := store.NewGormRecordStore(dm.DB())
	users := store.NewGormUserDirectory(dm.DB())
	checkpoints := store.NewGormCheckpointDirectory(dm.DB())
	resolver := core.NewScheduleResolver(store.NewGormScheduleStore(dm.DB()))

	service := core.NewAttendanceService(records, users, checkpoints, resolver)
	service.RejectInvalidLocation = cfg.RejectInvalidLocation
	return service, dm, nil
}

func importFile(ctx context.Context, service *core.AttendanceService, bucket, key string) (imported, rejected int, err error) {
	fs, err := filesystem.New(ctx, bucket)
	if err != nil {
		return 0, 0, fmt.Errorf("open bucket %s: %w", bucket, err)
	}

	var stream bytes.Buffer
	if err := fs.ReadFile(ctx, key, &stream); err != nil {
		return 0, 0, err
	}

	punches, err := helper.ParseKioskCSV(&stream)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", key, err)
	}

	for _, punch := range punches {
		_, err := service.RecordEvent(ctx, punch.ToInput())
		if err == nil {
			imported++
			continue
		}
		// Kiosks re-upload batches after failed transfers, so duplicates and
		// other business rejections are expected; only infrastructure
		// failures abort the batch.
		if core.IsRejection(err) {
			fmt.Printf("[INFO] punch rejected for %s: %v\n", punch.UserID, err)
			rejected++
			continue
		}
		return imported, rejected, fmt.Errorf("record punch for %s: %w", punch.UserID, err)
	}
	return imported, rejected, nil
}

func HandleRequest(ctx context.Context, event events.S3Event) error {
	cfg, err := devops.Load(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	service, dm, err := newService(cfg)
	if err != nil {
		return err
	}
	defer dm.Close()

	slack := communication.ConnectSlack()

	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key := record.S3.Object.Key
		fmt.Printf("[INFO] importing %s from %s\n", key, bucket)

		imported, rejected, err := importFile(ctx, service, bucket, key)
		if err != nil {
			if serr := slack.AlertSupervisors(ctx, "Error al importar lote de kiosco", []string{key, err.Error()}); serr != nil {
				fmt.Printf("[ERROR] slack notification failed: %v\n", serr)
			}
			return fmt.Errorf("import %s: %w", key, err)
		}
		fmt.Printf("[INFO] %s: %d imported, %d rejected\n", key, imported, rejected)
	}
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
