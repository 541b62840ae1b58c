package helper

import (
	"strings"
	"testing"
	"time"

	"puntocheck.com/puntocheck/model"
	"puntocheck.com/puntocheck/utils"
)

func TestParseKioskCSV(t *testing.T) {
	csvData := `userId,type,timestamp,checkpointId,productType,latitude,longitude
user-1,SALIDA,2026-03-04T18:02:00-06:00,cp-1,PUNTOCHECK_GO,19.4326,-99.1332
user-1,ENTRADA,2026-03-04T09:01:00-06:00,cp-1,PUNTOCHECK_GO,19.4326,-99.1332
user-2,ENTRADA,2026-03-04T09:15:00-06:00,cp-1,PUNTOCHECK_GO,,
`
	punches, err := ParseKioskCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(punches) != 3 {
		t.Fatalf("expected 3 punches, got %d", len(punches))
	}

	// rows come back ordered by timestamp so replay respects the event sequence
	if punches[0].Type != model.EventEntrada || punches[0].UserID != "user-1" {
		t.Errorf("unexpected first punch: %+v", punches[0])
	}
	if punches[2].Type != model.EventSalida {
		t.Errorf("expected SALIDA last, got %+v", punches[2])
	}

	if punches[0].Latitude == nil || *punches[0].Latitude != 19.4326 {
		t.Errorf("unexpected latitude: %+v", punches[0].Latitude)
	}
	if punches[1].Latitude != nil {
		t.Errorf("expected nil latitude for coordinate-less punch, got %+v", punches[1].Latitude)
	}
}

func TestParseKioskCSVAcceptsNaiveTimestamps(t *testing.T) {
	// Older kiosk firmware exports local timestamps without a zone offset;
	// those are interpreted as Mexico City time.
	csvData := `userId,type,timestamp,checkpointId,productType,latitude,longitude
user-1,ENTRADA,2026-03-04T09:01:00,cp-1,PUNTOCHECK_GO,,
`
	punches, err := ParseKioskCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(punches) != 1 {
		t.Fatalf("expected 1 punch, got %d", len(punches))
	}

	want := time.Date(2026, 3, 4, 9, 1, 0, 0, utils.MexicoCityTZ)
	if !punches[0].Timestamp.Equal(want) {
		t.Errorf("expected %s, got %s", want, punches[0].Timestamp)
	}
}

func TestParseKioskCSVRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "bad event type",
			csv: `userId,type,timestamp,checkpointId,productType,latitude,longitude
user-1,ALMUERZO,2026-03-04T09:01:00-06:00,cp-1,PUNTOCHECK_GO,,
`,
		},
		{
			name: "bad timestamp",
			csv: `userId,type,timestamp,checkpointId,productType,latitude,longitude
user-1,ENTRADA,04/03/2026 09:01,cp-1,PUNTOCHECK_GO,,
`,
		},
		{
			name: "missing columns",
			csv: `userId,type,timestamp
user-1,ENTRADA,2026-03-04T09:01:00-06:00
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseKioskCSV(strings.NewReader(tt.csv)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
