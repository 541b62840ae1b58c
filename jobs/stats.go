package jobs

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"puntocheck.com/puntocheck/model"
)

// WorkbookUploader stores the exported report, typically in S3.
type WorkbookUploader interface {
	UploadFile(ctx context.Context, key string, body io.Reader) error
}

// StatsExporter renders a day's rollup as an xlsx workbook for supervisors.
type StatsExporter struct {
	uploader WorkbookUploader
}

func NewStatsExporter(uploader WorkbookUploader) *StatsExporter {
	return &StatsExporter{uploader: uploader}
}

// Export uploads the workbook and returns its bytes for further delivery.
func (e *StatsExporter) Export(ctx context.Context, stats *model.DailyStats) ([]byte, error) {
	buf, err := BuildStatsWorkbook(stats)
	if err != nil {
		return nil, err
	}
	data := buf.Bytes()
	key := fmt.Sprintf("reports/%s.xlsx", stats.Key)
	if err := e.uploader.UploadFile(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	return data, nil
}

// BuildStatsWorkbook renders the rollup into a single-sheet workbook.
func BuildStatsWorkbook(stats *model.DailyStats) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Resumen"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Fecha", stats.Date},
		{"Registros totales", stats.TotalRecords},
		{"Entradas", stats.TotalEntries},
		{"Salidas", stats.TotalExits},
		{"Entradas a tiempo", stats.OnTimeEntries},
		{"Entradas tardías", stats.LateEntries},
		{"Ubicaciones inválidas", stats.InvalidLocations},
		{"Ausencias", stats.Absences},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}
