package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
	"github.com/noah-isme/tempo-schedule-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
)

var scheduleExportHeaders = []string{"Day", "Time", "Class", "Instructor", "Instructor Name", "Locked"}

type scheduleReader interface {
	State() models.ScheduleState
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// pdfRenderer and workbookRenderer take a document title and a sheet name respectively.
type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type workbookRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportResult is a rendered schedule document.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the current schedule as CSV, PDF or an Excel workbook.
type ExportService struct {
	schedules scheduleReader
	csv       csvRenderer
	pdf       pdfRenderer
	xlsx      workbookRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers default to the package exporters.
func NewExportService(schedules scheduleReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		exporter := export.NewPDFExporter(export.Landscape)
		exporter.GroupBy = "Day"
		pdf = exporter
	}
	return &ExportService{schedules: schedules, csv: csv, pdf: pdf, xlsx: export.NewXLSXExporter(), logger: logger, now: time.Now}
}

// Export renders the schedule in the requested format. An empty format means CSV.
func (s *ExportService) Export(format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}

	dataset := BuildScheduleDataset(s.schedules.State())
	stamp := s.now().UTC().Format("20060102-150405")

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: fmt.Sprintf("schedule-%s.csv", stamp), ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dataset, "Weekly Class Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Filename: fmt.Sprintf("schedule-%s.pdf", stamp), ContentType: "application/pdf", Data: data}, nil
	case ExportFormatXLSX:
		data, err := s.xlsx.Render(dataset, "Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("schedule-%s.xlsx", stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// BuildScheduleDataset flattens every offered class into one row, ordered by day, time and class type.
func BuildScheduleDataset(state models.ScheduleState) export.Dataset {
	names := make(map[string]string, len(state.Instructors))
	for _, in := range state.Instructors {
		names[in.ID] = in.Name
	}

	dataset := export.Dataset{Headers: scheduleExportHeaders}
	if state.Schedule == nil {
		return dataset
	}
	for d := 0; d < models.DayCount; d++ {
		for tm := 0; tm < models.TimeCount; tm++ {
			for t := 0; t < models.ClassTypeCount; t++ {
				cell := state.Schedule.At(d, t, tm)
				if !cell.Offered() {
					continue
				}
				day, classType, slotTime := models.DayAt(d), models.ClassTypeAt(t), models.TimeAt(tm)
				_, locked := state.LockedAssignments.Get(day, classType, slotTime)
				lockedLabel := "No"
				if locked {
					lockedLabel = "Yes"
				}
				dataset.Rows = append(dataset.Rows, map[string]string{
					"Day":             day,
					"Time":            slotTime,
					"Class":           classType,
					"Instructor":      cell.Value(),
					"Instructor Name": names[cell.InstructorID],
					"Locked":          lockedLabel,
				})
			}
		}
	}
	return dataset
}
