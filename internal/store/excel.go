package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/shsnge/job-application-monitor/internal/models"
)

// headers are the workbook columns, written once when the file is created.
var headers = []string{
	"Timestamp", "Name", "Email", "Phone", "Position",
	"Score", "Feedback", "Status", "Resume", "Subject", "Message ID",
}

// ExcelSink appends application records as rows of a local .xlsx workbook.
// The sink is the only writer, so the next-row cursor is read from the sheet
// once and tracked from then on.
type ExcelSink struct {
	path    string
	sheet   string
	mu      sync.Mutex
	nextRow int
}

// NewExcelSink creates a sink writing to the given workbook path and sheet.
func NewExcelSink(path, sheet string) *ExcelSink {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	if sheet == "" {
		sheet = "Applications"
	}
	return &ExcelSink{path: path, sheet: sheet}
}

// Append adds one row. The workbook is opened per append so every committed
// record is on disk when the call returns.
func (s *ExcelSink) Append(ctx context.Context, rec models.ApplicationRecord) (StoreRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := s.open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if s.nextRow == 0 {
		rows, err := f.GetRows(s.sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", s.sheet, err)
		}
		s.nextRow = len(rows) + 1
	}
	row := s.nextRow

	values := []interface{}{
		rec.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		rec.Name,
		rec.Email,
		rec.Phone,
		rec.Position,
		rec.Score.Total,
		strings.Join(rec.Score.Feedback, "; "),
		string(rec.Status),
		rec.ResumeRef,
		rec.Subject,
		rec.MessageID,
	}

	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(s.sheet, cell, v); err != nil {
			return "", fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	s.nextRow = row + 1

	return StoreRef(fmt.Sprintf("%s!A%d", s.sheet, row)), nil
}

// open loads the workbook, creating it with a styled header row on first use.
func (s *ExcelSink) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	f = excelize.NewFile()
	f.SetSheetName("Sheet1", s.sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(s.sheet, cell, h); err != nil {
			return nil, err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(s.sheet, "A1", last, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(s.sheet, "A", "K", 22); err != nil {
		return nil, err
	}

	return f, nil
}
