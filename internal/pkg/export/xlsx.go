// Package export renders reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/attendly/attendly/internal/app/models/dto"
)

// ContentTypeXLSX is the MIME type of the generated workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetAttendance = "Attendance"
	sheetDefaulters = "Defaulters"
)

// DivisionReportFileName is the download name of a division report
func DivisionReportFileName(report *dto.DivisionReport) string {
	return fmt.Sprintf("attendance_%s_%s_%s.xlsx", sanitize(report.ClassName), sanitize(report.DivisionName), report.GeneratedAt.Format("20060102_150405"))
}

// WriteDivisionReport writes the report as a two-sheet workbook: every student
// with per-subject attended/total and percent, then the defaulter list.
func WriteDivisionReport(w io.Writer, report *dto.DivisionReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetAttendance); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetDefaulters); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	defaulterStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	headers := []interface{}{"Roll No", "Enrollment No", "Name"}
	for _, s := range report.Subjects {
		headers = append(headers, fmt.Sprintf("%s (%d)", s.Code, s.Lectures), s.Code+" %")
	}
	headers = append(headers, "Attended", "Total", "Overall %", "Defaulter")

	if err := writeRow(f, sheetAttendance, 1, headers); err != nil {
		return err
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetAttendance, "A1", lastCol, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range report.Rows {
		line := i + 2
		values := []interface{}{row.RollNumber, row.EnrollmentNo, row.Name}
		for _, stat := range row.Subjects {
			values = append(values, fmt.Sprintf("%d/%d", stat.Attended, stat.Total), stat.Percent)
		}
		values = append(values, row.Overall.Attended, row.Overall.Total, row.Overall.Percent, yesNo(row.Defaulter))
		if err := writeRow(f, sheetAttendance, line, values); err != nil {
			return err
		}
		if row.Defaulter {
			first, _ := excelize.CoordinatesToCellName(1, line)
			last, _ := excelize.CoordinatesToCellName(len(values), line)
			if err := f.SetCellStyle(sheetAttendance, first, last, defaulterStyle); err != nil {
				return fmt.Errorf("failed to style row: %w", err)
			}
		}
	}
	if err := f.SetPanes(sheetAttendance, &excelize.Panes{Freeze: true, XSplit: 3, YSplit: 1, TopLeftCell: "D2", ActivePane: "bottomRight"}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}

	defaulterHeaders := []interface{}{"Roll No", "Enrollment No", "Name", "Attended", "Total", "Overall %"}
	if err := writeRow(f, sheetDefaulters, 1, defaulterHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetDefaulters, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, row := range report.Defaulters() {
		values := []interface{}{row.RollNumber, row.EnrollmentNo, row.Name, row.Overall.Attended, row.Overall.Total, row.Overall.Percent}
		if err := writeRow(f, sheetDefaulters, i+2, values); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, line int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", line, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
