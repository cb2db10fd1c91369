package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/attendly/attendly/internal/app/models/dto"
	"github.com/attendly/attendly/internal/domain/attendance"
)

func sampleReport() *dto.DivisionReport {
	return &dto.DivisionReport{
		DivisionID:   1,
		DivisionName: "A",
		ClassName:    "Second Year",
		Threshold:    75,
		Subjects:     []dto.ReportSubject{{ID: 10, Code: "CE201", Lectures: 4}},
		Rows: []dto.ReportRow{
			{
				RollNumber: 1, EnrollmentNo: "EN1", Name: "Aarav",
				Subjects: []attendance.SubjectStat{{SubjectID: 10, Tally: attendance.Tally{Attended: 4, Total: 4, Percent: 100}}},
				Overall:  attendance.Tally{Attended: 4, Total: 4, Percent: 100},
			},
			{
				RollNumber: 2, EnrollmentNo: "EN2", Name: "Bhavna",
				Subjects:  []attendance.SubjectStat{{SubjectID: 10, Tally: attendance.Tally{Attended: 1, Total: 4, Percent: 25}, Defaulter: true}},
				Overall:   attendance.Tally{Attended: 1, Total: 4, Percent: 25},
				Defaulter: true,
			},
		},
		GeneratedAt: time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteDivisionReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDivisionReport(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetAttendance)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Roll No", "Enrollment No", "Name", "CE201 (4)", "CE201 %", "Attended", "Total", "Overall %", "Defaulter"}, rows[0])
	assert.Equal(t, "1/4", rows[2][3])
	assert.Equal(t, "YES", rows[2][8])

	defaulters, err := f.GetRows(sheetDefaulters)
	require.NoError(t, err)
	require.Len(t, defaulters, 2)
	assert.Equal(t, "Bhavna", defaulters[1][2])
}

func TestDivisionReportFileName(t *testing.T) {
	assert.Equal(t, "attendance_Second_Year_A_20240901_100000.xlsx", DivisionReportFileName(sampleReport()))
}
