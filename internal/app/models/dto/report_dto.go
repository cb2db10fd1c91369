package dto

import (
	"time"

	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/domain/attendance"
)

// ReportQuery holds the optional report parameters. The date range is read
// separately by helpers.ParseDateRange.
type ReportQuery struct {
	SubjectID *int64   `form:"subjectId" binding:"omitempty,gt=0"`
	Threshold *float64 `form:"threshold" binding:"omitempty,min=0,max=100"`
}

// ReportSubject describes a subject column of a report
type ReportSubject struct {
	ID       int64              `json:"id" example:"2"`
	Code     string             `json:"code" example:"CE201"`
	Name     string             `json:"name" example:"Data Structures"`
	Kind     models.SubjectKind `json:"kind" example:"THEORY"`
	Lectures int                `json:"lectures" example:"24"`
}

// ReportRow is one student's line in a division report
type ReportRow struct {
	StudentID    int64                    `json:"studentId" example:"12"`
	RollNumber   int                      `json:"rollNumber" example:"12"`
	EnrollmentNo string                   `json:"enrollmentNo" example:"2023CE0012"`
	Name         string                   `json:"name" example:"Ravi Kumar"`
	LabID        *int64                   `json:"labId,omitempty"`
	Subjects     []attendance.SubjectStat `json:"subjects"`
	Overall      attendance.Tally         `json:"overall"`
	Defaulter    bool                     `json:"defaulter"`
}

// DivisionReport is the attendance sheet of a division
type DivisionReport struct {
	DivisionID     int64            `json:"divisionId" example:"1"`
	DivisionName   string           `json:"divisionName" example:"A"`
	ClassName      string           `json:"className" example:"Second Year"`
	Year           int              `json:"year" example:"2"`
	Threshold      float64          `json:"threshold" example:"75"`
	From           *time.Time       `json:"from,omitempty"`
	To             *time.Time       `json:"to,omitempty"`
	Subjects       []ReportSubject  `json:"subjects"`
	Rows           []ReportRow      `json:"rows"`
	Overall        attendance.Tally `json:"overall"`
	DefaulterCount int              `json:"defaulterCount" example:"5"`
	GeneratedAt    time.Time        `json:"generatedAt"`
}

// Defaulters returns the rows below the threshold
func (r *DivisionReport) Defaulters() []ReportRow {
	out := make([]ReportRow, 0)
	for _, row := range r.Rows {
		if row.Defaulter {
			out = append(out, row)
		}
	}
	return out
}

// StudentReport is one student's attendance per subject
type StudentReport struct {
	Student   *models.Student          `json:"student"`
	Threshold float64                  `json:"threshold" example:"75"`
	Subjects  []ReportSubject          `json:"subjects"`
	Stats     []attendance.SubjectStat `json:"stats"`
	Overall   attendance.Tally         `json:"overall"`
	Defaulter bool                     `json:"defaulter"`
}

// DefaulterList is the defaulter view of a division report
type DefaulterList struct {
	DivisionID   int64       `json:"divisionId" example:"1"`
	DivisionName string      `json:"divisionName" example:"A"`
	ClassName    string      `json:"className" example:"Second Year"`
	Threshold    float64     `json:"threshold" example:"75"`
	Defaulters   []ReportRow `json:"defaulters"`
}

// NewDefaulterList extracts the defaulters of a division report
func NewDefaulterList(r *DivisionReport) *DefaulterList {
	return &DefaulterList{
		DivisionID:   r.DivisionID,
		DivisionName: r.DivisionName,
		ClassName:    r.ClassName,
		Threshold:    r.Threshold,
		Defaulters:   r.Defaulters(),
	}
}
