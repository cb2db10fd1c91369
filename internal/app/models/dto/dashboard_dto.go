package dto

import (
	"time"

	"github.com/attendly/attendly/internal/app/models"
)

// FacultyDashboard is the landing data of a faculty member
type FacultyDashboard struct {
	User           *UserResponse            `json:"user"`
	Allocations    []FacultyAllocationStats `json:"allocations"`
	TotalLectures  int                      `json:"totalLectures" example:"42"`
	AveragePercent float64                  `json:"averagePercent" example:"78.5"`
	DefaulterCount int                      `json:"defaulterCount" example:"6"`
	RecentLectures []*models.Lecture        `json:"recentLectures"`
}

// DepartmentCounts counts the entities of a department
type DepartmentCounts struct {
	Classes   int   `json:"classes" example:"4"`
	Divisions int   `json:"divisions" example:"8"`
	Labs      int   `json:"labs" example:"24"`
	Subjects  int   `json:"subjects" example:"30"`
	Faculty   int   `json:"faculty" example:"18"`
	Students  int64 `json:"students" example:"480"`
	Lectures  int   `json:"lectures" example:"900"`
}

// ClassBreakdown is one class line of the HOD dashboard
type ClassBreakdown struct {
	ClassID        int64   `json:"classId" example:"1"`
	Name           string  `json:"name" example:"Second Year"`
	Year           int     `json:"year" example:"2"`
	Divisions      int     `json:"divisions" example:"2"`
	Students       int64   `json:"students" example:"120"`
	AveragePercent float64 `json:"averagePercent" example:"80.4"`
	DefaulterCount int     `json:"defaulterCount" example:"9"`
}

// HODDashboard is the landing data of a department head
type HODDashboard struct {
	Department     *models.Department `json:"department"`
	Counts         DepartmentCounts   `json:"counts"`
	OverallPercent float64            `json:"overallPercent" example:"79.3"`
	DefaulterCount int                `json:"defaulterCount" example:"21"`
	Threshold      float64            `json:"threshold" example:"75"`
	Classes        []ClassBreakdown   `json:"classes"`
}

// DepartmentSummary is one department line of the super-admin dashboard
type DepartmentSummary struct {
	Department *models.Department `json:"department"`
	Head       *UserResponse      `json:"head,omitempty"`
	Counts     DepartmentCounts   `json:"counts"`
}

// AdminDashboard is the landing data of a super admin
type AdminDashboard struct {
	Departments []DepartmentSummary `json:"departments"`
	Totals      DepartmentCounts    `json:"totals"`
	Users       int                 `json:"users" example:"40"`
}

// PoolStats describes the database connection pool
type PoolStats struct {
	TotalConns    int32 `json:"totalConns" example:"4"`
	IdleConns     int32 `json:"idleConns" example:"3"`
	AcquiredConns int32 `json:"acquiredConns" example:"1"`
	MaxConns      int32 `json:"maxConns" example:"25"`
}

// DeveloperDashboard exposes runtime and storage diagnostics
type DeveloperDashboard struct {
	Version         string           `json:"version" example:"1.0.0"`
	GoVersion       string           `json:"goVersion" example:"go1.23.8"`
	StartedAt       time.Time        `json:"startedAt"`
	UptimeSeconds   int64            `json:"uptimeSeconds" example:"3600"`
	Goroutines      int              `json:"goroutines" example:"12"`
	Driver          string           `json:"driver" example:"postgres"`
	Pool            *PoolStats       `json:"pool,omitempty"`
	Totals          DepartmentCounts `json:"totals"`
	Departments     int              `json:"departments" example:"3"`
	Users           int              `json:"users" example:"40"`
	FeedConnections int              `json:"feedConnections" example:"2"`
}
