// Package attendance turns raw attendance facts into the counts and percentages
// shown on the dashboards and reports.
package attendance

import (
	"math"
	"sort"

	"github.com/attendly/attendly/internal/app/models"
)

// DefaultThreshold is the minimum attendance percentage below which a student is a defaulter
const DefaultThreshold = 75.0

// Tally counts lectures attended out of lectures recorded
type Tally struct {
	Attended int     `json:"attended"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// Add records one mark
func (t *Tally) Add(status models.AttendanceStatus) {
	t.Total++
	if status == models.StatusPresent {
		t.Attended++
	}
	t.Percent = Percent(t.Attended, t.Total)
}

// Merge adds other into t
func (t *Tally) Merge(other Tally) {
	t.Attended += other.Attended
	t.Total += other.Total
	t.Percent = Percent(t.Attended, t.Total)
}

// Absent is the number of lectures missed
func (t Tally) Absent() int {
	return t.Total - t.Attended
}

// IsDefaulter reports whether the tally falls below threshold.
// A student with no recorded lectures is never a defaulter.
func (t Tally) IsDefaulter(threshold float64) bool {
	return t.Total > 0 && t.Percent < threshold
}

// Percent returns part/total as a percentage rounded to two decimals, 0 when total is 0
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}

// SubjectStat is a student's tally for one subject
type SubjectStat struct {
	SubjectID int64 `json:"subjectId"`
	Tally
	Defaulter bool `json:"defaulter"`
}

// StudentSummary is a student's attendance across subjects
type StudentSummary struct {
	StudentID int64         `json:"studentId"`
	Subjects  []SubjectStat `json:"subjects"`
	Overall   Tally         `json:"overall"`
	Defaulter bool          `json:"defaulter"`
}

// LectureSummary is the present/absent split of one lecture
type LectureSummary struct {
	LectureID int64   `json:"lectureId"`
	Present   int     `json:"present"`
	Absent    int     `json:"absent"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// SummarizeStudents aggregates facts per student and per subject.
// Every id in studentIDs gets a summary, including students without facts;
// facts for students not listed are still summarized. The result is ordered
// by studentIDs first, then by student id for the remainder.
func SummarizeStudents(facts []models.AttendanceFact, studentIDs []int64, threshold float64) []StudentSummary {
	perStudent := make(map[int64]map[int64]*Tally)
	order := make([]int64, 0, len(studentIDs))
	seen := make(map[int64]bool, len(studentIDs))

	for _, id := range studentIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
		perStudent[id] = make(map[int64]*Tally)
	}

	var extra []int64
	for _, f := range facts {
		subjects, ok := perStudent[f.StudentID]
		if !ok {
			subjects = make(map[int64]*Tally)
			perStudent[f.StudentID] = subjects
			extra = append(extra, f.StudentID)
		}
		tally, ok := subjects[f.SubjectID]
		if !ok {
			tally = &Tally{}
			subjects[f.SubjectID] = tally
		}
		tally.Add(f.Status)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	order = append(order, extra...)

	summaries := make([]StudentSummary, 0, len(order))
	for _, studentID := range order {
		subjects := perStudent[studentID]
		summary := StudentSummary{StudentID: studentID, Subjects: make([]SubjectStat, 0, len(subjects))}
		for subjectID, tally := range subjects {
			summary.Subjects = append(summary.Subjects, SubjectStat{
				SubjectID: subjectID,
				Tally:     *tally,
				Defaulter: tally.IsDefaulter(threshold),
			})
			summary.Overall.Merge(*tally)
		}
		sort.Slice(summary.Subjects, func(i, j int) bool {
			return summary.Subjects[i].SubjectID < summary.Subjects[j].SubjectID
		})
		summary.Defaulter = summary.Overall.IsDefaulter(threshold)
		summaries = append(summaries, summary)
	}
	return summaries
}

// SummarizeLectures groups facts by lecture, ordered by lecture id
func SummarizeLectures(facts []models.AttendanceFact) []LectureSummary {
	byLecture := make(map[int64]*Tally)
	var ids []int64
	for _, f := range facts {
		t, ok := byLecture[f.LectureID]
		if !ok {
			t = &Tally{}
			byLecture[f.LectureID] = t
			ids = append(ids, f.LectureID)
		}
		t.Add(f.Status)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]LectureSummary, 0, len(ids))
	for _, id := range ids {
		t := byLecture[id]
		out = append(out, LectureSummary{
			LectureID: id,
			Present:   t.Attended,
			Absent:    t.Absent(),
			Total:     t.Total,
			Percent:   t.Percent,
		})
	}
	return out
}

// SummarizeRecords computes the lecture summary for the records of a single lecture
func SummarizeRecords(lectureID int64, records []models.AttendanceRecord) LectureSummary {
	var t Tally
	for _, r := range records {
		t.Add(r.Status)
	}
	return LectureSummary{
		LectureID: lectureID,
		Present:   t.Attended,
		Absent:    t.Absent(),
		Total:     t.Total,
		Percent:   t.Percent,
	}
}

// Overall tallies every fact together
func Overall(facts []models.AttendanceFact) Tally {
	var t Tally
	for _, f := range facts {
		t.Add(f.Status)
	}
	return t
}

// Defaulters filters summaries down to defaulters
func Defaulters(summaries []StudentSummary) []StudentSummary {
	out := make([]StudentSummary, 0)
	for _, s := range summaries {
		if s.Defaulter {
			out = append(out, s)
		}
	}
	return out
}

// CountDefaulters counts students whose overall attendance is below threshold
func CountDefaulters(facts []models.AttendanceFact, threshold float64) int {
	perStudent := make(map[int64]*Tally)
	for _, f := range facts {
		t, ok := perStudent[f.StudentID]
		if !ok {
			t = &Tally{}
			perStudent[f.StudentID] = t
		}
		t.Add(f.Status)
	}
	n := 0
	for _, t := range perStudent {
		if t.IsDefaulter(threshold) {
			n++
		}
	}
	return n
}
