package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly/internal/app/models"
)

func fact(lecture, student, subject int64, status models.AttendanceStatus) models.AttendanceFact {
	return models.AttendanceFact{LectureID: lecture, StudentID: student, SubjectID: subject, Status: status}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 100.0, Percent(4, 4))
	assert.Equal(t, 66.67, Percent(2, 3))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 75.0, Percent(3, 4))
}

func TestTally_IsDefaulter(t *testing.T) {
	var empty Tally
	assert.False(t, empty.IsDefaulter(75), "no lectures means no defaulter")

	var atThreshold Tally
	for _, s := range []models.AttendanceStatus{models.StatusPresent, models.StatusPresent, models.StatusPresent, models.StatusAbsent} {
		atThreshold.Add(s)
	}
	assert.Equal(t, 75.0, atThreshold.Percent)
	assert.False(t, atThreshold.IsDefaulter(75), "exactly at threshold is not a defaulter")
	assert.True(t, atThreshold.IsDefaulter(80))
	assert.Equal(t, 1, atThreshold.Absent())
}

func TestSummarizeStudents(t *testing.T) {
	facts := []models.AttendanceFact{
		fact(1, 10, 100, models.StatusPresent),
		fact(1, 11, 100, models.StatusAbsent),
		fact(2, 10, 100, models.StatusPresent),
		fact(2, 11, 100, models.StatusAbsent),
		fact(3, 10, 200, models.StatusAbsent),
		fact(3, 11, 200, models.StatusPresent),
		fact(4, 99, 200, models.StatusPresent),
	}

	summaries := SummarizeStudents(facts, []int64{11, 10, 12}, 75)
	require.Len(t, summaries, 4)

	assert.Equal(t, int64(11), summaries[0].StudentID)
	assert.Equal(t, int64(10), summaries[1].StudentID)
	assert.Equal(t, int64(12), summaries[2].StudentID)
	assert.Equal(t, int64(99), summaries[3].StudentID, "students outside the roster come last")

	s10 := summaries[1]
	require.Len(t, s10.Subjects, 2)
	assert.Equal(t, int64(100), s10.Subjects[0].SubjectID)
	assert.Equal(t, 100.0, s10.Subjects[0].Percent)
	assert.False(t, s10.Subjects[0].Defaulter)
	assert.Equal(t, 0.0, s10.Subjects[1].Percent)
	assert.True(t, s10.Subjects[1].Defaulter)
	assert.Equal(t, Tally{Attended: 2, Total: 3, Percent: 66.67}, s10.Overall)
	assert.True(t, s10.Defaulter)

	s11 := summaries[0]
	assert.Equal(t, 33.33, s11.Overall.Percent)
	assert.True(t, s11.Defaulter)

	s12 := summaries[2]
	assert.Empty(t, s12.Subjects)
	assert.False(t, s12.Defaulter)

	defaulters := Defaulters(summaries)
	require.Len(t, defaulters, 2)
	assert.Equal(t, int64(11), defaulters[0].StudentID)
	assert.Equal(t, int64(10), defaulters[1].StudentID)

	assert.Equal(t, 2, CountDefaulters(facts, 75))
	assert.Equal(t, 0, CountDefaulters(facts, 0))
}

func TestSummarizeLectures(t *testing.T) {
	facts := []models.AttendanceFact{
		fact(2, 10, 100, models.StatusPresent),
		fact(1, 10, 100, models.StatusPresent),
		fact(1, 11, 100, models.StatusAbsent),
		fact(2, 11, 100, models.StatusPresent),
	}

	got := SummarizeLectures(facts)
	require.Len(t, got, 2)
	assert.Equal(t, LectureSummary{LectureID: 1, Present: 1, Absent: 1, Total: 2, Percent: 50}, got[0])
	assert.Equal(t, LectureSummary{LectureID: 2, Present: 2, Absent: 0, Total: 2, Percent: 100}, got[1])

	overall := Overall(facts)
	assert.Equal(t, 75.0, overall.Percent)
}

func TestSummarizeRecords(t *testing.T) {
	records := []models.AttendanceRecord{
		{LectureID: 5, StudentID: 1, Status: models.StatusPresent},
		{LectureID: 5, StudentID: 2, Status: models.StatusAbsent},
		{LectureID: 5, StudentID: 3, Status: models.StatusAbsent},
	}
	got := SummarizeRecords(5, records)
	assert.Equal(t, LectureSummary{LectureID: 5, Present: 1, Absent: 2, Total: 3, Percent: 33.33}, got)

	assert.Equal(t, LectureSummary{LectureID: 6}, SummarizeRecords(6, nil))
}
