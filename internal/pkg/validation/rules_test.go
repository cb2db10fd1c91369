package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codes struct {
	Department string `json:"departmentCode" binding:"required,deptcode"`
	Subject    string `json:"subjectCode" binding:"omitempty,subjectcode"`
	Enrollment string `json:"enrollmentNo" binding:"omitempty,enrollment"`
}

func TestCustomRules(t *testing.T) {
	tests := []struct {
		name string
		in   codes
		ok   bool
	}{
		{"valid", codes{Department: "CE", Subject: "CS-301L", Enrollment: "21/CE/045"}, true},
		{"department too short", codes{Department: "C"}, false},
		{"department starts with digit", codes{Department: "1CE"}, false},
		{"subject with space", codes{Department: "CE", Subject: "CE 201"}, false},
		{"enrollment too short", codes{Department: "CE", Enrollment: "A1"}, false},
		{"padded values are trimmed", codes{Department: " ME ", Subject: " CE201 "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSummaryUsesJSONNames(t *testing.T) {
	err := ValidateStruct(&codes{Subject: "9"})
	require.Error(t, err)

	msg := Summary(err)
	assert.Contains(t, msg, "departmentCode is required")
	assert.Contains(t, msg, "subjectCode must be 2-16 letters")
}

func TestSummaryOfPlainError(t *testing.T) {
	assert.Equal(t, "boom", Summary(errors.New("boom")))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "CE201L", NormalizeCode("  ce201l "))
}
