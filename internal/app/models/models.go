package models

// RoleType defines the user role type
type RoleType string

const (
	RoleSuperAdmin RoleType = "SUPER_ADMIN"
	RoleDeveloper  RoleType = "DEVELOPER"
	RoleHOD        RoleType = "HOD"
	RoleFaculty    RoleType = "FACULTY"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleDeveloper, RoleHOD, RoleFaculty:
		return true
	}
	return false
}

// NeedsDepartment reports whether users of this role must belong to a department
func (r RoleType) NeedsDepartment() bool {
	return r == RoleHOD || r == RoleFaculty
}

// SubjectKind distinguishes lecture subjects from practical (lab) subjects
type SubjectKind string

const (
	SubjectTheory    SubjectKind = "THEORY"
	SubjectPractical SubjectKind = "PRACTICAL"
)

// AttendanceStatus is the mark a student received for a lecture
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
)

// MinYear and MaxYear bound class and subject years
const (
	MinYear = 1
	MaxYear = 6
)
