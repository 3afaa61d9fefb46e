package models

import "strings"

// UserRole represents the faculty roles the upstream API issues.
type UserRole string

const (
	RoleStudent       UserRole = "Student"
	RoleLecturer      UserRole = "Lecturer"
	RolePRL           UserRole = "PRL"
	RoleProgramLeader UserRole = "ProgramLeader"
	RoleFMG           UserRole = "FMG"
)

// ParseRole normalises the role spellings seen in upstream payloads.
// Unrecognised values are returned unchanged so callers can reject them.
func ParseRole(raw string) UserRole {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(raw)))
	switch key {
	case "student":
		return RoleStudent
	case "lecturer":
		return RoleLecturer
	case "prl", "principallecturer":
		return RolePRL
	case "programleader", "pl":
		return RoleProgramLeader
	case "fmg":
		return RoleFMG
	}
	return UserRole(strings.TrimSpace(raw))
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RolePRL, RoleProgramLeader, RoleFMG:
		return true
	}
	return false
}

// Reviewer reports whether the role reviews other lecturers' reports.
func (r UserRole) Reviewer() bool {
	return r == RolePRL || r == RoleProgramLeader || r == RoleFMG
}

// UserProfile is the canonical user shape cached with a session and used
// for the lecturer directory.
type UserProfile struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	Role        UserRole `json:"role"`
	FacultyName string   `json:"faculty_name,omitempty"`
}
