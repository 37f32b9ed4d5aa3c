package model

import "time"

// Attendance statuses. Every record carries exactly one of these.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// ValidStatus reports whether s is one of the three recognized statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// AttendanceRecord is one member's status for one calendar day. The store
// enforces at most one record per (member, day) pair.
type AttendanceRecord struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Day       string    `json:"date"` // YYYY-MM-DD
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttendanceEntry is an attendance record joined with the display fields of
// the member it references.
type AttendanceEntry struct {
	AttendanceRecord
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
