package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/parish/internal/model"
)

// DayFormat is the calendar-date layout used for attendance days. Records
// never carry a time of day; two records belong to the same logical day
// exactly when their day strings are equal.
const DayFormat = "2006-01-02"

// ParseDay validates a calendar date string.
func ParseDay(day string) error {
	if day == "" {
		return validationErrorf("date is required")
	}
	if _, err := time.Parse(DayFormat, day); err != nil {
		return validationErrorf(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", day))
	}
	return nil
}

type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *sql.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

const attendanceCols = `id, member_id, day, status, notes, created_at, updated_at`

func scanAttendance(scanner interface{ Scan(...any) error }) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := scanner.Scan(&rec.ID, &rec.MemberID, &rec.Day, &rec.Status, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create inserts one attendance record. An empty status defaults to present.
// It returns ErrConflict when a record already exists for the same member and
// day, and a ValidationError for a bad status, day, or member id.
func (s *AttendanceStore) Create(memberID int64, day, status, notes string) (*model.AttendanceRecord, error) {
	if memberID <= 0 {
		return nil, validationErrorf("member_id is required")
	}
	if err := ParseDay(day); err != nil {
		return nil, err
	}
	if status == "" {
		status = model.StatusPresent
	}
	if !model.ValidStatus(status) {
		return nil, validationErrorf(fmt.Sprintf("invalid status %q", status))
	}

	result, err := s.db.Exec(
		`INSERT INTO attendance (member_id, day, status, notes) VALUES (?, ?, ?, ?)`,
		memberID, day, status, notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("attendance for member %d on %s: %w", memberID, day, ErrConflict)
		}
		return nil, fmt.Errorf("insert attendance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.fetchWritten(id)
}

// fetchWritten re-reads a record just written. Unlike GetByID, a miss is an
// error: the row was there a statement ago, so its absence means a concurrent
// delete won the race and the caller must not treat the write as committed.
func (s *AttendanceStore) fetchWritten(id int64) (*model.AttendanceRecord, error) {
	rec, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("attendance %d deleted concurrently: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (s *AttendanceStore) GetByID(id int64) (*model.AttendanceRecord, error) {
	row := s.db.QueryRow(`SELECT `+attendanceCols+` FROM attendance WHERE id = ?`, id)
	rec, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	return rec, nil
}

// UpdatePatch holds the fields a single-record update may change. Nil fields
// are left untouched.
type UpdatePatch struct {
	Status *string
	Notes  *string
}

// Update patches a record by identifier and refreshes its updated_at. It
// never creates records and never matches by (member, day); callers that want
// to change a day's roster use the reconciliation service instead. Returns
// ErrNotFound when the id does not exist.
func (s *AttendanceStore) Update(id int64, patch UpdatePatch) (*model.AttendanceRecord, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("attendance %d: %w", id, ErrNotFound)
	}

	status := existing.Status
	if patch.Status != nil {
		if !model.ValidStatus(*patch.Status) {
			return nil, validationErrorf(fmt.Sprintf("invalid status %q", *patch.Status))
		}
		status = *patch.Status
	}
	notes := existing.Notes
	if patch.Notes != nil {
		notes = *patch.Notes
	}

	_, err = s.db.Exec(
		`UPDATE attendance SET status = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}
	return s.fetchWritten(id)
}

// FindByDate returns the day's records joined with member display fields.
// The join is an inner join: records whose member has been deleted are
// dropped from the result rather than returned with a dangling reference.
func (s *AttendanceStore) FindByDate(day string) ([]model.AttendanceEntry, error) {
	if err := ParseDay(day); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT a.id, a.member_id, a.day, a.status, a.notes, a.created_at, a.updated_at,
		        m.first_name, m.last_name
		 FROM attendance a
		 JOIN members m ON m.id = a.member_id
		 WHERE a.day = ?
		 ORDER BY m.last_name ASC, m.first_name ASC`,
		day,
	)
	if err != nil {
		return nil, fmt.Errorf("query attendance by day: %w", err)
	}
	defer rows.Close()

	var entries []model.AttendanceEntry
	for rows.Next() {
		var e model.AttendanceEntry
		if err := rows.Scan(&e.ID, &e.MemberID, &e.Day, &e.Status, &e.Notes, &e.CreatedAt, &e.UpdatedAt, &e.FirstName, &e.LastName); err != nil {
			return nil, fmt.Errorf("scan attendance entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteByDate removes all records for a day and returns the number deleted.
// Deleting a day with no records succeeds with zero deletions.
func (s *AttendanceStore) DeleteByDate(day string) (int64, error) {
	if err := ParseDay(day); err != nil {
		return 0, err
	}
	result, err := s.db.Exec(`DELETE FROM attendance WHERE day = ?`, day)
	if err != nil {
		return 0, fmt.Errorf("delete attendance by day: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// DeleteByMember removes every record referencing the member, across all
// days. Used by the member-deletion cascade.
func (s *AttendanceStore) DeleteByMember(memberID int64) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM attendance WHERE member_id = ?`, memberID)
	if err != nil {
		return 0, fmt.Errorf("delete attendance by member: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// CountByDate counts the day's records without joining members, so orphaned
// records are included.
func (s *AttendanceStore) CountByDate(day string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attendance WHERE day = ?`, day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}
