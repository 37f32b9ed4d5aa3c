package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/parish/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

const memberCols = `id, first_name, last_name, phone, birthday, address, created_at, updated_at`

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var birthday sql.NullTime
	err := scanner.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Phone, &birthday, &m.Address, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if birthday.Valid {
		m.Birthday = &birthday.Time
	}
	return &m, nil
}

// Create validates the required name fields and inserts a new member.
func (s *MemberStore) Create(firstName, lastName, phone string, birthday *time.Time, address string) (*model.Member, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, validationErrorf("first name is required")
	}
	if lastName == "" {
		return nil, validationErrorf("last name is required")
	}

	var bday sql.NullTime
	if birthday != nil {
		bday = sql.NullTime{Time: birthday.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO members (first_name, last_name, phone, birthday, address) VALUES (?, ?, ?, ?, ?)`,
		firstName, lastName, phone, bday, address,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

// List returns all members in insertion order.
func (s *MemberStore) List() ([]model.Member, error) {
	rows, err := s.db.Query(`SELECT ` + memberCols + ` FROM members ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}
	return m, nil
}

// Delete removes a member row. It returns ErrNotFound when the id does not
// exist. Attendance cleanup is the caller's responsibility; see the
// attendance service.
func (s *MemberStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %d: %w", id, ErrNotFound)
	}
	return nil
}
