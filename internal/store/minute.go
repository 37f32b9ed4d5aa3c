package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/parish/internal/model"
)

type MinuteStore struct {
	db *sql.DB
}

func NewMinuteStore(db *sql.DB) *MinuteStore {
	return &MinuteStore{db: db}
}

const minuteCols = `id, title, content, file_url, meeting_date, created_at`

func scanMinute(scanner interface{ Scan(...any) error }) (*model.Minute, error) {
	var m model.Minute
	var meetingDate sql.NullTime
	err := scanner.Scan(&m.ID, &m.Title, &m.Content, &m.FileURL, &meetingDate, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if meetingDate.Valid {
		m.MeetingDate = &meetingDate.Time
	}
	return &m, nil
}

func (s *MinuteStore) Create(title, content, fileURL string, meetingDate *time.Time) (*model.Minute, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErrorf("title is required")
	}

	var md sql.NullTime
	if meetingDate != nil {
		md = sql.NullTime{Time: meetingDate.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO minutes (title, content, file_url, meeting_date) VALUES (?, ?, ?, ?)`,
		title, content, fileURL, md,
	)
	if err != nil {
		return nil, fmt.Errorf("insert minute: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MinuteStore) GetByID(id int64) (*model.Minute, error) {
	row := s.db.QueryRow(`SELECT `+minuteCols+` FROM minutes WHERE id = ?`, id)
	m, err := scanMinute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query minute: %w", err)
	}
	return m, nil
}

func (s *MinuteStore) List() ([]model.Minute, error) {
	rows, err := s.db.Query(`SELECT ` + minuteCols + ` FROM minutes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query minutes: %w", err)
	}
	defer rows.Close()

	var minutes []model.Minute
	for rows.Next() {
		m, err := scanMinute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan minute: %w", err)
		}
		minutes = append(minutes, *m)
	}
	return minutes, rows.Err()
}

func (s *MinuteStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM minutes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete minute: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("minute %d: %w", id, ErrNotFound)
	}
	return nil
}
