package model

import "time"

type Minute struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	FileURL     string     `json:"file_url,omitempty"`
	MeetingDate *time.Time `json:"meeting_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
