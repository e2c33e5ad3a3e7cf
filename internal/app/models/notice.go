package models

import "time"

// Notice is an announcement published by an admin
type Notice struct {
	ID        string         `json:"id" db:"id"`
	Title     string         `json:"title" db:"title"`
	Content   string         `json:"content" db:"content"`
	Category  NoticeCategory `json:"category" db:"category"`
	Author    string         `json:"author" db:"author_id"`
	IsPinned  bool           `json:"isPinned" db:"is_pinned"`
	Views     int            `json:"views" db:"views"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}
