package dto

import (
	"time"

	"github.com/yigit/studyhub/internal/app/models"
)

// CreateNoticeRequest represents notice creation data
type CreateNoticeRequest struct {
	Title    string `json:"title" binding:"required,notblank,max=200"`
	Content  string `json:"content" binding:"required,notblank"`
	Category string `json:"category" binding:"required,oneof=important general event maintenance"`
	IsPinned bool   `json:"isPinned"`
}

// UpdateNoticeRequest changes the given fields only
type UpdateNoticeRequest struct {
	Title    *string `json:"title" binding:"omitempty,notblank,max=200"`
	Content  *string `json:"content" binding:"omitempty,notblank"`
	Category *string `json:"category" binding:"omitempty,oneof=important general event maintenance"`
	IsPinned *bool   `json:"isPinned"`
}

// NoticeFilter holds the list query of GET /notices
type NoticeFilter struct {
	Category string
	Search   string
	Page     int
	Size     int
}

// NoticeResponse represents a notice with its author resolved
type NoticeResponse struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Category  string      `json:"category"`
	Author    UserSummary `json:"author"`
	IsPinned  bool        `json:"isPinned"`
	Views     int         `json:"views"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewNoticeResponse renders a notice using the resolved users
func NewNoticeResponse(notice *models.Notice, users map[string]*models.User) *NoticeResponse {
	return &NoticeResponse{
		ID:        notice.ID,
		Title:     notice.Title,
		Content:   notice.Content,
		Category:  string(notice.Category),
		Author:    NewUserSummary(notice.Author, users),
		IsPinned:  notice.IsPinned,
		Views:     notice.Views,
		CreatedAt: notice.CreatedAt,
		UpdatedAt: notice.UpdatedAt,
	}
}
