package dto

import (
	"time"

	"github.com/yigit/studyhub/internal/app/models"
)

// CreateStudyRequest represents study group creation data. Dates accept
// RFC 3339 timestamps or plain YYYY-MM-DD dates.
type CreateStudyRequest struct {
	Title       string   `json:"title" binding:"required,notblank,max=100"`
	Description string   `json:"description" binding:"required,notblank"`
	Category    string   `json:"category" binding:"required,notblank"`
	MaxMembers  int      `json:"maxMembers" binding:"required,min=2,max=20"`
	Deadline    string   `json:"deadline"`
	StartDate   string   `json:"startDate"`
	Duration    int      `json:"duration" binding:"omitempty,min=1,max=52"`
	MeetingType string   `json:"meetingType" binding:"omitempty,oneof=online offline both"`
	Location    string   `json:"location" binding:"max=200"`
	Tags        []string `json:"tags" binding:"max=20,dive,max=30"`
	ImageURL    string   `json:"imageUrl"`
	Status      string   `json:"status" binding:"omitempty,oneof=recruiting in_progress completed"`
}

// UpdateStudyRequest changes the given fields only. An empty date string
// clears the date.
type UpdateStudyRequest struct {
	Title       *string   `json:"title" binding:"omitempty,notblank,max=100"`
	Description *string   `json:"description" binding:"omitempty,notblank"`
	Category    *string   `json:"category" binding:"omitempty,notblank"`
	MaxMembers  *int      `json:"maxMembers" binding:"omitempty,min=2,max=20"`
	Deadline    *string   `json:"deadline"`
	StartDate   *string   `json:"startDate"`
	Duration    *int      `json:"duration" binding:"omitempty,min=1,max=52"`
	MeetingType *string   `json:"meetingType" binding:"omitempty,oneof=online offline both"`
	Location    *string   `json:"location" binding:"omitempty,max=200"`
	Tags        *[]string `json:"tags" binding:"omitempty,max=20,dive,max=30"`
	ImageURL    *string   `json:"imageUrl"`
	Status      *string   `json:"status" binding:"omitempty,oneof=recruiting in_progress completed"`
}

// StudyFilter holds the list query of GET /studies
type StudyFilter struct {
	Category string
	Status   string
	Search   string
	Page     int
	Size     int
}

// StudyResponse represents a study group with its people resolved
type StudyResponse struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Category       string        `json:"category"`
	MaxMembers     int           `json:"maxMembers"`
	MemberCount    int           `json:"memberCount"`
	CurrentMembers []UserSummary `json:"currentMembers"`
	Leader         UserSummary   `json:"leader"`
	Deadline       *time.Time    `json:"deadline,omitempty"`
	StartDate      *time.Time    `json:"startDate,omitempty"`
	Duration       int           `json:"duration,omitempty"`
	MeetingType    string        `json:"meetingType,omitempty"`
	Location       string        `json:"location,omitempty"`
	Tags           []string      `json:"tags"`
	ImageURL       string        `json:"imageUrl,omitempty"`
	Status         string        `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// NewStudyResponse renders a study group using the resolved users
func NewStudyResponse(study *models.StudyGroup, users map[string]*models.User) *StudyResponse {
	members := make([]UserSummary, len(study.CurrentMembers))
	for i, id := range study.CurrentMembers {
		members[i] = NewUserSummary(id, users)
	}
	tags := study.Tags
	if tags == nil {
		tags = []string{}
	}
	return &StudyResponse{
		ID:             study.ID,
		Title:          study.Title,
		Description:    study.Description,
		Category:       study.Category,
		MaxMembers:     study.MaxMembers,
		MemberCount:    len(study.CurrentMembers),
		CurrentMembers: members,
		Leader:         NewUserSummary(study.Leader, users),
		Deadline:       study.Deadline,
		StartDate:      study.StartDate,
		Duration:       study.Duration,
		MeetingType:    string(study.MeetingType),
		Location:       study.Location,
		Tags:           tags,
		ImageURL:       study.ImageURL,
		Status:         string(study.Status),
		CreatedAt:      study.CreatedAt,
		UpdatedAt:      study.UpdatedAt,
	}
}
