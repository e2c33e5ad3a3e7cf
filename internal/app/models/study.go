package models

import (
	"slices"
	"time"
)

// StudyGroup is a recruiting study group ("모임") led by one user
type StudyGroup struct {
	ID             string      `json:"id" db:"id"`
	Title          string      `json:"title" db:"title"`
	Description    string      `json:"description" db:"description"`
	Category       string      `json:"category" db:"category"`
	MaxMembers     int         `json:"maxMembers" db:"max_members"`
	CurrentMembers []string    `json:"currentMembers" db:"current_members"`
	Leader         string      `json:"leader" db:"leader_id"`
	Deadline       *time.Time  `json:"deadline,omitempty" db:"deadline"`
	StartDate      *time.Time  `json:"startDate,omitempty" db:"start_date"`
	Duration       int         `json:"duration,omitempty" db:"duration"`
	MeetingType    MeetingType `json:"meetingType,omitempty" db:"meeting_type"`
	Location       string      `json:"location,omitempty" db:"location"`
	Tags           []string    `json:"tags" db:"tags"`
	ImageURL       string      `json:"imageUrl,omitempty" db:"image_url"`
	Status         StudyStatus `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// IsMember reports whether userID is in CurrentMembers.
func (s *StudyGroup) IsMember(userID string) bool {
	return slices.Contains(s.CurrentMembers, userID)
}

// IsFull reports whether no more members can join.
func (s *StudyGroup) IsFull() bool {
	return len(s.CurrentMembers) >= s.MaxMembers
}
