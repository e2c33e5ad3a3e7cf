package models

import (
	"slices"
	"time"
)

// CommunityPost is a board post in the community section
type CommunityPost struct {
	ID        string       `json:"id" db:"id"`
	Title     string       `json:"title" db:"title"`
	Content   string       `json:"content" db:"content"`
	Category  PostCategory `json:"category" db:"category"`
	Author    string       `json:"author" db:"author_id"`
	Views     int          `json:"views" db:"views"`
	Likes     []string     `json:"likes" db:"likes"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// LikedBy reports whether userID has liked the post.
func (p *CommunityPost) LikedBy(userID string) bool {
	return slices.Contains(p.Likes, userID)
}

// Comment belongs to exactly one CommunityPost
type Comment struct {
	ID        string    `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	Author    string    `json:"author" db:"author_id"`
	Post      string    `json:"post" db:"post_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
