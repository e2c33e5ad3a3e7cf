package dto

import (
	"time"

	"github.com/yigit/studyhub/internal/app/models"
)

// --- Request DTOs ---

// CreatePostRequest represents community post creation data
type CreatePostRequest struct {
	Title    string `json:"title" binding:"required,notblank,max=200"`
	Content  string `json:"content" binding:"required,notblank"`
	Category string `json:"category" binding:"omitempty,oneof=question discussion share free"`
}

// UpdatePostRequest changes the given fields only
type UpdatePostRequest struct {
	Title    *string `json:"title" binding:"omitempty,notblank,max=200"`
	Content  *string `json:"content" binding:"omitempty,notblank"`
	Category *string `json:"category" binding:"omitempty,oneof=question discussion share free"`
}

// CreateCommentRequest represents comment creation data
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=1000"`
}

// PostFilter holds the list query of GET /community/posts
type PostFilter struct {
	Category string
	Search   string
	Page     int
	Size     int
}

// --- Response DTOs ---

// PostResponse represents a community post with its author resolved
type PostResponse struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Category     string      `json:"category"`
	Author       UserSummary `json:"author"`
	Views        int         `json:"views"`
	Likes        []string    `json:"likes"`
	LikeCount    int         `json:"likeCount"`
	CommentCount *int        `json:"commentCount,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// NewPostResponse renders a post using the resolved users
func NewPostResponse(post *models.CommunityPost, users map[string]*models.User) *PostResponse {
	likes := post.Likes
	if likes == nil {
		likes = []string{}
	}
	return &PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Category:  string(post.Category),
		Author:    NewUserSummary(post.Author, users),
		Views:     post.Views,
		Likes:     likes,
		LikeCount: len(likes),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// LikeResponse reports the like state after a toggle
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// CommentResponse represents a comment with its author resolved
type CommentResponse struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Author    UserSummary `json:"author"`
	Post      string      `json:"post"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewCommentResponse renders a comment using the resolved users
func NewCommentResponse(comment *models.Comment, users map[string]*models.User) *CommentResponse {
	return &CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		Author:    NewUserSummary(comment.Author, users),
		Post:      comment.Post,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// DeletePostResponse reports how many comments went with the post
type DeletePostResponse struct {
	Message         string `json:"message"`
	DeletedComments int    `json:"deletedComments"`
}
