package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/middleware"
	"github.com/yigit/studyhub/internal/pkg/helpers"
)

// CommunityController handles community posts and their comments
type CommunityController struct {
	postService    *services.PostService
	commentService *services.CommentService
	logger         zerolog.Logger
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(postService *services.PostService, commentService *services.CommentService, logger zerolog.Logger) *CommunityController {
	return &CommunityController{
		postService:    postService,
		commentService: commentService,
		logger:         logger,
	}
}

// ListPosts lists posts newest first
// @Summary List community posts
// @Tags community
// @Produce json
// @Param category query string false "Filter by category"
// @Param search query string false "Search title and content"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /community/posts [get]
func (c *CommunityController) ListPosts(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := c.postService.ListPosts(ctx.Request.Context(), dto.PostFilter{
		Category: ctx.Query("category"),
		Search:   ctx.Query("search"),
		Page:     page,
		Size:     size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// GetPost returns a post with its comment count and counts the view
// @Summary Get a community post
// @Tags community
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /community/posts/{id} [get]
func (c *CommunityController) GetPost(ctx *gin.Context) {
	post, err := c.postService.ViewPost(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// CreatePost publishes a post by the caller
// @Summary Create a community post
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /community/posts [post]
func (c *CommunityController) CreatePost(ctx *gin.Context) {
	var req dto.CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), currentActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// UpdatePost edits a post. Author only.
// @Summary Update a community post
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body dto.UpdatePostRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /community/posts/{id} [put]
func (c *CommunityController) UpdatePost(ctx *gin.Context) {
	var req dto.UpdatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	post, err := c.postService.UpdatePost(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// DeletePost removes a post and its comments. Author or admin.
// @Summary Delete a community post
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeletePostResponse}
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /community/posts/{id} [delete]
func (c *CommunityController) DeletePost(ctx *gin.Context) {
	result, err := c.postService.DeletePost(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// ToggleLike likes or unlikes a post for the caller
// @Summary Toggle like
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /community/posts/{id}/like [post]
func (c *CommunityController) ToggleLike(ctx *gin.Context) {
	like, err := c.postService.ToggleLike(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(like))
}

// ListComments returns the comments of a post, oldest first
// @Summary List comments
// @Tags community
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /community/posts/{id}/comments [get]
func (c *CommunityController) ListComments(ctx *gin.Context) {
	comments, err := c.commentService.ListComments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comments))
}

// AddComment comments on a post as the caller
// @Summary Add a comment
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 404 {object} dto.APIResponse "Post not found"
// @Router /community/posts/{id}/comments [post]
func (c *CommunityController) AddComment(ctx *gin.Context) {
	var req dto.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	comment, err := c.commentService.AddComment(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// DeleteComment removes a comment. Author or admin.
// @Summary Delete a comment
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.APIResponse "Not the author"
// @Failure 404 {object} dto.APIResponse "Comment not found"
// @Router /community/comments/{id} [delete]
func (c *CommunityController) DeleteComment(ctx *gin.Context) {
	if err := c.commentService.DeleteComment(ctx.Request.Context(), currentActor(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "comment deleted"}))
}
