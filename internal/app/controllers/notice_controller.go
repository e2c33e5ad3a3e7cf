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

// NoticeController handles notice endpoints
type NoticeController struct {
	noticeService *services.NoticeService
	logger        zerolog.Logger
}

// NewNoticeController creates a new NoticeController
func NewNoticeController(noticeService *services.NoticeService, logger zerolog.Logger) *NoticeController {
	return &NoticeController{
		noticeService: noticeService,
		logger:        logger,
	}
}

// ListNotices lists notices, pinned first
// @Summary List notices
// @Tags notices
// @Produce json
// @Param category query string false "Filter by category"
// @Param search query string false "Search title and content"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /notices [get]
func (c *NoticeController) ListNotices(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := c.noticeService.ListNotices(ctx.Request.Context(), dto.NoticeFilter{
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

// GetNotice returns a notice and counts the view
// @Summary Get a notice
// @Tags notices
// @Produce json
// @Param id path string true "Notice ID"
// @Success 200 {object} dto.APIResponse{data=dto.NoticeResponse}
// @Failure 404 {object} dto.APIResponse "Notice not found"
// @Router /notices/{id} [get]
func (c *NoticeController) GetNotice(ctx *gin.Context) {
	notice, err := c.noticeService.ViewNotice(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notice))
}

// CreateNotice publishes a notice. Admin only.
// @Summary Create a notice
// @Tags notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNoticeRequest true "Notice"
// @Success 201 {object} dto.APIResponse{data=dto.NoticeResponse}
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Router /notices [post]
func (c *NoticeController) CreateNotice(ctx *gin.Context) {
	var req dto.CreateNoticeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	notice, err := c.noticeService.CreateNotice(ctx.Request.Context(), currentActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(notice))
}

// UpdateNotice changes a notice. Admin only.
// @Summary Update a notice
// @Tags notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notice ID"
// @Param request body dto.UpdateNoticeRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.NoticeResponse}
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Failure 404 {object} dto.APIResponse "Notice not found"
// @Router /notices/{id} [put]
func (c *NoticeController) UpdateNotice(ctx *gin.Context) {
	var req dto.UpdateNoticeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	notice, err := c.noticeService.UpdateNotice(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notice))
}

// DeleteNotice removes a notice. Admin only.
// @Summary Delete a notice
// @Tags notices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notice ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.APIResponse "Admin only"
// @Failure 404 {object} dto.APIResponse "Notice not found"
// @Router /notices/{id} [delete]
func (c *NoticeController) DeleteNotice(ctx *gin.Context) {
	if err := c.noticeService.DeleteNotice(ctx.Request.Context(), currentActor(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "notice deleted"}))
}
