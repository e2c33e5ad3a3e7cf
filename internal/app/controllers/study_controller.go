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

// StudyController handles study group endpoints
type StudyController struct {
	studyService *services.StudyService
	logger       zerolog.Logger
}

// NewStudyController creates a new StudyController
func NewStudyController(studyService *services.StudyService, logger zerolog.Logger) *StudyController {
	return &StudyController{
		studyService: studyService,
		logger:       logger,
	}
}

// ListStudies lists study groups newest first
// @Summary List study groups
// @Tags studies
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Param search query string false "Search title, description and tags"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /studies [get]
func (c *StudyController) ListStudies(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	result, err := c.studyService.ListStudies(ctx.Request.Context(), dto.StudyFilter{
		Category: ctx.Query("category"),
		Status:   ctx.Query("status"),
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

// GetStudy returns one study group
// @Summary Get a study group
// @Tags studies
// @Produce json
// @Param id path string true "Study group ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudyResponse}
// @Failure 404 {object} dto.APIResponse "Study group not found"
// @Router /studies/{id} [get]
func (c *StudyController) GetStudy(ctx *gin.Context) {
	study, err := c.studyService.GetStudy(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(study))
}

// CreateStudy creates a study group led by the caller
// @Summary Create a study group
// @Tags studies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudyRequest true "Study group"
// @Success 201 {object} dto.APIResponse{data=dto.StudyResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /studies [post]
func (c *StudyController) CreateStudy(ctx *gin.Context) {
	var req dto.CreateStudyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	study, err := c.studyService.CreateStudy(ctx.Request.Context(), currentActor(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(study))
}

// UpdateStudy changes a study group. Leader only.
// @Summary Update a study group
// @Tags studies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Study group ID"
// @Param request body dto.UpdateStudyRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.StudyResponse}
// @Failure 403 {object} dto.APIResponse "Not the leader"
// @Failure 404 {object} dto.APIResponse "Study group not found"
// @Router /studies/{id} [put]
func (c *StudyController) UpdateStudy(ctx *gin.Context) {
	var req dto.UpdateStudyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	study, err := c.studyService.UpdateStudy(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(study))
}

// DeleteStudy removes a study group. Leader or admin.
// @Summary Delete a study group
// @Tags studies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Study group ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.APIResponse "Not the leader"
// @Failure 404 {object} dto.APIResponse "Study group not found"
// @Router /studies/{id} [delete]
func (c *StudyController) DeleteStudy(ctx *gin.Context) {
	if err := c.studyService.DeleteStudy(ctx.Request.Context(), currentActor(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "study group deleted"}))
}

// JoinStudy adds the caller to a study group
// @Summary Join a study group
// @Tags studies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Study group ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudyResponse}
// @Failure 409 {object} dto.APIResponse "Already a member or group full"
// @Router /studies/{id}/join [post]
func (c *StudyController) JoinStudy(ctx *gin.Context) {
	study, err := c.studyService.JoinStudy(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(study))
}

// LeaveStudy removes the caller from a study group
// @Summary Leave a study group
// @Tags studies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Study group ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudyResponse}
// @Failure 400 {object} dto.APIResponse "Not a member, or the caller is the leader"
// @Router /studies/{id}/leave [post]
func (c *StudyController) LeaveStudy(ctx *gin.Context) {
	study, err := c.studyService.LeaveStudy(ctx.Request.Context(), currentActor(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(study))
}
