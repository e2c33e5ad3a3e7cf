package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/services"
)

// HealthController reports service health
type HealthController struct {
	healthService *services.HealthService
}

// NewHealthController creates a new HealthController
func NewHealthController(healthService *services.HealthService) *HealthController {
	return &HealthController{healthService: healthService}
}

// Health reports the storage backend and whether it responds
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse}
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse}
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	health := c.healthService.Check(ctx.Request.Context())
	status := http.StatusOK
	if health.Status != services.HealthOK {
		status = http.StatusServiceUnavailable
	}
	response := dto.NewSuccessResponse(health)
	response.Success = status == http.StatusOK
	ctx.JSON(status, response)
}
