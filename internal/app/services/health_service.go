package services

import (
	"context"
	"time"

	"github.com/yigit/studyhub/internal/app/models/dto"
	"github.com/yigit/studyhub/internal/app/repositories"
)

// Health states reported by HealthService
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthService reports which storage backend serves requests
type HealthService struct {
	repos *repositories.Repositories
}

// NewHealthService creates a new HealthService
func NewHealthService(repos *repositories.Repositories) *HealthService {
	return &HealthService{repos: repos}
}

// Check pings the backend with a short timeout
func (s *HealthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	response := &dto.HealthResponse{Status: HealthOK, Backend: s.repos.Backend()}
	if err := s.repos.Ping(ctx); err != nil {
		response.Status = HealthDegraded
		response.Error = err.Error()
	}
	return response
}
