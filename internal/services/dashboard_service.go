package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

func (s *dashboardService) GetAdminStats(ctx context.Context) (*repositories.AdminStats, error) {
	stats, err := s.repo.Dashboard().GetAdminStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin stats: %w", err)
	}
	return stats, nil
}
