package services

import (
	"context"
	"fmt"
	"log"

	"stocktrack/internal/caching"
	"stocktrack/internal/models"
	"stocktrack/internal/repositories"
)

// DashboardService serves the four dashboard tiles. All arithmetic happens in
// the get_dashboard_summary database function; this layer only caches and
// formats.
type DashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type dashboardService struct {
	dashboardRepo repositories.DashboardRepository
	cacheService  caching.CacheService
}

func NewDashboardService(dashboardRepo repositories.DashboardRepository, cacheService caching.CacheService) DashboardService {
	return &dashboardService{
		dashboardRepo: dashboardRepo,
		cacheService:  cacheService,
	}
}

func (s *dashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if cached, err := s.cacheService.GetDashboardSummary(ctx); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for dashboard summary: %v", err)
	}

	summary, err := s.dashboardRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch dashboard summary: %w", err)
	}

	if cacheErr := s.cacheService.SetDashboardSummary(ctx, summary, sharedStateTTL); cacheErr != nil {
		log.Printf("Failed to cache dashboard summary: %v", cacheErr)
	}
	return summary, nil
}
