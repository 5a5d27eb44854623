package services

import (
	"context"
	"errors"

	"tourism-marketplace/internal/application/query"
	"tourism-marketplace/internal/domain/repository"
	apperrors "tourism-marketplace/pkg/errors"
)

// Messages shown to dashboard callers. Causes stay in the logs.
const (
	MsgDatastoreUnavailable = "Database connection error. Please try again later."
	MsgRequestTimedOut      = "Request timed out"
	MsgStatsFailed          = "Failed to fetch dashboard statistics"
)

// DashboardQueryHandler is satisfied by *query.AdminDashboardHandler
type DashboardQueryHandler interface {
	Handle(ctx context.Context, q query.GetAdminDashboard) (*query.AggregateReport, error)
}

// DashboardService handles admin statistics operations
type DashboardService struct {
	dashboardHandler DashboardQueryHandler
	stats            repository.StatsRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(dashboardHandler DashboardQueryHandler, stats repository.StatsRepository) *DashboardService {
	return &DashboardService{
		dashboardHandler: dashboardHandler,
		stats:            stats,
	}
}

// GetAdminStats builds the report and converts aggregation failures into
// application errors.
func (s *DashboardService) GetAdminStats(ctx context.Context) (*query.AggregateReport, error) {
	report, err := s.dashboardHandler.Handle(ctx, query.GetAdminDashboard{})
	if err != nil {
		return nil, toApplicationError(err)
	}
	return report, nil
}

// Health checks that the datastore answers
func (s *DashboardService) Health(ctx context.Context) error {
	if err := s.stats.Ping(ctx); err != nil {
		return apperrors.NewServiceUnavailableError("Datastore unreachable").WithCause(err)
	}
	return nil
}

func toApplicationError(err error) *apperrors.ApplicationError {
	switch {
	case errors.Is(err, query.ErrDatastoreUnavailable):
		return apperrors.NewServiceUnavailableError(MsgDatastoreUnavailable).WithCause(err)
	case errors.Is(err, query.ErrAggregationCancelled):
		return apperrors.NewRequestTimeoutError(MsgRequestTimedOut).WithCause(err)
	default:
		return apperrors.NewInternalError(MsgStatsFailed).WithCause(err)
	}
}
