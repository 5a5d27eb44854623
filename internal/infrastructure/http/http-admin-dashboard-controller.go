package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"tourism-marketplace/internal/application/query"
	"tourism-marketplace/pkg/logger"
	"tourism-marketplace/pkg/middleware"
	"tourism-marketplace/pkg/response"
)

// DashboardService is satisfied by *services.DashboardService
type DashboardService interface {
	GetAdminStats(ctx context.Context) (*query.AggregateReport, error)
	Health(ctx context.Context) error
}

type HTTPAdminDashboardController struct {
	service DashboardService
}

func NewHTTPAdminDashboardController(service DashboardService) *HTTPAdminDashboardController {
	return &HTTPAdminDashboardController{
		service: service,
	}
}

// GetDashboardStats handles GET /admin/dashboard/stats
func (c *HTTPAdminDashboardController) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	logger.FromContext(r.Context(), zap.L()).Info("admin dashboard requested", zap.String("user_id", userID))

	stats, err := c.service.GetAdminStats(r.Context())
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendStats(w, r, stats)
}

// Health handles GET /health
func (c *HTTPAdminDashboardController) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Health(r.Context()); err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, map[string]string{"status": "ok"})
}
