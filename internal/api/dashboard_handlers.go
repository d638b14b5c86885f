package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/folllow/folllow-server/internal/service"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Get dashboard summary",
		Description: "Returns headline metrics for the caller's tree: total views, month-over-month view and click deltas, and estimated ad revenue.",
		Tags:        []string{"Dashboard"},
	}, s.handleGetDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-analytics",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics",
		Summary:     "Get analytics charts",
		Description: "Returns views per day over the past 31 days and clicks per month, split by element, over the past 12 months.",
		Tags:        []string{"Dashboard"},
	}, s.handleGetAnalytics)
}

// DashboardOutput wraps the dashboard summary for Huma.
type DashboardOutput struct {
	Body service.Dashboard
}

// AnalyticsOutput wraps the analytics charts for Huma.
type AnalyticsOutput struct {
	Body service.Analytics
}

func (s *Server) handleGetDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	dash, err := s.services.Dashboard.GetDashboard(ctx, userID)
	if err != nil {
		return nil, huma.Error404NotFound("dashboard unavailable", err)
	}
	return &DashboardOutput{Body: *dash}, nil
}

func (s *Server) handleGetAnalytics(ctx context.Context, _ *struct{}) (*AnalyticsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	analytics, err := s.services.Analytics.GetAnalytics(ctx, userID)
	if err != nil {
		return nil, huma.Error404NotFound("analytics unavailable", err)
	}
	return &AnalyticsOutput{Body: *analytics}, nil
}
