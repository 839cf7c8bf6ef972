package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkmarket/link-server/internal/domain"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/stats",
		Summary:     "Dashboard statistics",
		Description: "Marketplace totals, recent activity and top listings and sellers. Admin only.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminStats)
}

// AdminStatsOutput wraps the dashboard for Huma.
type AdminStatsOutput struct {
	Body *domain.AdminStats
}

func (s *Server) handleAdminStats(ctx context.Context, _ *struct{}) (*AdminStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.services.Admin.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AdminStatsOutput{Body: stats}, nil
}
