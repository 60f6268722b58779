package repositories

import (
	"context"

	"stocktrack/internal/models"
)

// DashboardRepository reads the pre-computed dashboard aggregate. The
// arithmetic lives in the get_dashboard_summary database function, which is
// the single source of truth for the totals; no client-side summation happens
// here.
type DashboardRepository interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type dashboardRepo struct {
	db Database
}

func NewDashboardRepository(db Database) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}
	query := `
		SELECT COALESCE(total_inventory_items, 0),
		       COALESCE(total_wasted_items, 0),
		       COALESCE(total_sold_items, 0),
		       COALESCE(monthly_sales_revenue, 0)
		FROM get_dashboard_summary()
	`
	err := r.db.QueryRow(ctx, query).Scan(&summary.TotalInventoryItems, &summary.TotalWastedItems, &summary.TotalSoldItems, &summary.MonthlySalesRevenue)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
