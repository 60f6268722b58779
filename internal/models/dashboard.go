package models

// DashboardSummary holds the four pre-computed dashboard totals returned by
// the get_dashboard_summary database function. Fields absent from the result
// default to zero.
type DashboardSummary struct {
	TotalInventoryItems int64   `json:"total_inventory_items"`
	TotalWastedItems    int64   `json:"total_wasted_items"`
	TotalSoldItems      int64   `json:"total_sold_items"`
	MonthlySalesRevenue float64 `json:"monthly_sales_revenue"`
}
