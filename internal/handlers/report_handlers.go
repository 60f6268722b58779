package handlers

import (
	"net/http"

	"stocktrack/internal/common"
	"stocktrack/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandlers handles dashboard and reporting HTTP requests
type ReportHandlers struct {
	dashboardService services.DashboardService
	reportService    services.ReportService
	inventoryService services.InventoryService
}

func NewReportHandlers(dashboardService services.DashboardService, reportService services.ReportService, inventoryService services.InventoryService) *ReportHandlers {
	return &ReportHandlers{
		dashboardService: dashboardService,
		reportService:    reportService,
		inventoryService: inventoryService,
	}
}

// DashboardSummary returns the aggregate counters for the dashboard
func (h *ReportHandlers) DashboardSummary(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.dashboardService.Summary(ctx)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, summary)
}

// StockReport returns stock-by-category, status buckets and valuations
func (h *ReportHandlers) StockReport(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.reportService.StockReport(ctx)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, report)
}

// LowStockItems returns items at or below their threshold
func (h *ReportHandlers) LowStockItems(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.inventoryService.LowStockItems(ctx)
	if err != nil {
		return serviceError(err)
	}

	critical := 0
	for _, item := range items {
		if item.IsCritical() {
			critical++
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":    items,
		"count":    len(items),
		"critical": critical,
	})
}

// ExportStock builds a CSV stock export and returns a download link
func (h *ReportHandlers) ExportStock(c echo.Context) error {
	ctx := c.Request().Context()

	export, err := h.reportService.ExportStockCSV(ctx)
	if err != nil {
		return common.SendServerError(c, "Failed to export stock report")
	}

	return c.JSON(http.StatusCreated, export)
}
