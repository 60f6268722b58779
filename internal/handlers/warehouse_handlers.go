package handlers

import (
	"net/http"

	"stocktrack/internal/common"
	"stocktrack/internal/models"
	"stocktrack/internal/services"

	"github.com/labstack/echo/v4"
)

// WarehouseHandlers handles warehouse-related HTTP requests
type WarehouseHandlers struct {
	warehouseService services.WarehouseService
}

func NewWarehouseHandlers(warehouseService services.WarehouseService) *WarehouseHandlers {
	return &WarehouseHandlers{warehouseService: warehouseService}
}

// ListWarehouses handles getting all warehouses ordered by name
func (h *WarehouseHandlers) ListWarehouses(c echo.Context) error {
	ctx := c.Request().Context()

	warehouses, err := h.warehouseService.List(ctx, 0, 0)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"warehouses": warehouses,
		"count":      len(warehouses),
	})
}

// WarehouseRequest represents the warehouse create/update payload
type WarehouseRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// CreateWarehouse handles creating a warehouse
func (h *WarehouseHandlers) CreateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	var req WarehouseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Location, "location"); err != nil {
		return common.SendValidationError(c, "location", err.Error())
	}

	warehouse := &models.Warehouse{
		Name:     req.Name,
		Location: req.Location,
	}
	if err := h.warehouseService.Create(ctx, warehouse); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, warehouse)
}

// GetWarehouse handles getting a single warehouse by ID
func (h *WarehouseHandlers) GetWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	warehouseID, err := common.ValidateUUID(c.Param("id"), "warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	warehouse, err := h.warehouseService.GetByID(ctx, warehouseID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, warehouse)
}

// UpdateWarehouse handles updating a warehouse's name and location
func (h *WarehouseHandlers) UpdateWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	warehouseID, err := common.ValidateUUID(c.Param("id"), "warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req WarehouseRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Location, "location"); err != nil {
		return common.SendValidationError(c, "location", err.Error())
	}

	warehouse := &models.Warehouse{
		ID:       warehouseID,
		Name:     req.Name,
		Location: req.Location,
	}
	if err := h.warehouseService.Update(ctx, warehouse); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, warehouse)
}

// DeleteWarehouse handles deleting a warehouse
func (h *WarehouseHandlers) DeleteWarehouse(c echo.Context) error {
	ctx := c.Request().Context()

	warehouseID, err := common.ValidateUUID(c.Param("id"), "warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.warehouseService.Delete(ctx, warehouseID); err != nil {
		return serviceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
