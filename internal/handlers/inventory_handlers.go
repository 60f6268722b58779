package handlers

import (
	"errors"
	"net/http"
	"time"

	"stocktrack/internal/common"
	"stocktrack/internal/models"
	"stocktrack/internal/services"

	"github.com/labstack/echo/v4"
)

// maxMovementQuantity bounds a single transfer, sale or wastage request.
const maxMovementQuantity = 1000000

// InventoryHandlers handles item-related HTTP requests
type InventoryHandlers struct {
	inventoryService services.InventoryService
}

// NewInventoryHandlers creates a new inventory handlers instance
func NewInventoryHandlers(inventoryService services.InventoryService) *InventoryHandlers {
	return &InventoryHandlers{inventoryService: inventoryService}
}

// serviceError maps service sentinel errors onto HTTP status codes.
func serviceError(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// ListItemsRequest represents query parameters for listing items
type ListItemsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListItems handles getting a list of items ordered by name
func (h *InventoryHandlers) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if req.Limit < 0 {
		req.Limit = 0
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	items, err := h.inventoryService.ListItems(ctx, req.Limit, req.Offset)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

// CreateItemRequest represents the item creation request payload
type CreateItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Quantity    int     `json:"quantity" validate:"min=0"`
	Price       float64 `json:"price" validate:"min=0"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
	WarehouseID string  `json:"warehouse_id" validate:"required"`
	Threshold   int     `json:"threshold" validate:"min=0"`
}

// CreateItem handles creating a new inventory item
func (h *InventoryHandlers) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidateRequiredString(req.Category, "category"); err != nil {
		return common.SendValidationError(c, "category", err.Error())
	}
	if req.Quantity < 0 {
		return common.SendValidationError(c, "quantity", "quantity cannot be negative")
	}
	if err := common.ValidateNonNegativeFloat(req.Price, "price"); err != nil {
		return common.SendValidationError(c, "price", err.Error())
	}
	if req.Threshold < 0 {
		return common.SendValidationError(c, "threshold", "threshold cannot be negative")
	}

	warehouseID, err := common.ValidateUUID(req.WarehouseID, "warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item := &models.Item{
		Name:        req.Name,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Price:       req.Price,
		WarehouseID: warehouseID,
		Threshold:   req.Threshold,
	}
	if expiryStr := common.SafeString(req.ExpiryDate); expiryStr != "" {
		if err := common.ValidateDateFormat(expiryStr, "expiry_date"); err != nil {
			return common.SendValidationError(c, "expiry_date", err.Error())
		}
		expiry, _ := time.Parse("2006-01-02", expiryStr)
		item.ExpiryDate = &expiry
	}

	if err := h.inventoryService.CreateItem(ctx, item); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, item)
}

// GetItem handles getting a single item by ID
func (h *InventoryHandlers) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item, err := h.inventoryService.GetItem(ctx, itemID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// UpdateItemRequest represents the item update request payload
type UpdateItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Quantity    int     `json:"quantity" validate:"min=0"`
	Price       float64 `json:"price" validate:"min=0"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
	WarehouseID string  `json:"warehouse_id" validate:"required"`
	Threshold   int     `json:"threshold" validate:"min=0"`
}

// UpdateItem handles replacing an item's editable fields
func (h *InventoryHandlers) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.Quantity < 0 {
		return common.SendValidationError(c, "quantity", "quantity cannot be negative")
	}
	if err := common.ValidateNonNegativeFloat(req.Price, "price"); err != nil {
		return common.SendValidationError(c, "price", err.Error())
	}
	if req.Threshold < 0 {
		return common.SendValidationError(c, "threshold", "threshold cannot be negative")
	}

	warehouseID, err := common.ValidateUUID(req.WarehouseID, "warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item := &models.Item{
		ID:          itemID,
		Name:        req.Name,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Price:       req.Price,
		WarehouseID: warehouseID,
		Threshold:   req.Threshold,
	}
	if expiryStr := common.SafeString(req.ExpiryDate); expiryStr != "" {
		if err := common.ValidateDateFormat(expiryStr, "expiry_date"); err != nil {
			return common.SendValidationError(c, "expiry_date", err.Error())
		}
		expiry, _ := time.Parse("2006-01-02", expiryStr)
		item.ExpiryDate = &expiry
	}

	if err := h.inventoryService.UpdateItem(ctx, item); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles deleting an item
func (h *InventoryHandlers) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.inventoryService.DeleteItem(ctx, itemID); err != nil {
		return serviceError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// SearchItemsRequest represents search query parameters
type SearchItemsRequest struct {
	Query        string `query:"q"`
	WarehouseID  string `query:"warehouse_id"`
	Category     string `query:"category"`
	MinQuantity  *int   `query:"min_quantity"`
	MaxQuantity  *int   `query:"max_quantity"`
	LowStockOnly bool   `query:"low_stock_only"`
	SortBy       string `query:"sort_by"`
	SortOrder    string `query:"sort_order"`
	Limit        int    `query:"limit"`
	Offset       int    `query:"offset"`
}

// SearchItems handles filtered item search
func (h *InventoryHandlers) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()

	var req SearchItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter := &models.ItemSearchFilter{
		Query:        req.Query,
		MinQuantity:  req.MinQuantity,
		MaxQuantity:  req.MaxQuantity,
		LowStockOnly: req.LowStockOnly,
		SortBy:       req.SortBy,
		SortOrder:    req.SortOrder,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}
	if req.Category != "" {
		filter.Category = &req.Category
	}
	if req.WarehouseID != "" {
		warehouseID, err := common.ValidateUUID(req.WarehouseID, "warehouse_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.WarehouseID = &warehouseID
	}

	items, err := h.inventoryService.SearchItems(ctx, filter)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// TransferRequest represents the stock transfer payload
type TransferRequest struct {
	TargetWarehouseID string `json:"target_warehouse_id" validate:"required"`
	Quantity          int    `json:"quantity" validate:"required,min=1"`
}

// TransferItem moves stock from an item's warehouse to a target warehouse
func (h *InventoryHandlers) TransferItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	targetWarehouseID, err := common.ValidateUUID(req.TargetWarehouseID, "target_warehouse_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", maxMovementQuantity); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}

	if err := h.inventoryService.Transfer(ctx, itemID, targetWarehouseID, req.Quantity); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Transfer completed",
	})
}

// SaleRequest represents the sale recording payload
type SaleRequest struct {
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	PricePerUnit float64 `json:"price_per_unit" validate:"required,min=0"`
	Date         *string `json:"date,omitempty"`
}

// RecordSale records a sale and decrements stock
func (h *InventoryHandlers) RecordSale(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req SaleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", maxMovementQuantity); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}
	if err := common.ValidateNonNegativeFloat(req.PricePerUnit, "price_per_unit"); err != nil {
		return common.SendValidationError(c, "price_per_unit", err.Error())
	}

	var date time.Time
	if dateStr := common.SafeString(req.Date); dateStr != "" {
		if err := common.ValidateDateFormat(dateStr, "date"); err != nil {
			return common.SendValidationError(c, "date", err.Error())
		}
		date, _ = time.Parse("2006-01-02", dateStr)
	}

	sale, err := h.inventoryService.RecordSale(ctx, itemID, req.Quantity, req.PricePerUnit, date)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, sale)
}

// WastageRequest represents the wastage recording payload
type WastageRequest struct {
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Reason   string  `json:"reason" validate:"required"`
	Date     *string `json:"date,omitempty"`
}

// RecordWastage records wastage and decrements stock
func (h *InventoryHandlers) RecordWastage(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := common.ValidateUUID(c.Param("id"), "item_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req WastageRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", maxMovementQuantity); err != nil {
		return common.SendValidationError(c, "quantity", err.Error())
	}
	if err := common.ValidateRequiredString(req.Reason, "reason"); err != nil {
		return common.SendValidationError(c, "reason", err.Error())
	}

	var date time.Time
	if dateStr := common.SafeString(req.Date); dateStr != "" {
		if err := common.ValidateDateFormat(dateStr, "date"); err != nil {
			return common.SendValidationError(c, "date", err.Error())
		}
		date, _ = time.Parse("2006-01-02", dateStr)
	}

	wastage, err := h.inventoryService.RecordWastage(ctx, itemID, req.Quantity, req.Reason, date)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, wastage)
}

// ListSales handles listing recorded sales
func (h *InventoryHandlers) ListSales(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	sales, err := h.inventoryService.ListSales(ctx, req.Limit, req.Offset)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sales": sales,
		"count": len(sales),
	})
}

// ListWastage handles listing recorded wastage
func (h *InventoryHandlers) ListWastage(c echo.Context) error {
	ctx := c.Request().Context()

	var req ListItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	wastage, err := h.inventoryService.ListWastage(ctx, req.Limit, req.Offset)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"wastage": wastage,
		"count":   len(wastage),
	})
}
