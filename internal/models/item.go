package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemSearchFilter holds search and filter criteria for inventory item queries
type ItemSearchFilter struct {
	Query        string     `json:"query,omitempty"`         // Full-text search across item name, category, warehouse name
	WarehouseID  *uuid.UUID `json:"warehouse_id,omitempty"`  // Warehouse filter
	Category     *string    `json:"category,omitempty"`      // Exact category match
	MinQuantity  *int       `json:"min_quantity,omitempty"`  // Minimum stock quantity
	MaxQuantity  *int       `json:"max_quantity,omitempty"`  // Maximum stock quantity
	LowStockOnly bool       `json:"low_stock_only,omitempty"` // Only items at or below their threshold
	ExpiryBefore *time.Time `json:"expiry_before,omitempty"` // Expiry before date
	SortBy       string     `json:"sort_by,omitempty"`       // Sort field: name, quantity, updated_at, category
	SortOrder    string     `json:"sort_order,omitempty"`    // Sort order: asc, desc
	Limit        int        `json:"limit,omitempty"`         // Page size (default: 50)
	Offset       int        `json:"offset,omitempty"`        // Page offset
}

// WarehouseRef is the warehouse summary embedded in item listings.
type WarehouseRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
}

// Item is a stocked product instance scoped to one warehouse.
type Item struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Category    string        `json:"category" db:"category"`
	Quantity    int           `json:"quantity" db:"quantity"`
	Price       float64       `json:"price" db:"price"`
	ExpiryDate  *time.Time    `json:"expiry_date" db:"expiry_date"`
	WarehouseID uuid.UUID     `json:"warehouse_id" db:"warehouse_id"`
	Threshold   int           `json:"threshold" db:"threshold"`
	Warehouse   *WarehouseRef `json:"warehouse,omitempty" db:"-"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether the item is at or below its reorder threshold.
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.Threshold
}

// IsCritical reports whether the item is at or below half its threshold.
func (i *Item) IsCritical() bool {
	return i.Quantity <= i.Threshold/2
}
