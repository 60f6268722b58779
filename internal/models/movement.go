package models

import (
	"time"

	"github.com/google/uuid"
)

// MovementKind tags the stock movement ledger variants.
type MovementKind string

const (
	MovementSale        MovementKind = "sale"
	MovementWastage     MovementKind = "wastage"
	MovementTransferOut MovementKind = "transfer_out"
	MovementTransferIn  MovementKind = "transfer_in"
)

// Movement is the shared base of all ledger rows. Ledger rows are append-only:
// repositories expose create and list operations, never update or delete.
type Movement struct {
	ID       uuid.UUID    `json:"id" db:"id"`
	Kind     MovementKind `json:"kind" db:"-"`
	ItemID   uuid.UUID    `json:"item_id" db:"item_id"`
	Quantity int          `json:"quantity" db:"quantity"`
	Date     time.Time    `json:"date" db:"date"`
}

// SaleRecord is an immutable record of a sale event.
type SaleRecord struct {
	Movement
	PricePerUnit float64 `json:"price_per_unit" db:"price_per_unit"`
	TotalPrice   float64 `json:"total_price" db:"total_price"`
}

// WastageRecord is an immutable record of stock written off.
type WastageRecord struct {
	Movement
	Reason string `json:"reason" db:"reason"`
}
