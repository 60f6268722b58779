package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"stocktrack/internal/caching"
	"stocktrack/internal/common"
	"stocktrack/internal/models"
	"stocktrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// sharedStateTTL matches the periodic refresh interval, so cached lists are
// at most one refresh cycle stale.
const sharedStateTTL = 30 * time.Second

type InventoryService interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error)
	SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)

	// Composite workflows, each a single transaction
	Transfer(ctx context.Context, itemID, targetWarehouseID uuid.UUID, quantity int) error
	RecordSale(ctx context.Context, itemID uuid.UUID, quantity int, pricePerUnit float64, date time.Time) (*models.SaleRecord, error)
	RecordWastage(ctx context.Context, itemID uuid.UUID, quantity int, reason string, date time.Time) (*models.WastageRecord, error)

	// Ledger reads
	ListSales(ctx context.Context, limit, offset int) ([]*models.SaleRecord, error)
	ListWastage(ctx context.Context, limit, offset int) ([]*models.WastageRecord, error)

	// LowStockItems is recomputed from the current item list on every call
	LowStockItems(ctx context.Context) ([]*models.Item, error)
}

type inventoryService struct {
	db            repositories.TxStarter
	itemRepo      repositories.ItemRepository
	warehouseRepo repositories.WarehouseRepository
	saleRepo      repositories.SaleRepository
	wastageRepo   repositories.WastageRepository
	cacheService  caching.CacheService
}

func NewInventoryService(db repositories.TxStarter, itemRepo repositories.ItemRepository, warehouseRepo repositories.WarehouseRepository, saleRepo repositories.SaleRepository, wastageRepo repositories.WastageRepository, cacheService caching.CacheService) InventoryService {
	return &inventoryService{
		db:            db,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		saleRepo:      saleRepo,
		wastageRepo:   wastageRepo,
		cacheService:  cacheService,
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, item *models.Item) error {
	if err := common.ValidateRequiredString(item.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", common.ErrValidation)
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", common.ErrValidation)
	}
	if item.Threshold < 0 {
		return fmt.Errorf("%w: threshold cannot be negative", common.ErrValidation)
	}

	if _, err := s.warehouseRepo.GetByID(ctx, item.WarehouseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("warehouse %s: %w", item.WarehouseID, common.ErrNotFound)
		}
		return fmt.Errorf("load warehouse: %w", err)
	}

	item.ID = uuid.New()
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	s.invalidateItems(ctx, "create item")
	return nil
}

func (s *inventoryService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := common.ValidateRequiredString(item.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", common.ErrValidation)
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item %s: %w", item.ID, common.ErrNotFound)
		}
		return fmt.Errorf("update item: %w", err)
	}

	s.invalidateItems(ctx, "update item")
	return nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.invalidateItems(ctx, "delete item")
	return nil
}

func (s *inventoryService) ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	// The unpaginated list is the shared state served to every view; only
	// that shape is read from or written to the cache. A paginated page must
	// never land under the shared key.
	sharedShape := limit == 0 && offset == 0
	if sharedShape {
		if cached, err := s.cacheService.GetItems(ctx); cached != nil {
			return cached, nil
		} else if err != nil {
			log.Printf("Cache error for item list: %v", err)
		}
	}

	if limit <= 0 {
		limit = 1000
	}
	items, err := s.itemRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if sharedShape {
		if cacheErr := s.cacheService.SetItems(ctx, items, sharedStateTTL); cacheErr != nil {
			log.Printf("Failed to cache item list: %v", cacheErr)
		}
	}
	return items, nil
}

func (s *inventoryService) SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	return s.itemRepo.Search(ctx, filter)
}

// Transfer moves quantity units of an item into the target warehouse. The
// decrement, and the increment or clone on the destination side, commit
// together or not at all.
func (s *inventoryService) Transfer(ctx context.Context, itemID, targetWarehouseID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: transfer quantity must be at least 1", common.ErrValidation)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer tx.Rollback(ctx)

	items := repositories.NewItemRepository(tx)
	warehouses := repositories.NewWarehouseRepository(tx)

	source, err := items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("item %s: %w", itemID, common.ErrNotFound)
		}
		return fmt.Errorf("load source item: %w", err)
	}
	if source.WarehouseID == targetWarehouseID {
		return fmt.Errorf("%w: target warehouse must differ from source", common.ErrValidation)
	}
	if source.Quantity < quantity {
		return fmt.Errorf("%w: %d on hand, %d requested", common.ErrInsufficientStock, source.Quantity, quantity)
	}

	if _, err := warehouses.GetByID(ctx, targetWarehouseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("warehouse %s: %w", targetWarehouseID, common.ErrNotFound)
		}
		return fmt.Errorf("load target warehouse: %w", err)
	}

	// Destination lookup is by exact item name within the target warehouse
	destination, err := items.GetByNameAndWarehouse(ctx, source.Name, targetWarehouseID)
	switch {
	case err == nil:
		if err := items.AddQuantity(ctx, destination.ID, quantity); err != nil {
			return fmt.Errorf("increment destination item: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		clone := &models.Item{
			ID:          uuid.New(),
			Name:        source.Name,
			Category:    source.Category,
			Quantity:    quantity,
			Price:       source.Price,
			ExpiryDate:  source.ExpiryDate,
			WarehouseID: targetWarehouseID,
			Threshold:   source.Threshold,
		}
		if err := items.Create(ctx, clone); err != nil {
			return fmt.Errorf("create destination item: %w", err)
		}
	default:
		return fmt.Errorf("look up destination item: %w", err)
	}

	ok, err := items.RemoveQuantity(ctx, itemID, quantity)
	if err != nil {
		return fmt.Errorf("decrement source item: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: stock changed during transfer", common.ErrInsufficientStock)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}

	s.invalidateItems(ctx, "transfer")
	return nil
}

// RecordSale appends a sale ledger row and decrements the item's quantity in
// one transaction. The ledger insert happens first; the guarded decrement
// rolls both back when stock is short.
func (s *inventoryService) RecordSale(ctx context.Context, itemID uuid.UUID, quantity int, pricePerUnit float64, date time.Time) (*models.SaleRecord, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: sale quantity must be at least 1", common.ErrValidation)
	}
	if pricePerUnit < 0 {
		return nil, fmt.Errorf("%w: price per unit cannot be negative", common.ErrValidation)
	}
	if date.IsZero() {
		date = time.Now()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback(ctx)

	items := repositories.NewItemRepository(tx)
	sales := repositories.NewSaleRepository(tx)

	source, err := items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", itemID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}
	if source.Quantity < quantity {
		return nil, fmt.Errorf("%w: %d on hand, %d requested", common.ErrInsufficientStock, source.Quantity, quantity)
	}

	sale := &models.SaleRecord{
		Movement: models.Movement{
			ID:       uuid.New(),
			Kind:     models.MovementSale,
			ItemID:   itemID,
			Quantity: quantity,
			Date:     date,
		},
		PricePerUnit: pricePerUnit,
		TotalPrice:   roundMoney(float64(quantity) * pricePerUnit),
	}

	if err := sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("append sale record: %w", err)
	}

	ok, err := items.RemoveQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("decrement item quantity: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: stock changed during sale", common.ErrInsufficientStock)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}

	s.invalidateItems(ctx, "sale")
	return sale, nil
}

// RecordWastage mirrors RecordSale with a free-text reason instead of a price.
func (s *inventoryService) RecordWastage(ctx context.Context, itemID uuid.UUID, quantity int, reason string, date time.Time) (*models.WastageRecord, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: wastage quantity must be at least 1", common.ErrValidation)
	}
	if err := common.ValidateRequiredString(reason, "reason"); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if date.IsZero() {
		date = time.Now()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin wastage: %w", err)
	}
	defer tx.Rollback(ctx)

	items := repositories.NewItemRepository(tx)
	wastage := repositories.NewWastageRepository(tx)

	source, err := items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", itemID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load item: %w", err)
	}
	if source.Quantity < quantity {
		return nil, fmt.Errorf("%w: %d on hand, %d requested", common.ErrInsufficientStock, source.Quantity, quantity)
	}

	record := &models.WastageRecord{
		Movement: models.Movement{
			ID:       uuid.New(),
			Kind:     models.MovementWastage,
			ItemID:   itemID,
			Quantity: quantity,
			Date:     date,
		},
		Reason: reason,
	}

	if err := wastage.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("append wastage record: %w", err)
	}

	ok, err := items.RemoveQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("decrement item quantity: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: stock changed during wastage", common.ErrInsufficientStock)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit wastage: %w", err)
	}

	s.invalidateItems(ctx, "wastage")
	return record, nil
}

func (s *inventoryService) ListSales(ctx context.Context, limit, offset int) ([]*models.SaleRecord, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.saleRepo.List(ctx, limit, offset)
}

func (s *inventoryService) ListWastage(ctx context.Context, limit, offset int) ([]*models.WastageRecord, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.wastageRepo.List(ctx, limit, offset)
}

func (s *inventoryService) LowStockItems(ctx context.Context) ([]*models.Item, error) {
	all, err := s.ListItems(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	var low []*models.Item
	for _, item := range all {
		if item.IsLowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *inventoryService) invalidateItems(ctx context.Context, op string) {
	if cacheErr := s.cacheService.InvalidateItems(ctx); cacheErr != nil {
		log.Printf("Failed to invalidate item cache after %s: %v", op, cacheErr)
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
