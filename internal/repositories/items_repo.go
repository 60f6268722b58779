package repositories

import (
	"context"
	"fmt"
	"strings"

	"stocktrack/internal/common"
	"stocktrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the querier shared by all repositories. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so the same repository code runs inside and outside a
// transaction.
type Database interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Item, error)
	GetByNameAndWarehouse(ctx context.Context, name string, warehouseID uuid.UUID) (*models.Item, error)
	AddQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	RemoveQuantity(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	Search(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
}

type itemRepo struct {
	db Database
}

func NewItemRepository(db Database) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO inventory (id, name, category, quantity, price, expiry_date, warehouse_id, threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.Name, item.Category, item.Quantity, item.Price, item.ExpiryDate, item.WarehouseID, item.Threshold)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item := &models.Item{}
	query := `
		SELECT id, name, category, quantity, price, expiry_date, warehouse_id, threshold, created_at, updated_at
		FROM inventory
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Price, &item.ExpiryDate, &item.WarehouseID, &item.Threshold, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) GetByNameAndWarehouse(ctx context.Context, name string, warehouseID uuid.UUID) (*models.Item, error) {
	item := &models.Item{}
	query := `
		SELECT id, name, category, quantity, price, expiry_date, warehouse_id, threshold, created_at, updated_at
		FROM inventory
		WHERE name = $1 AND warehouse_id = $2
	`
	err := r.db.QueryRow(ctx, query, name, warehouseID).Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Price, &item.ExpiryDate, &item.WarehouseID, &item.Threshold, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE inventory
		SET name = $1, category = $2, quantity = $3, price = $4, expiry_date = $5, warehouse_id = $6, threshold = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, item.Name, item.Category, item.Quantity, item.Price, item.ExpiryDate, item.WarehouseID, item.Threshold, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM inventory WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// AddQuantity increments the on-hand quantity as a raw SQL expression rather
// than a client-side read-modify-write.
func (r *itemRepo) AddQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE inventory
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, quantity, id)
	return err
}

// RemoveQuantity decrements on-hand quantity, guarded so it can never go
// negative. The boolean result reports whether a row was updated; false means
// the item is missing or short of stock.
func (r *itemRepo) RemoveQuantity(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2 AND quantity >= $1
	`
	tag, err := r.db.Exec(ctx, query, quantity, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *itemRepo) List(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	query := `
		SELECT i.id, i.name, i.category, i.quantity, i.price, i.expiry_date, i.warehouse_id, i.threshold, i.created_at, i.updated_at,
		       w.id, w.name, w.location
		FROM inventory i
		LEFT JOIN warehouses w ON w.id = i.warehouse_id
		ORDER BY i.name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItemsWithWarehouse(rows)
}

// Search performs filtered search on inventory items
func (r *itemRepo) Search(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if filter.SortBy == "" {
		filter.SortBy = "name"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "asc"
	}

	queryBase := `
		SELECT i.id, i.name, i.category, i.quantity, i.price, i.expiry_date, i.warehouse_id, i.threshold, i.created_at, i.updated_at,
		       w.id, w.name, w.location
		FROM inventory i
		LEFT JOIN warehouses w ON w.id = i.warehouse_id
		WHERE 1=1
	`
	args := []interface{}{}
	conditionCount := 0

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (i.name ILIKE $%d OR i.category ILIKE $%d OR w.name ILIKE $%d)`, conditionCount, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.WarehouseID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND i.warehouse_id = $%d`, conditionCount)
		args = append(args, *filter.WarehouseID)
	}

	if filter.Category != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND i.category = $%d`, conditionCount)
		args = append(args, *filter.Category)
	}

	if filter.MinQuantity != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND i.quantity >= $%d`, conditionCount)
		args = append(args, *filter.MinQuantity)
	}
	if filter.MaxQuantity != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND i.quantity <= $%d`, conditionCount)
		args = append(args, *filter.MaxQuantity)
	}

	if filter.LowStockOnly {
		queryBase += ` AND i.quantity <= i.threshold`
	}

	if filter.ExpiryBefore != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND i.expiry_date IS NOT NULL AND i.expiry_date <= $%d`, conditionCount)
		args = append(args, *filter.ExpiryBefore)
	}

	sortField := "i.name"
	switch filter.SortBy {
	case "quantity":
		sortField = "i.quantity"
	case "updated_at":
		sortField = "i.updated_at"
	case "category":
		sortField = "i.category"
	}

	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}

	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItemsWithWarehouse(rows)
}

func scanItemsWithWarehouse(rows pgx.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		var whID *uuid.UUID
		var whName, whLocation *string
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Price, &item.ExpiryDate, &item.WarehouseID, &item.Threshold, &item.CreatedAt, &item.UpdatedAt,
			&whID, &whName, &whLocation); err != nil {
			return nil, err
		}
		if whID != nil {
			item.Warehouse = &models.WarehouseRef{
				ID:       *whID,
				Name:     common.SafeString(whName),
				Location: common.SafeString(whLocation),
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
