package repositories

import (
	"context"

	"stocktrack/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaleRepository covers the sales ledger. Rows are append-only: there is no
// update or delete.
type SaleRepository interface {
	Create(ctx context.Context, sale *models.SaleRecord) error
	List(ctx context.Context, limit, offset int) ([]*models.SaleRecord, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.SaleRecord, error)
}

// WastageRepository covers the wastage ledger, same append-only contract.
type WastageRepository interface {
	Create(ctx context.Context, wastage *models.WastageRecord) error
	List(ctx context.Context, limit, offset int) ([]*models.WastageRecord, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.WastageRecord, error)
}

type saleRepo struct {
	db Database
}

func NewSaleRepository(db Database) SaleRepository {
	return &saleRepo{db: db}
}

func (r *saleRepo) Create(ctx context.Context, sale *models.SaleRecord) error {
	query := `
		INSERT INTO sales_records (id, item_id, quantity, price_per_unit, total_price, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, sale.ID, sale.ItemID, sale.Quantity, sale.PricePerUnit, sale.TotalPrice, sale.Date)
	return err
}

func (r *saleRepo) List(ctx context.Context, limit, offset int) ([]*models.SaleRecord, error) {
	query := `
		SELECT id, item_id, quantity, price_per_unit, total_price, date
		FROM sales_records
		ORDER BY date DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSales(rows)
}

func (r *saleRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.SaleRecord, error) {
	query := `
		SELECT id, item_id, quantity, price_per_unit, total_price, date
		FROM sales_records
		WHERE item_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSales(rows)
}

func scanSales(rows pgx.Rows) ([]*models.SaleRecord, error) {
	var sales []*models.SaleRecord
	for rows.Next() {
		sale := &models.SaleRecord{}
		if err := rows.Scan(&sale.ID, &sale.ItemID, &sale.Quantity, &sale.PricePerUnit, &sale.TotalPrice, &sale.Date); err != nil {
			return nil, err
		}
		sale.Kind = models.MovementSale
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

type wastageRepo struct {
	db Database
}

func NewWastageRepository(db Database) WastageRepository {
	return &wastageRepo{db: db}
}

func (r *wastageRepo) Create(ctx context.Context, wastage *models.WastageRecord) error {
	query := `
		INSERT INTO wastage_records (id, item_id, quantity, reason, date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, wastage.ID, wastage.ItemID, wastage.Quantity, wastage.Reason, wastage.Date)
	return err
}

func (r *wastageRepo) List(ctx context.Context, limit, offset int) ([]*models.WastageRecord, error) {
	query := `
		SELECT id, item_id, quantity, reason, date
		FROM wastage_records
		ORDER BY date DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWastage(rows)
}

func (r *wastageRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.WastageRecord, error) {
	query := `
		SELECT id, item_id, quantity, reason, date
		FROM wastage_records
		WHERE item_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWastage(rows)
}

func scanWastage(rows pgx.Rows) ([]*models.WastageRecord, error) {
	var records []*models.WastageRecord
	for rows.Next() {
		record := &models.WastageRecord{}
		if err := rows.Scan(&record.ID, &record.ItemID, &record.Quantity, &record.Reason, &record.Date); err != nil {
			return nil, err
		}
		record.Kind = models.MovementWastage
		records = append(records, record)
	}
	return records, rows.Err()
}
