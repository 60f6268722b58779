package services

import (
	"context"
	"testing"
	"time"

	"stocktrack/internal/common"
	"stocktrack/internal/models"
	"stocktrack/internal/repositories"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InventoryServiceTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	cache       *MockCacheService
	service     InventoryService
	itemID      uuid.UUID
	warehouseID uuid.UUID
	targetID    uuid.UUID
	context     context.Context
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	mockPool, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mockPool

	suite.cache = new(MockCacheService)

	itemRepo := repositories.NewItemRepository(mockPool)
	warehouseRepo := repositories.NewWarehouseRepository(mockPool)
	saleRepo := repositories.NewSaleRepository(mockPool)
	wastageRepo := repositories.NewWastageRepository(mockPool)

	suite.service = NewInventoryService(mockPool, itemRepo, warehouseRepo, saleRepo, wastageRepo, suite.cache)
	suite.itemID = uuid.New()
	suite.warehouseID = uuid.New()
	suite.targetID = uuid.New()
	suite.context = context.Background()
}

func (suite *InventoryServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}

func (suite *InventoryServiceTestSuite) expectSourceItem(quantity int) {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at"}).
		AddRow(suite.itemID, "Basmati Rice 5kg", "Grains", quantity, 14.50, nil, suite.warehouseID, 20, now, now)
	suite.mock.ExpectQuery(`(?s)FROM inventory\s+WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnRows(rows)
}

func (suite *InventoryServiceTestSuite) expectTargetWarehouse() {
	rows := pgxmock.NewRows([]string{"id", "name", "location", "created_at"}).
		AddRow(suite.targetID, "North Depot", "Nashik", time.Now())
	suite.mock.ExpectQuery(`(?s)FROM warehouses\s+WHERE id = \$1`).
		WithArgs(suite.targetID).
		WillReturnRows(rows)
}

func (suite *InventoryServiceTestSuite) TestTransfer_IncrementsExistingDestination() {
	destinationID := uuid.New()
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.expectSourceItem(100)
	suite.expectTargetWarehouse()
	destRows := pgxmock.NewRows([]string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at"}).
		AddRow(destinationID, "Basmati Rice 5kg", "Grains", 10, 14.50, nil, suite.targetID, 20, now, now)
	suite.mock.ExpectQuery(`(?s)FROM inventory\s+WHERE name = \$1 AND warehouse_id = \$2`).
		WithArgs("Basmati Rice 5kg", suite.targetID).
		WillReturnRows(destRows)
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity \+ \$1`).
		WithArgs(30, destinationID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity - \$1.*AND quantity >= \$1`).
		WithArgs(30, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	suite.cache.On("InvalidateItems", mock.Anything).Return(nil)

	err := suite.service.Transfer(suite.context, suite.itemID, suite.targetID, 30)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.cache.AssertCalled(suite.T(), "InvalidateItems", mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestTransfer_ClonesWhenDestinationMissing() {
	suite.mock.ExpectBegin()
	suite.expectSourceItem(100)
	suite.expectTargetWarehouse()
	suite.mock.ExpectQuery(`(?s)FROM inventory\s+WHERE name = \$1 AND warehouse_id = \$2`).
		WithArgs("Basmati Rice 5kg", suite.targetID).
		WillReturnError(pgx.ErrNoRows)
	// Clone carries the source's category, price and threshold but only the
	// transferred quantity.
	suite.mock.ExpectExec(`INSERT INTO inventory`).
		WithArgs(pgxmock.AnyArg(), "Basmati Rice 5kg", "Grains", 30, 14.50, pgxmock.AnyArg(), suite.targetID, 20).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity - \$1.*AND quantity >= \$1`).
		WithArgs(30, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	suite.cache.On("InvalidateItems", mock.Anything).Return(nil)

	err := suite.service.Transfer(suite.context, suite.itemID, suite.targetID, 30)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryServiceTestSuite) TestTransfer_InsufficientStock() {
	suite.mock.ExpectBegin()
	suite.expectSourceItem(10)
	suite.mock.ExpectRollback()

	err := suite.service.Transfer(suite.context, suite.itemID, suite.targetID, 30)
	assert.ErrorIs(suite.T(), err, common.ErrInsufficientStock)
	suite.cache.AssertNotCalled(suite.T(), "InvalidateItems", mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestTransfer_SameWarehouseRejected() {
	suite.mock.ExpectBegin()
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at"}).
		AddRow(suite.itemID, "Basmati Rice 5kg", "Grains", 100, 14.50, nil, suite.warehouseID, 20, now, now)
	suite.mock.ExpectQuery(`(?s)FROM inventory\s+WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnRows(rows)
	suite.mock.ExpectRollback()

	err := suite.service.Transfer(suite.context, suite.itemID, suite.warehouseID, 30)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *InventoryServiceTestSuite) TestTransfer_ZeroQuantityRejected() {
	err := suite.service.Transfer(suite.context, suite.itemID, suite.targetID, 0)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *InventoryServiceTestSuite) TestTransfer_ConcurrentDecrementLoses() {
	destinationID := uuid.New()
	now := time.Now()

	suite.mock.ExpectBegin()
	suite.expectSourceItem(100)
	suite.expectTargetWarehouse()
	destRows := pgxmock.NewRows([]string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at"}).
		AddRow(destinationID, "Basmati Rice 5kg", "Grains", 10, 14.50, nil, suite.targetID, 20, now, now)
	suite.mock.ExpectQuery(`(?s)FROM inventory\s+WHERE name = \$1 AND warehouse_id = \$2`).
		WithArgs("Basmati Rice 5kg", suite.targetID).
		WillReturnRows(destRows)
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity \+ \$1`).
		WithArgs(30, destinationID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// Guarded decrement touches zero rows: stock moved underneath us.
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity - \$1.*AND quantity >= \$1`).
		WithArgs(30, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	err := suite.service.Transfer(suite.context, suite.itemID, suite.targetID, 30)
	assert.ErrorIs(suite.T(), err, common.ErrInsufficientStock)
}

func (suite *InventoryServiceTestSuite) TestRecordSale_Success() {
	suite.mock.ExpectBegin()
	suite.expectSourceItem(100)
	suite.mock.ExpectExec(`INSERT INTO sales_records`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, 10, 5.99, 59.90, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity - \$1.*AND quantity >= \$1`).
		WithArgs(10, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	suite.cache.On("InvalidateItems", mock.Anything).Return(nil)

	sale, err := suite.service.RecordSale(suite.context, suite.itemID, 10, 5.99, time.Time{})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 59.90, sale.TotalPrice)
	assert.Equal(suite.T(), 10, sale.Quantity)
	assert.False(suite.T(), sale.Date.IsZero())
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryServiceTestSuite) TestRecordSale_InsufficientStock() {
	suite.mock.ExpectBegin()
	suite.expectSourceItem(5)
	suite.mock.ExpectRollback()

	sale, err := suite.service.RecordSale(suite.context, suite.itemID, 10, 5.99, time.Time{})
	assert.ErrorIs(suite.T(), err, common.ErrInsufficientStock)
	assert.Nil(suite.T(), sale)
	suite.cache.AssertNotCalled(suite.T(), "InvalidateItems", mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestRecordSale_ZeroQuantityRejected() {
	sale, err := suite.service.RecordSale(suite.context, suite.itemID, 0, 5.99, time.Time{})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Nil(suite.T(), sale)
}

func (suite *InventoryServiceTestSuite) TestRecordWastage_Success() {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	suite.mock.ExpectBegin()
	suite.expectSourceItem(12)
	suite.mock.ExpectExec(`INSERT INTO wastage_records`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, 5, "expired", date).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity - \$1.*AND quantity >= \$1`).
		WithArgs(5, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	suite.cache.On("InvalidateItems", mock.Anything).Return(nil)

	record, err := suite.service.RecordWastage(suite.context, suite.itemID, 5, "expired", date)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "expired", record.Reason)
	assert.Equal(suite.T(), 5, record.Quantity)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InventoryServiceTestSuite) TestRecordWastage_MissingReasonRejected() {
	record, err := suite.service.RecordWastage(suite.context, suite.itemID, 5, "  ", time.Time{})
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Nil(suite.T(), record)
}

func (suite *InventoryServiceTestSuite) TestLowStockItems_FiltersByThreshold() {
	now := time.Now()
	suite.cache.On("GetItems", mock.Anything).Return(nil, nil)
	suite.cache.On("SetItems", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	columns := []string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at", "w_id", "w_name", "w_location"}
	rows := pgxmock.NewRows(columns).
		AddRow(uuid.New(), "Basmati Rice 5kg", "Grains", 120, 14.50, nil, suite.warehouseID, 20, now, now, nil, nil, nil).
		AddRow(uuid.New(), "Sunflower Oil 1L", "Oils", 10, 3.20, nil, suite.warehouseID, 10, now, now, nil, nil, nil).
		AddRow(uuid.New(), "Table Salt 1kg", "Spices", 4, 0.80, nil, suite.warehouseID, 10, now, now, nil, nil, nil)

	suite.mock.ExpectQuery(`(?s)FROM inventory i\s+LEFT JOIN warehouses w`).
		WithArgs(1000, 0).
		WillReturnRows(rows)

	low, err := suite.service.LowStockItems(suite.context)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), low, 2)
	// Quantity equal to the threshold counts as low; half or less is critical.
	assert.False(suite.T(), low[0].IsCritical())
	assert.True(suite.T(), low[1].IsCritical())
}

func (suite *InventoryServiceTestSuite) TestListItems_PageNotCachedAsSharedState() {
	now := time.Now()
	columns := []string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at", "w_id", "w_name", "w_location"}
	rows := pgxmock.NewRows(columns).
		AddRow(uuid.New(), "Basmati Rice 5kg", "Grains", 120, 14.50, nil, suite.warehouseID, 20, now, now, nil, nil, nil).
		AddRow(uuid.New(), "Sunflower Oil 1L", "Oils", 45, 3.20, nil, suite.warehouseID, 10, now, now, nil, nil, nil)

	suite.mock.ExpectQuery(`(?s)FROM inventory i\s+LEFT JOIN warehouses w`).
		WithArgs(5, 0).
		WillReturnRows(rows)

	items, err := suite.service.ListItems(suite.context, 5, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 2)
	// A page is not the shared list, so it must neither read nor overwrite
	// the cached full inventory.
	suite.cache.AssertNotCalled(suite.T(), "GetItems", mock.Anything)
	suite.cache.AssertNotCalled(suite.T(), "SetItems", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestListItems_OffsetPageNotCached() {
	now := time.Now()
	columns := []string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at", "w_id", "w_name", "w_location"}
	rows := pgxmock.NewRows(columns).
		AddRow(uuid.New(), "Table Salt 1kg", "Spices", 80, 0.80, nil, suite.warehouseID, 10, now, now, nil, nil, nil)

	suite.mock.ExpectQuery(`(?s)FROM inventory i\s+LEFT JOIN warehouses w`).
		WithArgs(1000, 10).
		WillReturnRows(rows)

	items, err := suite.service.ListItems(suite.context, 0, 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 1)
	suite.cache.AssertNotCalled(suite.T(), "GetItems", mock.Anything)
	suite.cache.AssertNotCalled(suite.T(), "SetItems", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestUpdateItem_NotFound() {
	item := &models.Item{
		ID:          suite.itemID,
		Name:        "Basmati Rice 5kg",
		Category:    "Grains",
		Quantity:    50,
		Price:       14.50,
		WarehouseID: suite.warehouseID,
		Threshold:   20,
	}

	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET name = \$1, category = \$2`).
		WithArgs(item.Name, item.Category, item.Quantity, item.Price, pgxmock.AnyArg(), item.WarehouseID, item.Threshold, item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.service.UpdateItem(suite.context, item)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	suite.cache.AssertNotCalled(suite.T(), "InvalidateItems", mock.Anything)
}

func (suite *InventoryServiceTestSuite) TestListSales_DefaultsPagination() {
	rows := pgxmock.NewRows([]string{"id", "item_id", "quantity", "price_per_unit", "total_price", "date"}).
		AddRow(uuid.New(), suite.itemID, 10, 5.99, 59.90, time.Now())

	// A bare request still returns rows: the zero limit is lifted to the
	// default page size instead of reaching the query as LIMIT 0.
	suite.mock.ExpectQuery(`(?s)FROM sales_records\s+ORDER BY date DESC`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	sales, err := suite.service.ListSales(suite.context, 0, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), sales, 1)
	assert.Equal(suite.T(), models.MovementSale, sales[0].Kind)
}

func (suite *InventoryServiceTestSuite) TestListWastage_ClampsNegativeParams() {
	rows := pgxmock.NewRows([]string{"id", "item_id", "quantity", "reason", "date"}).
		AddRow(uuid.New(), suite.itemID, 5, "expired", time.Now())

	suite.mock.ExpectQuery(`(?s)FROM wastage_records\s+ORDER BY date DESC`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	wastage, err := suite.service.ListWastage(suite.context, -5, -3)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), wastage, 1)
	assert.Equal(suite.T(), models.MovementWastage, wastage[0].Kind)
}

func (suite *InventoryServiceTestSuite) TestGetItem_NotFound() {
	suite.mock.ExpectQuery(`(?s)FROM inventory\s+WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnError(pgx.ErrNoRows)

	item, err := suite.service.GetItem(suite.context, suite.itemID)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.Nil(suite.T(), item)
}
