package repositories

import (
	"context"
	"testing"
	"time"

	"stocktrack/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ItemRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        ItemRepository
	itemID      uuid.UUID
	warehouseID uuid.UUID
	context     context.Context
}

func (suite *ItemRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewItemRepository(mock)
	suite.itemID = uuid.New()
	suite.warehouseID = uuid.New()
	suite.context = context.Background()
}

func (suite *ItemRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestItemRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ItemRepoTestSuite))
}

func itemColumns() []string {
	return []string{"id", "name", "category", "quantity", "price", "expiry_date", "warehouse_id", "threshold", "created_at", "updated_at"}
}

func (suite *ItemRepoTestSuite) TestCreate_Success() {
	item := &models.Item{
		ID:          suite.itemID,
		Name:        "Basmati Rice 5kg",
		Category:    "Grains",
		Quantity:    120,
		Price:       14.50,
		WarehouseID: suite.warehouseID,
		Threshold:   20,
	}

	suite.mock.ExpectExec(`INSERT INTO inventory`).
		WithArgs(item.ID, item.Name, item.Category, item.Quantity, item.Price, item.ExpiryDate, item.WarehouseID, item.Threshold).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, item)
	assert.NoError(suite.T(), err)
}

func (suite *ItemRepoTestSuite) TestGetByID_Success() {
	now := time.Now()
	rows := pgxmock.NewRows(itemColumns()).
		AddRow(suite.itemID, "Basmati Rice 5kg", "Grains", 120, 14.50, nil, suite.warehouseID, 20, now, now)

	suite.mock.ExpectQuery(`SELECT id, name, category, quantity, price, expiry_date, warehouse_id, threshold, created_at, updated_at\s+FROM inventory\s+WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnRows(rows)

	item, err := suite.repo.GetByID(suite.context, suite.itemID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Basmati Rice 5kg", item.Name)
	assert.Equal(suite.T(), 120, item.Quantity)
	assert.Nil(suite.T(), item.ExpiryDate)
}

func (suite *ItemRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`FROM inventory\s+WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnError(pgx.ErrNoRows)

	item, err := suite.repo.GetByID(suite.context, suite.itemID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), item)
}

func (suite *ItemRepoTestSuite) TestGetByNameAndWarehouse_Success() {
	now := time.Now()
	rows := pgxmock.NewRows(itemColumns()).
		AddRow(suite.itemID, "Basmati Rice 5kg", "Grains", 30, 14.50, nil, suite.warehouseID, 20, now, now)

	suite.mock.ExpectQuery(`FROM inventory\s+WHERE name = \$1 AND warehouse_id = \$2`).
		WithArgs("Basmati Rice 5kg", suite.warehouseID).
		WillReturnRows(rows)

	item, err := suite.repo.GetByNameAndWarehouse(suite.context, "Basmati Rice 5kg", suite.warehouseID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.itemID, item.ID)
	assert.Equal(suite.T(), suite.warehouseID, item.WarehouseID)
}

func (suite *ItemRepoTestSuite) TestAddQuantity() {
	suite.mock.ExpectExec(`UPDATE inventory\s+SET quantity = quantity \+ \$1`).
		WithArgs(30, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.AddQuantity(suite.context, suite.itemID, 30)
	assert.NoError(suite.T(), err)
}

func (suite *ItemRepoTestSuite) TestRemoveQuantity_Success() {
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity - \$1.*WHERE id = \$2 AND quantity >= \$1`).
		WithArgs(30, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := suite.repo.RemoveQuantity(suite.context, suite.itemID, 30)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
}

func (suite *ItemRepoTestSuite) TestRemoveQuantity_InsufficientStock() {
	// The guard clause filters out the row, so zero rows are updated.
	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET quantity = quantity - \$1.*WHERE id = \$2 AND quantity >= \$1`).
		WithArgs(500, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := suite.repo.RemoveQuantity(suite.context, suite.itemID, 500)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *ItemRepoTestSuite) TestList_JoinsWarehouse() {
	now := time.Now()
	columns := append(itemColumns(), "w_id", "w_name", "w_location")
	rows := pgxmock.NewRows(columns).
		AddRow(suite.itemID, "Basmati Rice 5kg", "Grains", 120, 14.50, nil, suite.warehouseID, 20, now, now,
			&suite.warehouseID, strPtr("Central Depot"), strPtr("Pune")).
		AddRow(uuid.New(), "Sunflower Oil 1L", "Oils", 45, 3.20, nil, suite.warehouseID, 10, now, now,
			nil, nil, nil)

	suite.mock.ExpectQuery(`FROM inventory i\s+LEFT JOIN warehouses w ON w.id = i.warehouse_id\s+ORDER BY i.name`).
		WithArgs(100, 0).
		WillReturnRows(rows)

	items, err := suite.repo.List(suite.context, 100, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 2)
	assert.NotNil(suite.T(), items[0].Warehouse)
	assert.Equal(suite.T(), "Central Depot", items[0].Warehouse.Name)
	assert.Nil(suite.T(), items[1].Warehouse)
}

func (suite *ItemRepoTestSuite) TestSearch_LowStockOnly() {
	now := time.Now()
	columns := append(itemColumns(), "w_id", "w_name", "w_location")
	rows := pgxmock.NewRows(columns).
		AddRow(suite.itemID, "Sunflower Oil 1L", "Oils", 5, 3.20, nil, suite.warehouseID, 10, now, now,
			&suite.warehouseID, strPtr("Central Depot"), strPtr("Pune"))

	suite.mock.ExpectQuery(`(?s)AND i.quantity <= i.threshold.*ORDER BY i.name ASC`).
		WithArgs(50).
		WillReturnRows(rows)

	items, err := suite.repo.Search(suite.context, &models.ItemSearchFilter{LowStockOnly: true})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), items, 1)
	assert.True(suite.T(), items[0].IsLowStock())
}

func (suite *ItemRepoTestSuite) TestUpdate_Success() {
	item := &models.Item{
		ID:          suite.itemID,
		Name:        "Basmati Rice 5kg",
		Category:    "Grains",
		Quantity:    90,
		Price:       15.25,
		WarehouseID: suite.warehouseID,
		Threshold:   20,
	}

	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET name = \$1, category = \$2`).
		WithArgs(item.Name, item.Category, item.Quantity, item.Price, item.ExpiryDate, item.WarehouseID, item.Threshold, item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.context, item)
	assert.NoError(suite.T(), err)
}

func (suite *ItemRepoTestSuite) TestUpdate_NoRowMatched() {
	item := &models.Item{
		ID:          suite.itemID,
		Name:        "Basmati Rice 5kg",
		Category:    "Grains",
		Quantity:    90,
		Price:       15.25,
		WarehouseID: suite.warehouseID,
		Threshold:   20,
	}

	suite.mock.ExpectExec(`(?s)UPDATE inventory\s+SET name = \$1, category = \$2`).
		WithArgs(item.Name, item.Category, item.Quantity, item.Price, item.ExpiryDate, item.WarehouseID, item.Threshold, item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.Update(suite.context, item)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *ItemRepoTestSuite) TestDelete() {
	suite.mock.ExpectExec(`DELETE FROM inventory WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.itemID)
	assert.NoError(suite.T(), err)
}

func strPtr(s string) *string {
	return &s
}
