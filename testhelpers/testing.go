package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=stocktrack_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestWarehouse creates a test warehouse for testing
func SetupTestWarehouse(t *testing.T, db *TestDB, name string) uuid.UUID {
	t.Helper()

	warehouseID := uuid.New()
	query := `
		INSERT INTO warehouses (id, name, location, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := db.Pool.Exec(context.Background(), query, warehouseID, name, "Test Location", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test warehouse: %v", err)
	}

	return warehouseID
}

// SetupTestItem creates a test item for testing
func SetupTestItem(t *testing.T, db *TestDB, warehouseID uuid.UUID, name string, quantity, threshold int) uuid.UUID {
	t.Helper()

	itemID := uuid.New()
	query := `
		INSERT INTO inventory (id, name, category, quantity, price, warehouse_id, threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now()
	_, err := db.Pool.Exec(context.Background(), query, itemID, name, "Test Category", quantity, 9.99, warehouseID, threshold, now, now)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	return itemID
}

// CleanupTestData removes rows created by a test run
func CleanupTestData(t *testing.T, db *TestDB, itemIDs []uuid.UUID, warehouseIDs []uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	for _, id := range itemIDs {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM inventory WHERE id = $1", id); err != nil {
			t.Logf("Failed to clean up item %s: %v", id, err)
		}
	}
	for _, id := range warehouseIDs {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM warehouses WHERE id = $1", id); err != nil {
			t.Logf("Failed to clean up warehouse %s: %v", id, err)
		}
	}
}
