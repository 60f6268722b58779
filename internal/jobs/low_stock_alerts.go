package jobs

import (
	"context"
	"log"

	"stocktrack/internal/models"
	"stocktrack/internal/repositories"

	"github.com/google/uuid"
)

type StockAlertService struct {
	itemRepo repositories.ItemRepository
}

type StockAlert struct {
	ItemID       uuid.UUID
	ItemName     string
	WarehouseID  uuid.UUID
	Warehouse    string
	CurrentStock int
	Threshold    int
	Critical     bool
}

func NewStockAlertService(itemRepo repositories.ItemRepository) *StockAlertService {
	return &StockAlertService{itemRepo: itemRepo}
}

// CheckLowStock scans all items and returns one alert per item at or
// below its own threshold. Items at or below half the threshold are
// flagged critical.
func (a *StockAlertService) CheckLowStock(ctx context.Context) ([]StockAlert, error) {
	items, err := a.itemRepo.List(ctx, 10000, 0)
	if err != nil {
		log.Printf("Failed to list items for low stock check: %v", err)
		return nil, err
	}

	var alerts []StockAlert
	for _, item := range items {
		if !item.IsLowStock() {
			continue
		}
		alerts = append(alerts, newStockAlert(item))
	}

	return alerts, nil
}

func newStockAlert(item *models.Item) StockAlert {
	alert := StockAlert{
		ItemID:       item.ID,
		ItemName:     item.Name,
		WarehouseID:  item.WarehouseID,
		CurrentStock: item.Quantity,
		Threshold:    item.Threshold,
		Critical:     item.IsCritical(),
	}
	if item.Warehouse != nil {
		alert.Warehouse = item.Warehouse.Name
	}
	return alert
}

func (a *StockAlertService) LogLowStockAlerts(ctx context.Context, alerts []StockAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("Low stock alerts: %d item(s)", len(alerts))
	for _, alert := range alerts {
		severity := "low"
		if alert.Critical {
			severity = "critical"
		}
		log.Printf("- Item '%s' in warehouse '%s' has %d units (threshold: %d, severity: %s)",
			alert.ItemName,
			alert.Warehouse,
			alert.CurrentStock,
			alert.Threshold,
			severity)
	}
}

// ScheduledLowStockCheck runs from the background scheduler
func (a *StockAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}
	a.LogLowStockAlerts(ctx, alerts)

	log.Println("Scheduled low stock check completed successfully")
	return nil
}
