package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"stocktrack/internal/repositories"

	"github.com/google/uuid"
)

// CategoryStock is one bar of the stock-by-category chart.
type CategoryStock struct {
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// StockStatus counts items by severity bucket.
type StockStatus struct {
	Critical   int `json:"critical"`
	Low        int `json:"low"`
	Sufficient int `json:"sufficient"`
}

// WarehouseValue is the stock valuation of a single warehouse.
type WarehouseValue struct {
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Name        string    `json:"name"`
	Value       float64   `json:"value"`
}

// StockReport aggregates the reports page data. It is recomputed from the
// current item list on every call, never persisted.
type StockReport struct {
	Categories  []CategoryStock  `json:"categories"`
	Status      StockStatus      `json:"status"`
	TotalValue  float64          `json:"total_value"`
	Warehouses  []WarehouseValue `json:"warehouses"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ReportExport points at a stored CSV export.
type ReportExport struct {
	ObjectName  string    `json:"object_name"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ReportService interface {
	StockReport(ctx context.Context) (*StockReport, error)
	ExportStockCSV(ctx context.Context) (*ReportExport, error)
}

type reportService struct {
	itemRepo      repositories.ItemRepository
	warehouseRepo repositories.WarehouseRepository
	storage       StorageService
	bucketName    string
}

func NewReportService(itemRepo repositories.ItemRepository, warehouseRepo repositories.WarehouseRepository, storage StorageService, bucketName string) ReportService {
	return &reportService{
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		storage:       storage,
		bucketName:    bucketName,
	}
}

func (s *reportService) StockReport(ctx context.Context) (*StockReport, error) {
	items, err := s.itemRepo.List(ctx, 10000, 0)
	if err != nil {
		return nil, fmt.Errorf("list items for report: %w", err)
	}
	warehouses, err := s.warehouseRepo.List(ctx, 1000, 0)
	if err != nil {
		return nil, fmt.Errorf("list warehouses for report: %w", err)
	}

	report := &StockReport{GeneratedAt: time.Now()}

	byCategory := map[string]int{}
	byWarehouse := map[uuid.UUID]float64{}
	for _, item := range items {
		byCategory[item.Category] += item.Quantity
		byWarehouse[item.WarehouseID] += float64(item.Quantity) * item.Price
		report.TotalValue += float64(item.Quantity) * item.Price

		switch {
		case item.IsCritical():
			report.Status.Critical++
		case item.IsLowStock():
			report.Status.Low++
		default:
			report.Status.Sufficient++
		}
	}
	report.TotalValue = roundMoney(report.TotalValue)

	for category, quantity := range byCategory {
		report.Categories = append(report.Categories, CategoryStock{Category: category, Quantity: quantity})
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})

	for _, warehouse := range warehouses {
		report.Warehouses = append(report.Warehouses, WarehouseValue{
			WarehouseID: warehouse.ID,
			Name:        warehouse.Name,
			Value:       roundMoney(byWarehouse[warehouse.ID]),
		})
	}

	return report, nil
}

// ExportStockCSV writes the current item list as CSV to object storage and
// returns a presigned download link.
func (s *reportService) ExportStockCSV(ctx context.Context) (*ReportExport, error) {
	items, err := s.itemRepo.List(ctx, 10000, 0)
	if err != nil {
		return nil, fmt.Errorf("list items for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "name", "category", "warehouse", "quantity", "threshold", "price", "expiry_date"}); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}
	for _, item := range items {
		warehouseName := ""
		if item.Warehouse != nil {
			warehouseName = item.Warehouse.Name
		}
		expiry := ""
		if item.ExpiryDate != nil {
			expiry = item.ExpiryDate.Format("2006-01-02")
		}
		record := []string{
			item.ID.String(),
			item.Name,
			item.Category,
			warehouseName,
			strconv.Itoa(item.Quantity),
			strconv.Itoa(item.Threshold),
			strconv.FormatFloat(item.Price, 'f', 2, 64),
			expiry,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}

	if err := s.storage.EnsureBucketExists(ctx, s.bucketName); err != nil {
		return nil, fmt.Errorf("ensure report bucket: %w", err)
	}

	objectName := fmt.Sprintf("stock-reports/stock-report-%s.csv", time.Now().UTC().Format("20060102T150405"))
	if err := s.storage.UploadReport(ctx, s.bucketName, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	const linkTTL = 24 * time.Hour
	url, err := s.storage.GetPresignedURL(s.bucketName, objectName, linkTTL)
	if err != nil {
		return nil, fmt.Errorf("presign export link: %w", err)
	}

	return &ReportExport{
		ObjectName:  objectName,
		DownloadURL: url,
		ExpiresAt:   time.Now().Add(linkTTL),
	}, nil
}
