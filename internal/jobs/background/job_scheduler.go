package background

import (
	"context"
	"log"
	"sync"
	"time"

	"stocktrack/internal/caching"
	"stocktrack/internal/jobs"
	"stocktrack/internal/repositories"
	"stocktrack/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// sharedStateTTL matches the refresh interval so cached copies never
// outlive the next scheduled refresh by much.
const sharedStateTTL = 30 * time.Second

// JobScheduler manages background jobs
type JobScheduler struct {
	scheduler     gocron.Scheduler
	cacheSvc      caching.CacheService
	itemRepo      repositories.ItemRepository
	warehouseRepo repositories.WarehouseRepository
	dashboardRepo repositories.DashboardRepository
	alertSvc      *jobs.StockAlertService
	reportSvc     services.ReportService
	registered    map[string]gocron.Job
	mu            sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(cacheSvc caching.CacheService, itemRepo repositories.ItemRepository,
	warehouseRepo repositories.WarehouseRepository, dashboardRepo repositories.DashboardRepository,
	alertSvc *jobs.StockAlertService, reportSvc services.ReportService) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:     scheduler,
		cacheSvc:      cacheSvc,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		dashboardRepo: dashboardRepo,
		alertSvc:      alertSvc,
		reportSvc:     reportSvc,
		registered:    make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Shared state refresh - every 30 seconds, mirrors the client's
	// polling cadence so all sessions converge on fresh data.
	refreshJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(js.refreshSharedState, context.Background()),
		gocron.WithName("shared-state-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create shared state refresh job: %v", err)
	} else {
		js.registered["shared-state-refresh"] = refreshJob
	}

	// Low stock alerts - every hour
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.alertSvc.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("low-stock-alerts"),
	)
	if err != nil {
		log.Printf("Failed to create low stock alerts job: %v", err)
	} else {
		js.registered["low-stock-alerts"] = alertsJob
	}

	// Monthly stock report export - first day of the month at 02:00
	exportJob, err := js.scheduler.NewJob(
		gocron.MonthlyJob(1, gocron.NewDaysOfTheMonth(1), gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(js.exportMonthlyReport, context.Background()),
		gocron.WithName("monthly-report-export"),
	)
	if err != nil {
		log.Printf("Failed to create monthly report export job: %v", err)
	} else {
		js.registered["monthly-report-export"] = exportJob
	}

	log.Printf("Registered %d background jobs", len(js.registered))
}

// exportMonthlyReport uploads a stock snapshot so a report exists for the
// closed month even when nobody triggers an export by hand.
func (js *JobScheduler) exportMonthlyReport(ctx context.Context) {
	export, err := js.reportSvc.ExportStockCSV(ctx)
	if err != nil {
		log.Printf("Monthly report export failed: %v", err)
		return
	}
	log.Printf("Monthly report exported: %s", export.ObjectName)
}

// refreshSharedState rewarms the item, warehouse and dashboard caches
func (js *JobScheduler) refreshSharedState(ctx context.Context) {
	js.mu.Lock()
	defer js.mu.Unlock()

	items, err := js.itemRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Shared state refresh: list items failed: %v", err)
	} else if err := js.cacheSvc.SetItems(ctx, items, sharedStateTTL); err != nil {
		log.Printf("Shared state refresh: cache items failed: %v", err)
	}

	warehouses, err := js.warehouseRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Shared state refresh: list warehouses failed: %v", err)
	} else if err := js.cacheSvc.SetWarehouses(ctx, warehouses, sharedStateTTL); err != nil {
		log.Printf("Shared state refresh: cache warehouses failed: %v", err)
	}

	summary, err := js.dashboardRepo.Summary(ctx)
	if err != nil {
		log.Printf("Shared state refresh: dashboard summary failed: %v", err)
	} else if err := js.cacheSvc.SetDashboardSummary(ctx, summary, sharedStateTTL); err != nil {
		log.Printf("Shared state refresh: cache dashboard failed: %v", err)
	}
}
