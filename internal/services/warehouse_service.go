package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"stocktrack/internal/caching"
	"stocktrack/internal/common"
	"stocktrack/internal/models"
	"stocktrack/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type WarehouseService interface {
	Create(ctx context.Context, warehouse *models.Warehouse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error)
	Update(ctx context.Context, warehouse *models.Warehouse) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error)
}

type warehouseService struct {
	warehouseRepo repositories.WarehouseRepository
	cacheService  caching.CacheService
}

func NewWarehouseService(warehouseRepo repositories.WarehouseRepository, cacheService caching.CacheService) WarehouseService {
	return &warehouseService{
		warehouseRepo: warehouseRepo,
		cacheService:  cacheService,
	}
}

func (s *warehouseService) Create(ctx context.Context, warehouse *models.Warehouse) error {
	if err := common.ValidateRequiredString(warehouse.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	// Duplicate names make the transfer destination lookup ambiguous
	existing, err := s.warehouseRepo.GetByName(ctx, warehouse.Name)
	if err == nil && existing != nil {
		return fmt.Errorf("%w: warehouse with this name already exists", common.ErrValidation)
	}

	warehouse.ID = uuid.New()
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}

	s.invalidate(ctx, "create warehouse")
	return nil
}

func (s *warehouseService) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("warehouse %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("load warehouse: %w", err)
	}
	return warehouse, nil
}

func (s *warehouseService) Update(ctx context.Context, warehouse *models.Warehouse) error {
	if err := common.ValidateRequiredString(warehouse.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	// Same ambiguity concern as Create: a rename must not land on a name
	// another warehouse already holds.
	existing, err := s.warehouseRepo.GetByName(ctx, warehouse.Name)
	if err == nil && existing != nil && existing.ID != warehouse.ID {
		return fmt.Errorf("%w: warehouse with this name already exists", common.ErrValidation)
	}

	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("warehouse %s: %w", warehouse.ID, common.ErrNotFound)
		}
		return fmt.Errorf("update warehouse: %w", err)
	}

	s.invalidate(ctx, "update warehouse")
	return nil
}

func (s *warehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.warehouseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete warehouse: %w", err)
	}

	s.invalidate(ctx, "delete warehouse")
	return nil
}

func (s *warehouseService) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	// Only the full unpaginated list is shared state; pages stay out of the
	// cache so they can never be served as the whole list.
	sharedShape := limit == 0 && offset == 0
	if sharedShape {
		if cached, err := s.cacheService.GetWarehouses(ctx); cached != nil {
			return cached, nil
		} else if err != nil {
			log.Printf("Cache error for warehouse list: %v", err)
		}
	}

	if limit <= 0 {
		limit = 1000
	}
	warehouses, err := s.warehouseRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}

	if sharedShape {
		if cacheErr := s.cacheService.SetWarehouses(ctx, warehouses, sharedStateTTL); cacheErr != nil {
			log.Printf("Failed to cache warehouse list: %v", cacheErr)
		}
	}
	return warehouses, nil
}

func (s *warehouseService) invalidate(ctx context.Context, op string) {
	if cacheErr := s.cacheService.InvalidateWarehouses(ctx); cacheErr != nil {
		log.Printf("Failed to invalidate warehouse cache after %s: %v", op, cacheErr)
	}
}
