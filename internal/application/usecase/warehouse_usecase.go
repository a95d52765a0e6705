package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// WarehouseUseCase casos de uso CRUD para bodegas. Solo una bodega es la principal.
type WarehouseUseCase struct {
	tx    ports.TxRunner
	clock ports.Clock
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(tx ports.TxRunner, clock ports.Clock) *WarehouseUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &WarehouseUseCase{tx: tx, clock: clock}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidation("name", "es obligatorio")
	}
	now := uc.clock.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		if warehouse.IsDefault {
			if err := uc.clearDefault(ctx, r, warehouse.ID); err != nil {
				return err
			}
		}
		return r.Warehouses.Create(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	var warehouse *entity.Warehouse
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		warehouse, err = r.Warehouses.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.NewNotFound("bodega", id)
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza nombre, dirección o la marca de principal.
func (uc *WarehouseUseCase) Update(ctx context.Context, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	var warehouse *entity.Warehouse
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		warehouse, err = r.Warehouses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return domain.NewNotFound("bodega", id)
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.NewValidation("name", "es obligatorio")
			}
			warehouse.Name = strings.TrimSpace(*in.Name)
		}
		if in.Address != nil {
			warehouse.Address = *in.Address
		}
		if in.IsDefault != nil {
			if *in.IsDefault && !warehouse.IsDefault {
				if err := uc.clearDefault(ctx, r, warehouse.ID); err != nil {
					return err
				}
			}
			warehouse.IsDefault = *in.IsDefault
		}
		warehouse.UpdatedAt = uc.clock.Now()
		return r.Warehouses.Update(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, in dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page := repository.Page{Limit: in.Limit, Offset: in.Offset}.Normalize()
	var list []*entity.Warehouse
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		list, err = r.Warehouses.List(ctx, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *WarehouseUseCase) clearDefault(ctx context.Context, r repository.Repos, exceptID string) error {
	all, err := r.Warehouses.List(ctx, repository.Page{Limit: 200})
	if err != nil {
		return err
	}
	for _, w := range all {
		if w.ID == exceptID || !w.IsDefault {
			continue
		}
		w.IsDefault = false
		w.UpdatedAt = uc.clock.Now()
		if err := r.Warehouses.Update(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		IsDefault: w.IsDefault,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
