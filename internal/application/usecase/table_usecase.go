package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// MaxCoverSize tamaño máximo de la portada de una mesa.
const MaxCoverSize = 5 << 20

var coverExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// TableUseCase catálogo de mesas y sus portadas. La ocupación vive en rental.OccupancyUseCase.
type TableUseCase struct {
	tx    ports.TxRunner
	blobs ports.BlobStore
	clock ports.Clock
}

// NewTableUseCase construye el caso de uso. blobs puede ser nil: las portadas quedan deshabilitadas.
func NewTableUseCase(tx ports.TxRunner, blobs ports.BlobStore, clock ports.Clock) *TableUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &TableUseCase{tx: tx, blobs: blobs, clock: clock}
}

// Create registra una mesa disponible. El número es único.
func (uc *TableUseCase) Create(ctx context.Context, in dto.CreateTableRequest) (*dto.TableResponse, error) {
	if in.Number <= 0 {
		return nil, domain.NewValidation("number", "debe ser mayor a cero")
	}
	if in.RatePerHour.IsNegative() {
		return nil, domain.NewValidation("rate_per_hour", "no puede ser negativo")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = fmt.Sprintf("Mesa %d", in.Number)
	}
	now := uc.clock.Now()
	table := &entity.Table{
		ID:          uuid.New().String(),
		Number:      in.Number,
		Name:        name,
		TypeID:      in.TypeID,
		Status:      entity.TableAvailable,
		RatePerHour: in.RatePerHour.Round(2),
		Amount:      decimal.Zero,
		Consumption: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.tx.Run(ctx, func(r repository.Repos) error {
		return r.Tables.Create(ctx, table)
	}); err != nil {
		return nil, err
	}
	out := dto.NewTableResponse(table)
	return &out, nil
}

// Get obtiene una mesa con su snapshot.
func (uc *TableUseCase) Get(ctx context.Context, id string) (*dto.TableResponse, error) {
	var table *entity.Table
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		table, err = r.Tables.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.NewNotFound("mesa", id)
	}
	out := dto.NewTableResponse(table)
	return &out, nil
}

// List lista mesas por número, opcionalmente filtradas por estado.
func (uc *TableUseCase) List(ctx context.Context, status string, in dto.PageRequest) (*dto.TableListResponse, error) {
	q := repository.TableQuery{Page: repository.Page{Limit: in.Limit, Offset: in.Offset}.Normalize()}
	if status != "" {
		st := entity.TableStatus(status)
		switch st {
		case entity.TableAvailable, entity.TableInProgress, entity.TablePaused, entity.TableCancelled:
		default:
			return nil, domain.NewValidation("status", "estado desconocido")
		}
		q.Status = &st
	}
	var list []*entity.Table
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		list, err = r.Tables.List(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TableResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.NewTableResponse(t))
	}
	return &dto.TableListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Page.Limit, Offset: q.Page.Offset},
	}, nil
}

// Update cambia número, nombre, tipo o tarifa. La tarifa nueva aplica a los próximos alquileres.
func (uc *TableUseCase) Update(ctx context.Context, id string, in dto.UpdateTableRequest) (*dto.TableResponse, error) {
	var table *entity.Table
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		table, err = r.Tables.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if table == nil {
			return domain.NewNotFound("mesa", id)
		}
		if in.Number != nil {
			if *in.Number <= 0 {
				return domain.NewValidation("number", "debe ser mayor a cero")
			}
			table.Number = *in.Number
		}
		if in.Name != nil {
			table.Name = strings.TrimSpace(*in.Name)
		}
		if in.TypeID != nil {
			table.TypeID = in.TypeID
		}
		if in.RatePerHour != nil {
			if in.RatePerHour.IsNegative() {
				return domain.NewValidation("rate_per_hour", "no puede ser negativo")
			}
			table.RatePerHour = in.RatePerHour.Round(2)
		}
		table.UpdatedAt = uc.clock.Now()
		return r.Tables.Update(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewTableResponse(table)
	return &out, nil
}

// UploadCover guarda la imagen en el blob store y reemplaza la portada anterior.
func (uc *TableUseCase) UploadCover(ctx context.Context, id, contentType string, data []byte) (*dto.TableResponse, error) {
	if uc.blobs == nil {
		return nil, domain.ErrFeatureDisabled
	}
	if len(data) == 0 {
		return nil, domain.NewValidation("file", "archivo vacío")
	}
	if len(data) > MaxCoverSize {
		return nil, domain.NewValidation("file", "la imagen supera 5 MB")
	}
	ext, ok := coverExtensions[strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))]
	if !ok {
		return nil, domain.NewValidation("file", "formato no soportado (jpeg, png, webp)")
	}
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("tables/%s/cover-%s%s", id, uuid.New().String(), ext)
	url, err := uc.blobs.Put(ctx, path, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("guardar portada: %w", err)
	}

	var table *entity.Table
	var previous string
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		table, err = r.Tables.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if table == nil {
			return domain.NewNotFound("mesa", id)
		}
		previous = table.CoverImage
		table.CoverImage = path
		table.CoverURL = url
		table.UpdatedAt = uc.clock.Now()
		return r.Tables.Update(ctx, table)
	})
	if err != nil {
		_ = uc.blobs.Delete(ctx, path)
		return nil, err
	}
	if previous != "" && previous != path {
		_ = uc.blobs.Delete(ctx, previous)
	}
	out := dto.NewTableResponse(table)
	return &out, nil
}

// DeleteCover quita la portada. Sin portada es un no-op.
func (uc *TableUseCase) DeleteCover(ctx context.Context, id string) (*dto.TableResponse, error) {
	if uc.blobs == nil {
		return nil, domain.ErrFeatureDisabled
	}
	var table *entity.Table
	var previous string
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		table, err = r.Tables.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if table == nil {
			return domain.NewNotFound("mesa", id)
		}
		previous = table.CoverImage
		if previous == "" {
			return nil
		}
		table.CoverImage = ""
		table.CoverURL = ""
		table.UpdatedAt = uc.clock.Now()
		return r.Tables.Update(ctx, table)
	})
	if err != nil {
		return nil, err
	}
	if previous != "" {
		if err := uc.blobs.Delete(ctx, previous); err != nil {
			return nil, fmt.Errorf("borrar portada: %w", err)
		}
	}
	out := dto.NewTableResponse(table)
	return &out, nil
}
