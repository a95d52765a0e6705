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

// ProductUseCase casos de uso CRUD para productos. Existencias y costo promedio se manejan vía kardex.
type ProductUseCase struct {
	tx    ports.TxRunner
	clock ports.Clock
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(tx ports.TxRunner, clock ports.Clock) *ProductUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &ProductUseCase{tx: tx, clock: clock}
}

// Create crea un nuevo producto. El SKU es único.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, domain.NewValidation("sku", "es obligatorio")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidation("name", "es obligatorio")
	}
	if in.SalePrice.IsNegative() || in.DefaultCost.IsNegative() {
		return nil, domain.NewValidation("sale_price", "los montos no pueden ser negativos")
	}
	unit := in.UnitName
	if unit == "" {
		unit = "unidad"
	}
	now := uc.clock.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        strings.TrimSpace(in.Name),
		UnitName:    unit,
		SalePrice:   in.SalePrice.Round(2),
		DefaultCost: in.DefaultCost,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		existing, err := r.Products.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		return r.Products.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("producto", id)
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No toca existencias.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		var err error
		product, err = r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound("producto", id)
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.NewValidation("name", "es obligatorio")
			}
			product.Name = strings.TrimSpace(*in.Name)
		}
		if in.UnitName != nil && *in.UnitName != "" {
			product.UnitName = *in.UnitName
		}
		if in.SalePrice != nil {
			if in.SalePrice.IsNegative() {
				return domain.NewValidation("sale_price", "no puede ser negativo")
			}
			product.SalePrice = in.SalePrice.Round(2)
		}
		if in.DefaultCost != nil {
			if in.DefaultCost.IsNegative() {
				return domain.NewValidation("default_cost", "no puede ser negativo")
			}
			product.DefaultCost = *in.DefaultCost
		}
		if in.Active != nil {
			product.Active = *in.Active
		}
		product.UpdatedAt = uc.clock.Now()
		return r.Products.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con búsqueda por nombre o SKU.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductQueryRequest) (*dto.ProductListResponse, error) {
	page := repository.Page{Limit: in.Limit, Offset: in.Offset}.Normalize()
	var list []*entity.Product
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		list, err = r.Products.List(ctx, repository.ProductQuery{Search: in.Search, OnlyActive: in.OnlyActive, Page: page})
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		UnitName:    p.UnitName,
		SalePrice:   p.SalePrice,
		DefaultCost: p.DefaultCost,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
