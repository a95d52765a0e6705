package rental

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// ItemsUseCase líneas de consumo del alquiler abierto.
type ItemsUseCase struct {
	tx    ports.TxRunner
	clock ports.Clock
}

// NewItemsUseCase construye el caso de uso.
func NewItemsUseCase(tx ports.TxRunner, clock ports.Clock) *ItemsUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &ItemsUseCase{tx: tx, clock: clock}
}

// ItemRequest línea a agregar. Con ProductID, nombre, unidad y precio se toman del producto si vienen vacíos.
type ItemRequest struct {
	ProductID   string
	ProductName string
	UnitName    string
	Qty         decimal.Decimal
	UnitPrice   *decimal.Decimal
	Discount    decimal.Decimal
	ClientOpID  string
	WarehouseID string
}

// ItemUpdate cambios sobre una línea ok.
type ItemUpdate struct {
	Qty       *decimal.Decimal
	UnitPrice *decimal.Decimal
	Discount  *decimal.Decimal
}

// AddResult Created es false cuando el client_op_id ya se había registrado.
type AddResult struct {
	Item    *entity.RentalItem
	Rental  *entity.Rental
	Created bool
}

// BulkResult conteo de líneas creadas y omitidas por idempotencia.
type BulkResult struct {
	Rental  *entity.Rental
	Items   []*entity.RentalItem
	Created int
	Skipped int
}

// AddItem agrega una línea y recalcula totales.
func (uc *ItemsUseCase) AddItem(ctx context.Context, p ports.Principal, rentalID string, req ItemRequest) (*AddResult, error) {
	if err := validateItem(req); err != nil {
		return nil, err
	}
	var out *AddResult
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		table, rt, err := lockOpenRental(ctx, r, rentalID)
		if err != nil {
			return err
		}
		item, created, err := uc.addOne(ctx, r, p, rt, req)
		if err != nil {
			return err
		}
		if created {
			rt.UpdatedAt = uc.clock.Now()
			if err := recalcTotals(ctx, r, table, rt); err != nil {
				return err
			}
		}
		out = &AddResult{Item: item, Rental: rt, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddItemsBulk agrega varias líneas en una transacción; las repetidas por client_op_id se omiten.
func (uc *ItemsUseCase) AddItemsBulk(ctx context.Context, p ports.Principal, rentalID string, reqs []ItemRequest) (*BulkResult, error) {
	if len(reqs) == 0 {
		return nil, domain.NewValidation("items", "al menos una línea")
	}
	for _, req := range reqs {
		if err := validateItem(req); err != nil {
			return nil, err
		}
	}
	var out *BulkResult
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		table, rt, err := lockOpenRental(ctx, r, rentalID)
		if err != nil {
			return err
		}
		res := &BulkResult{Rental: rt}
		for _, req := range reqs {
			item, created, err := uc.addOne(ctx, r, p, rt, req)
			if err != nil {
				return err
			}
			if !created {
				res.Skipped++
				continue
			}
			res.Created++
			res.Items = append(res.Items, item)
		}
		if res.Created > 0 {
			rt.UpdatedAt = uc.clock.Now()
			if err := recalcTotals(ctx, r, table, rt); err != nil {
				return err
			}
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func validateItem(req ItemRequest) error {
	if !req.Qty.IsPositive() {
		return domain.NewValidation("qty", "debe ser mayor a cero")
	}
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return domain.NewValidation("unit_price", "no puede ser negativo")
	}
	if req.Discount.IsNegative() {
		return domain.NewValidation("discount", "no puede ser negativo")
	}
	if req.ProductID == "" {
		if strings.TrimSpace(req.ProductName) == "" {
			return domain.NewValidation("product_name", "requerido sin product_id")
		}
		if req.UnitPrice == nil {
			return domain.NewValidation("unit_price", "requerido sin product_id")
		}
	}
	return nil
}

func (uc *ItemsUseCase) addOne(ctx context.Context, r repository.Repos, p ports.Principal, rt *entity.Rental, req ItemRequest) (*entity.RentalItem, bool, error) {
	if req.ClientOpID != "" {
		seen, err := r.RentalItems.ExistsClientOp(ctx, rt.ID, req.ClientOpID)
		if err != nil {
			return nil, false, err
		}
		if seen {
			existing, err := findByClientOp(ctx, r, rt.ID, req.ClientOpID)
			return existing, false, err
		}
	}
	now := uc.clock.Now()
	item := &entity.RentalItem{
		ID:          uuid.New().String(),
		RentalID:    rt.ID,
		ProductName: strings.TrimSpace(req.ProductName),
		UnitName:    req.UnitName,
		Qty:         req.Qty,
		Discount:    req.Discount.Round(2),
		Status:      entity.ItemOK,
		CreatedBy:   p.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.ProductID != "" {
		product, err := r.Products.GetByID(ctx, req.ProductID)
		if err != nil {
			return nil, false, err
		}
		if product == nil {
			return nil, false, domain.NewNotFound("producto", req.ProductID)
		}
		pid := product.ID
		item.ProductID = &pid
		if item.ProductName == "" {
			item.ProductName = product.Name
		}
		if item.UnitName == "" {
			item.UnitName = product.UnitName
		}
		if req.UnitPrice == nil {
			item.UnitPrice = product.SalePrice
		}
	}
	if item.UnitName == "" {
		item.UnitName = "unidad"
	}
	if req.ClientOpID != "" {
		op := req.ClientOpID
		item.ClientOpID = &op
	}
	if req.WarehouseID != "" {
		wh := req.WarehouseID
		item.WarehouseID = &wh
	}
	item.RecalcTotal()
	if item.Total.IsNegative() {
		return nil, false, domain.NewValidation("discount", "mayor al importe de la línea")
	}
	if err := r.RentalItems.Create(ctx, item); err != nil {
		return nil, false, err
	}
	return item, true, nil
}

func findByClientOp(ctx context.Context, r repository.Repos, rentalID, op string) (*entity.RentalItem, error) {
	items, err := r.RentalItems.ListByRental(ctx, rentalID, true)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ClientOpID != nil && *it.ClientOpID == op {
			return it, nil
		}
	}
	return nil, nil
}

// UpdateItem cambia cantidad, precio o descuento de una línea ok mientras el alquiler está abierto.
func (uc *ItemsUseCase) UpdateItem(ctx context.Context, p ports.Principal, itemID string, req ItemUpdate) (*entity.RentalItem, error) {
	if req.Qty != nil && !req.Qty.IsPositive() {
		return nil, domain.NewValidation("qty", "debe ser mayor a cero")
	}
	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return nil, domain.NewValidation("unit_price", "no puede ser negativo")
	}
	if req.Discount != nil && req.Discount.IsNegative() {
		return nil, domain.NewValidation("discount", "no puede ser negativo")
	}
	var out *entity.RentalItem
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		item, table, rt, err := uc.lockItem(ctx, r, itemID)
		if err != nil {
			return err
		}
		if item.Status != entity.ItemOK {
			return domain.NewConflict("la línea %s está anulada", item.ID)
		}
		if req.Qty != nil {
			item.Qty = *req.Qty
		}
		if req.UnitPrice != nil {
			item.UnitPrice = *req.UnitPrice
		}
		if req.Discount != nil {
			item.Discount = req.Discount.Round(2)
		}
		item.RecalcTotal()
		if item.Total.IsNegative() {
			return domain.NewValidation("discount", "mayor al importe de la línea")
		}
		now := uc.clock.Now()
		item.UpdatedAt = now
		if err := r.RentalItems.Update(ctx, item); err != nil {
			return err
		}
		rt.UpdatedAt = now
		if err := recalcTotals(ctx, r, table, rt); err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VoidItem anula la línea sin borrarla. Anular una línea ya anulada no hace nada.
func (uc *ItemsUseCase) VoidItem(ctx context.Context, p ports.Principal, itemID, reason string) (*entity.RentalItem, error) {
	var out *entity.RentalItem
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		peek, err := r.RentalItems.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if peek != nil && peek.Status == entity.ItemVoided {
			out = peek
			return nil
		}
		item, table, rt, err := uc.lockItem(ctx, r, itemID)
		if err != nil {
			return err
		}
		out = item
		if item.Status == entity.ItemVoided {
			// anulada por otra petición mientras se esperaba el bloqueo
			return nil
		}
		now := uc.clock.Now()
		item.Status = entity.ItemVoided
		item.VoidedAt = &now
		item.VoidReason = reason
		item.UpdatedAt = now
		if err := r.RentalItems.Update(ctx, item); err != nil {
			return err
		}
		rt.UpdatedAt = now
		return recalcTotals(ctx, r, table, rt)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListItems líneas del alquiler en orden de registro.
func (uc *ItemsUseCase) ListItems(ctx context.Context, rentalID string, includeVoided bool) ([]*entity.RentalItem, error) {
	var list []*entity.RentalItem
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		rt, err := r.Rentals.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if rt == nil {
			return domain.NewNotFound("alquiler", rentalID)
		}
		list, err = r.RentalItems.ListByRental(ctx, rentalID, includeVoided)
		return err
	})
	return list, err
}

func (uc *ItemsUseCase) lockItem(ctx context.Context, r repository.Repos, itemID string) (*entity.RentalItem, *entity.Table, *entity.Rental, error) {
	item, err := r.RentalItems.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, nil, err
	}
	if item == nil {
		return nil, nil, nil, domain.NewNotFound("línea", itemID)
	}
	table, rt, err := lockOpenRental(ctx, r, item.RentalID)
	if err != nil {
		return nil, nil, nil, err
	}
	// releída bajo el bloqueo del alquiler
	item, err = r.RentalItems.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, nil, err
	}
	if item == nil {
		return nil, nil, nil, domain.NewNotFound("línea", itemID)
	}
	return item, table, rt, nil
}
