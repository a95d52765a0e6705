package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/inventory"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// KardexUseCase registra movimientos de inventario de forma transaccional
// (entrada, salida, ajuste, transferencias) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type KardexUseCase struct {
	tx    ports.TxRunner
	clock ports.Clock
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(tx ports.TxRunner, clock ports.Clock) *KardexUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &KardexUseCase{tx: tx, clock: clock}
}

// Direcciones explícitas para ajustes.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// MovementRequest entrada del registro manual de un movimiento.
// Para ajuste, Quantity puede venir con signo o con Direction explícito.
// UnitCost solo aplica a entradas; vacío o <= 0 usa el costo por defecto del producto.
type MovementRequest struct {
	ProductID     string
	WarehouseID   string
	Movement      entity.MovementKind
	Quantity      decimal.Decimal
	Direction     string
	UnitCost      *decimal.Decimal
	AllowNegative bool
	Reference     string
	Description   string
}

// Movement núcleo de un movimiento ya normalizado: Quantity siempre positiva.
type Movement struct {
	ProductID     string
	WarehouseID   string
	Kind          entity.MovementKind
	Inbound       bool
	Quantity      decimal.Decimal
	UnitCost      *decimal.Decimal
	AllowNegative bool
	Reference     string
	Description   string
	Document      *entity.DocumentRef
	UserID        string
	At            time.Time
}

// TransferRequest traslado de existencias entre bodegas.
type TransferRequest struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	AllowNegative   bool
	Description     string
}

// RecordMovement valida el request, bloquea la fila de stock y escribe exactamente una entrada de kardex.
func (uc *KardexUseCase) RecordMovement(ctx context.Context, p ports.Principal, req MovementRequest) (*entity.KardexEntry, error) {
	m, err := normalize(req)
	if err != nil {
		return nil, err
	}
	m.UserID = p.UserID
	m.At = uc.clock.Now()

	var out *entity.KardexEntry
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		wh, err := r.Warehouses.GetByID(ctx, m.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.NewNotFound("bodega", m.WarehouseID)
		}
		out, err = uc.RecordInTx(ctx, r, m)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(req MovementRequest) (Movement, error) {
	if req.ProductID == "" {
		return Movement{}, domain.NewValidation("product_id", "requerido")
	}
	if req.WarehouseID == "" {
		return Movement{}, domain.NewValidation("warehouse_id", "requerido")
	}
	if req.Quantity.IsZero() {
		return Movement{}, domain.NewValidation("quantity", "debe ser distinta de cero")
	}
	if req.UnitCost != nil && req.UnitCost.IsNegative() {
		return Movement{}, domain.NewValidation("unit_cost", "no puede ser negativo")
	}
	m := Movement{
		ProductID:     req.ProductID,
		WarehouseID:   req.WarehouseID,
		Kind:          req.Movement,
		Quantity:      req.Quantity.Abs(),
		UnitCost:      req.UnitCost,
		AllowNegative: req.AllowNegative,
		Reference:     req.Reference,
		Description:   req.Description,
		Document:      &entity.DocumentRef{Kind: entity.DocumentKindManual},
	}
	switch req.Movement {
	case entity.MovementIn, entity.MovementTransferIn:
		if req.Quantity.IsNegative() {
			return Movement{}, domain.NewValidation("quantity", "debe ser mayor a cero")
		}
		m.Inbound = true
	case entity.MovementOut, entity.MovementTransferOut:
		if req.Quantity.IsNegative() {
			return Movement{}, domain.NewValidation("quantity", "debe ser mayor a cero")
		}
	case entity.MovementAdjust:
		switch req.Direction {
		case DirectionIn:
			m.Inbound = true
		case DirectionOut:
			m.Inbound = false
		case "":
			m.Inbound = req.Quantity.IsPositive()
		default:
			return Movement{}, domain.NewValidation("direction", "debe ser in u out")
		}
	default:
		return Movement{}, domain.NewValidation("movement", "tipo de movimiento inválido")
	}
	return m, nil
}

// RecordInTx aplica el movimiento con los repositorios de la transacción del caller.
// Bloquea (o crea en cero) la fila de stock, recalcula saldos y agrega la entrada de kardex.
func (uc *KardexUseCase) RecordInTx(ctx context.Context, r repository.Repos, m Movement) (*entity.KardexEntry, error) {
	if !m.Quantity.IsPositive() {
		return nil, domain.NewValidation("quantity", "debe ser mayor a cero")
	}
	if m.At.IsZero() {
		m.At = uc.clock.Now()
	}
	product, err := r.Products.GetByID(ctx, m.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("producto", m.ProductID)
	}
	stock, err := lockStock(ctx, r, product, m.WarehouseID, m.At)
	if err != nil {
		return nil, err
	}

	entry := &entity.KardexEntry{
		ID:          uuid.New().String(),
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Movement:    m.Kind,
		QuantityIn:  decimal.Zero,
		QuantityOut: decimal.Zero,
		Reference:   m.Reference,
		Description: m.Description,
		Document:    m.Document,
		UserID:      m.UserID,
		MovedAt:     m.At,
		CreatedAt:   m.At,
	}

	var bal inventory.Balance
	if m.Inbound {
		cost := inboundCost(m, product)
		bal = inventory.ApplyInbound(stock.Quantity, stock.AvgUnitCost, m.Quantity, cost)
		if !bal.Quantity.IsPositive() {
			// saldo no positivo: el costo de la entrada pasa a ser el promedio
			bal.AvgUnitCost = decimal.Max(cost, decimal.Zero).Round(inventory.CostPrecision)
			bal.TotalCost = bal.Quantity.Mul(bal.AvgUnitCost).Round(2)
		}
		entry.QuantityIn = m.Quantity
		entry.UnitCost = cost
	} else {
		if !m.AllowNegative && stock.Quantity.LessThan(m.Quantity) {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				WarehouseID: m.WarehouseID,
				Requested:   m.Quantity,
				Available:   stock.Quantity,
			}
		}
		bal = inventory.ApplyOutbound(stock.Quantity, stock.AvgUnitCost, m.Quantity)
		entry.QuantityOut = m.Quantity
		entry.UnitCost = stock.AvgUnitCost
	}
	entry.TotalCost = m.Quantity.Mul(entry.UnitCost).Round(2)
	entry.BalanceQty = bal.Quantity
	entry.BalanceAvgUnitCost = bal.AvgUnitCost
	entry.BalanceTotalCost = bal.TotalCost

	stock.Quantity = bal.Quantity
	stock.AvgUnitCost = bal.AvgUnitCost
	stock.UpdatedAt = m.At
	if err := r.Stocks.Update(ctx, stock); err != nil {
		return nil, err
	}
	if err := r.Kardex.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func inboundCost(m Movement, product *entity.Product) decimal.Decimal {
	if m.UnitCost != nil && m.UnitCost.IsPositive() {
		return *m.UnitCost
	}
	if m.Kind == entity.MovementTransferIn && m.UnitCost != nil {
		// la transferencia arrastra el promedio de origen aunque sea cero
		return *m.UnitCost
	}
	return product.DefaultCost
}

// lockStock bloquea la fila de stock; si no existe la crea en cero con el costo por defecto del producto.
func lockStock(ctx context.Context, r repository.Repos, product *entity.Product, warehouseID string, now time.Time) (*entity.Stock, error) {
	stock, err := r.Stocks.GetForUpdate(ctx, product.ID, warehouseID)
	if err != nil {
		return nil, err
	}
	if stock != nil {
		return stock, nil
	}
	if err := r.Stocks.CreateIfMissing(ctx, &entity.Stock{
		ProductID:   product.ID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
		AvgUnitCost: decimal.Max(product.DefaultCost, decimal.Zero),
		UpdatedAt:   now,
	}); err != nil {
		return nil, err
	}
	stock, err = r.Stocks.GetForUpdate(ctx, product.ID, warehouseID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.NewNotFound("stock", product.ID)
	}
	return stock, nil
}

// Transfer registra transfer_out en origen y transfer_in en destino en una sola transacción.
// Las dos filas se bloquean en orden ascendente de bodega; el costo viaja al promedio de origen.
func (uc *KardexUseCase) Transfer(ctx context.Context, p ports.Principal, req TransferRequest) ([]*entity.KardexEntry, error) {
	if req.ProductID == "" || req.FromWarehouseID == "" || req.ToWarehouseID == "" {
		return nil, domain.NewValidation("", "producto, bodega origen y destino son requeridos")
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, domain.NewValidation("to_warehouse_id", "debe ser distinta de la bodega origen")
	}
	if !req.Quantity.IsPositive() {
		return nil, domain.NewValidation("quantity", "debe ser mayor a cero")
	}
	now := uc.clock.Now()

	var out []*entity.KardexEntry
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound("producto", req.ProductID)
		}
		whs := []string{req.FromWarehouseID, req.ToWarehouseID}
		sort.Strings(whs)
		var origin *entity.Stock
		for _, id := range whs {
			wh, err := r.Warehouses.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if wh == nil {
				return domain.NewNotFound("bodega", id)
			}
			st, err := lockStock(ctx, r, product, id, now)
			if err != nil {
				return err
			}
			if id == req.FromWarehouseID {
				origin = st
			}
		}
		cost := origin.AvgUnitCost
		ref := &entity.DocumentRef{Kind: entity.DocumentKindTransfer, ID: uuid.New().String()}

		outEntry, err := uc.RecordInTx(ctx, r, Movement{
			ProductID:     req.ProductID,
			WarehouseID:   req.FromWarehouseID,
			Kind:          entity.MovementTransferOut,
			Quantity:      req.Quantity,
			AllowNegative: req.AllowNegative,
			Description:   req.Description,
			Document:      ref,
			UserID:        p.UserID,
			At:            now,
		})
		if err != nil {
			return err
		}
		inEntry, err := uc.RecordInTx(ctx, r, Movement{
			ProductID:   req.ProductID,
			WarehouseID: req.ToWarehouseID,
			Kind:        entity.MovementTransferIn,
			Inbound:     true,
			Quantity:    req.Quantity,
			UnitCost:    &cost,
			Description: req.Description,
			Document:    ref,
			UserID:      p.UserID,
			At:          now,
		})
		if err != nil {
			return err
		}
		out = []*entity.KardexEntry{outEntry, inEntry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List lectura filtrada del kardex.
func (uc *KardexUseCase) List(ctx context.Context, q repository.KardexQuery) ([]*entity.KardexEntry, int, error) {
	if q.Movement != nil && !q.Movement.Valid() {
		return nil, 0, domain.NewValidation("movement", "tipo de movimiento inválido")
	}
	var (
		list  []*entity.KardexEntry
		total int
	)
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		list, total, err = r.Kardex.List(ctx, q)
		return err
	})
	return list, total, err
}

// GetStock saldos por bodega de un producto.
func (uc *KardexUseCase) GetStock(ctx context.Context, productID string) ([]*entity.Stock, error) {
	var list []*entity.Stock
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		product, err := r.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound("producto", productID)
		}
		list, err = r.Stocks.ListByProduct(ctx, productID)
		return err
	})
	return list, err
}
