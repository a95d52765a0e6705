// Package rental ocupación de mesas y consumo POS del alquiler abierto.
package rental

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/pricing"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// OccupancyUseCase inicio, cancelación y consulta de alquileres.
type OccupancyUseCase struct {
	tx    ports.TxRunner
	clock ports.Clock
}

// NewOccupancyUseCase construye el caso de uso.
func NewOccupancyUseCase(tx ports.TxRunner, clock ports.Clock) *OccupancyUseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &OccupancyUseCase{tx: tx, clock: clock}
}

// StartResult Created es false cuando se devolvió el alquiler ya abierto.
type StartResult struct {
	Table   *entity.Table
	Rental  *entity.Rental
	Created bool
}

// RentalView alquiler con sus líneas y la cotización de tiempo a la fecha.
type RentalView struct {
	Rental *entity.Rental
	Items  []*entity.RentalItem
	Quote  pricing.Quote
}

// UpdateRequest cambios permitidos mientras el alquiler está abierto.
type UpdateRequest struct {
	Discount    *decimal.Decimal
	Surcharge   *decimal.Decimal
	RatePerHour *decimal.Decimal
	Notes       *string
}

// Start abre un alquiler en la mesa. Es idempotente: si la mesa ya está en curso devuelve el abierto.
func (uc *OccupancyUseCase) Start(ctx context.Context, p ports.Principal, tableID string) (*StartResult, error) {
	var out *StartResult
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		table, err := lockTable(ctx, r, tableID)
		if err != nil {
			return err
		}
		open, err := r.Rentals.FindOpenByTableForUpdate(ctx, table.ID)
		if err != nil {
			return err
		}
		now := uc.clock.Now()

		switch table.Status {
		case entity.TableInProgress:
			if open != nil {
				out = &StartResult{Table: table, Rental: open}
				return nil
			}
		case entity.TableAvailable:
			if open != nil {
				// estado inconsistente: la mesa vuelve a reflejar el alquiler abierto
				table.Status = entity.TableInProgress
				table.StartTime = &open.StartedAt
				table.EndTime = nil
				table.Consumption = open.Consumption
				table.UpdatedAt = now
				if err := r.Tables.Update(ctx, table); err != nil {
					return err
				}
				out = &StartResult{Table: table, Rental: open}
				return nil
			}
		default:
			return domain.NewConflict("la mesa %d no está disponible (%s)", table.Number, table.Status)
		}

		rt := &entity.Rental{
			ID:          uuid.New().String(),
			TableID:     table.ID,
			StartedAt:   now,
			RatePerHour: table.RatePerHour,
			AmountTime:  decimal.Zero,
			Consumption: decimal.Zero,
			Discount:    decimal.Zero,
			Surcharge:   decimal.Zero,
			Total:       decimal.Zero,
			Status:      entity.RentalOpen,
			OpenedBy:    p.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.Rentals.Create(ctx, rt); err != nil {
			return err
		}
		table.ResetSnapshot()
		table.StartTime = &rt.StartedAt
		table.Status = entity.TableInProgress
		table.UpdatedAt = now
		if err := r.Tables.Update(ctx, table); err != nil {
			return err
		}
		out = &StartResult{Table: table, Rental: rt, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Pause deshabilitada.
func (uc *OccupancyUseCase) Pause(context.Context, ports.Principal, string) error {
	return domain.ErrFeatureDisabled
}

// Resume deshabilitada.
func (uc *OccupancyUseCase) Resume(context.Context, ports.Principal, string) error {
	return domain.ErrFeatureDisabled
}

// Cancel anula el alquiler abierto y libera la mesa. Cancelar una mesa ya cancelada o libre no escribe nada.
func (uc *OccupancyUseCase) Cancel(ctx context.Context, p ports.Principal, tableID string) (*entity.Table, error) {
	var out *entity.Table
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		table, err := lockTable(ctx, r, tableID)
		if err != nil {
			return err
		}
		if table.Status == entity.TableCancelled {
			out = table
			return nil
		}
		open, err := r.Rentals.FindOpenByTableForUpdate(ctx, table.ID)
		if err != nil {
			return err
		}
		if table.Status == entity.TableAvailable && open == nil {
			out = table
			return nil
		}
		if table.Status != entity.TableAvailable && table.Status != entity.TableInProgress {
			return domain.NewConflict("la mesa %d no se puede cancelar (%s)", table.Number, table.Status)
		}

		now := uc.clock.Now()
		if open != nil {
			open.ElapsedSeconds = pricing.ElapsedSeconds(open.StartedAt, now)
			open.EndedAt = &now
			open.AmountTime = decimal.Zero
			open.Consumption = decimal.Zero
			open.Discount = decimal.Zero
			open.Surcharge = decimal.Zero
			open.Total = decimal.Zero
			open.Status = entity.RentalCancelled
			open.ClosedBy = p.UserID
			open.UpdatedAt = now
			if err := r.Rentals.Update(ctx, open); err != nil {
				return err
			}
		}
		table.ResetSnapshot()
		table.Status = entity.TableAvailable
		table.UpdatedAt = now
		if err := r.Tables.Update(ctx, table); err != nil {
			return err
		}
		out = table
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get alquiler con líneas vigentes y anuladas.
func (uc *OccupancyUseCase) Get(ctx context.Context, rentalID string) (*RentalView, error) {
	var out *RentalView
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		rt, err := r.Rentals.GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if rt == nil {
			return domain.NewNotFound("alquiler", rentalID)
		}
		items, err := r.RentalItems.ListByRental(ctx, rt.ID, true)
		if err != nil {
			return err
		}
		out = &RentalView{Rental: rt, Items: items, Quote: uc.quote(rt)}
		return nil
	})
	return out, err
}

func (uc *OccupancyUseCase) quote(rt *entity.Rental) pricing.Quote {
	if rt.IsOpen() {
		return pricing.QuoteBetween(rt.StartedAt, uc.clock.Now(), rt.RatePerHour)
	}
	minutes := pricing.BillableMinutes(rt.ElapsedSeconds)
	amount := rt.AmountTime
	if rt.Status == entity.RentalCancelled {
		minutes = 0
	}
	return pricing.Quote{ElapsedSeconds: rt.ElapsedSeconds, BillableMinutes: minutes, RatePerHour: rt.RatePerHour, Amount: amount}
}

// List historial de alquileres.
func (uc *OccupancyUseCase) List(ctx context.Context, q repository.RentalQuery) ([]*entity.Rental, int, error) {
	var (
		list  []*entity.Rental
		total int
	)
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		list, total, err = r.Rentals.List(ctx, q)
		return err
	})
	return list, total, err
}

// Update descuento, recargo, tarifa o notas del alquiler abierto.
func (uc *OccupancyUseCase) Update(ctx context.Context, p ports.Principal, rentalID string, req UpdateRequest) (*entity.Rental, error) {
	if req.Discount != nil && req.Discount.IsNegative() {
		return nil, domain.NewValidation("discount", "no puede ser negativo")
	}
	if req.Surcharge != nil && req.Surcharge.IsNegative() {
		return nil, domain.NewValidation("surcharge", "no puede ser negativo")
	}
	if req.RatePerHour != nil && req.RatePerHour.IsNegative() {
		return nil, domain.NewValidation("rate_per_hour", "no puede ser negativa")
	}
	var out *entity.Rental
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		table, rt, err := lockOpenRental(ctx, r, rentalID)
		if err != nil {
			return err
		}
		if req.Discount != nil {
			rt.Discount = req.Discount.Round(2)
		}
		if req.Surcharge != nil {
			rt.Surcharge = req.Surcharge.Round(2)
		}
		if req.RatePerHour != nil {
			rt.RatePerHour = *req.RatePerHour
		}
		if req.Notes != nil {
			rt.Notes = *req.Notes
		}
		rt.UpdatedAt = uc.clock.Now()
		if err := recalcTotals(ctx, r, table, rt); err != nil {
			return err
		}
		out = rt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockTable(ctx context.Context, r repository.Repos, tableID string) (*entity.Table, error) {
	table, err := r.Tables.GetForUpdate(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.NewNotFound("mesa", tableID)
	}
	return table, nil
}

// lockOpenRental bloquea mesa y luego alquiler, en ese orden, y exige que el alquiler siga abierto.
func lockOpenRental(ctx context.Context, r repository.Repos, rentalID string) (*entity.Table, *entity.Rental, error) {
	peek, err := r.Rentals.GetByID(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, domain.NewNotFound("alquiler", rentalID)
	}
	table, err := lockTable(ctx, r, peek.TableID)
	if err != nil {
		return nil, nil, err
	}
	rt, err := r.Rentals.GetForUpdate(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	if rt == nil {
		return nil, nil, domain.NewNotFound("alquiler", rentalID)
	}
	if !rt.IsOpen() {
		return nil, nil, domain.NewConflict("el alquiler %s no está abierto (%s)", rt.ID, rt.Status)
	}
	return table, rt, nil
}

// recalcTotals consumo = suma de líneas ok; total = tiempo + consumo - descuento + recargo.
// La mesa refleja el consumo mientras el alquiler está abierto.
func recalcTotals(ctx context.Context, r repository.Repos, table *entity.Table, rt *entity.Rental) error {
	items, err := r.RentalItems.ListByRental(ctx, rt.ID, false)
	if err != nil {
		return err
	}
	consumption := decimal.Zero
	for _, it := range items {
		if it.Status == entity.ItemOK {
			consumption = consumption.Add(it.Total)
		}
	}
	rt.Consumption = consumption.Round(2)
	rt.RecalcTotal()
	if err := r.Rentals.Update(ctx, rt); err != nil {
		return err
	}
	if table != nil && table.Status == entity.TableInProgress {
		table.Consumption = rt.Consumption
		table.UpdatedAt = rt.UpdatedAt
		return r.Tables.Update(ctx, table)
	}
	return nil
}
