package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/inventory"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// InventoryHandler kardex, traslados y existencias.
type InventoryHandler struct {
	uc  *inventory.KardexUseCase
	loc *time.Location
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.KardexUseCase, loc *time.Location) *InventoryHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InventoryHandler{uc: uc, loc: loc}
}

// RecordMovement godoc
// @Summary      Registrar entrada, salida o ajuste en el kardex
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.KardexMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.KardexEntryResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/kardex [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.KardexMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	e, err := h.uc.RecordMovement(c.UserContext(), principal(c), inventory.MovementRequest{
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		Movement:      entity.MovementKind(in.Movement),
		Quantity:      in.Quantity,
		Direction:     in.Direction,
		UnitCost:      in.UnitCost,
		AllowNegative: in.AllowNegative,
		Reference:     in.Reference,
		Description:   in.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewKardexEntryResponse(e))
}

// Transfer godoc
// @Summary      Trasladar existencias entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Traslado"
// @Success      201   {array}  dto.KardexEntryResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/kardex/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	entries, err := h.uc.Transfer(c.UserContext(), principal(c), inventory.TransferRequest{
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		AllowNegative:   in.AllowNegative,
		Description:     in.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewKardexEntriesResponse(entries))
}

// List godoc
// @Summary      Consultar kardex
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        movement      query  string  false  "entrada | salida | ajuste | transfer_in | transfer_out"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta (inclusive)"
// @Success      200           {object}  dto.KardexListResponse
// @Router       /api/kardex [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var in dto.KardexQueryRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	from, to, err := parseRange(in.From, in.To, h.loc)
	if err != nil {
		return err
	}
	q := repository.KardexQuery{ProductID: in.ProductID, WarehouseID: in.WarehouseID, From: from, To: to, Page: toPage(in.PageRequest)}
	if in.Movement != "" {
		mk := entity.MovementKind(in.Movement)
		q.Movement = &mk
	}
	list, total, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(dto.KardexListResponse{Items: dto.NewKardexEntriesResponse(list), Page: pageResponse(q.Page, total)})
}

// Stock godoc
// @Summary      Existencias de un producto por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	list, err := h.uc.GetStock(c.UserContext(), id)
	if err != nil {
		return err
	}
	out := make([]dto.StockResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewStockResponse(s))
	}
	return c.JSON(out)
}
