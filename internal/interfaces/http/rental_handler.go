package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/rental"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// RentalHandler historial de alquileres y consumo POS.
type RentalHandler struct {
	occupancy *rental.OccupancyUseCase
	items     *rental.ItemsUseCase
	loc       *time.Location
}

// NewRentalHandler construye el handler. loc interpreta fechas sin zona en los filtros.
func NewRentalHandler(occupancy *rental.OccupancyUseCase, items *rental.ItemsUseCase, loc *time.Location) *RentalHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &RentalHandler{occupancy: occupancy, items: items, loc: loc}
}

// List godoc
// @Summary      Historial de alquileres
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        status    query  string  false  "open | closed | cancelled"
// @Param        table_id  query  string  false  "Mesa"
// @Param        from      query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to        query  string  false  "Hasta (inclusive)"
// @Success      200       {object}  dto.RentalListResponse
// @Router       /api/rentals [get]
func (h *RentalHandler) List(c *fiber.Ctx) error {
	var in dto.RentalQueryRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	from, to, err := parseRange(in.From, in.To, h.loc)
	if err != nil {
		return err
	}
	q := repository.RentalQuery{TableID: in.TableID, From: from, To: to, Page: toPage(in.PageRequest)}
	if in.Status != "" {
		st := entity.RentalStatus(in.Status)
		q.Status = &st
	}
	list, total, err := h.occupancy.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	out := dto.RentalListResponse{Items: make([]dto.RentalResponse, 0, len(list)), Page: pageResponse(q.Page, total)}
	for _, rt := range list {
		out.Items = append(out.Items, dto.NewRentalResponse(rt))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Alquiler con líneas y cotización de tiempo
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del alquiler"
// @Success      200  {object}  dto.RentalDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rentals/{id} [get]
func (h *RentalHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	v, err := h.occupancy.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.RentalDetailResponse{
		Rental: dto.NewRentalResponse(v.Rental),
		Items:  dto.NewRentalItemsResponse(v.Items),
		Quote:  dto.NewQuoteResponse(v.Quote),
	})
}

// Update godoc
// @Summary      Ajustar descuento, recargo, tarifa o notas del alquiler abierto
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del alquiler"
// @Param        body  body  dto.UpdateRentalRequest  true  "Cambios"
// @Success      200   {object}  dto.RentalResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/rentals/{id} [put]
func (h *RentalHandler) Update(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateRentalRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	rt, err := h.occupancy.Update(c.UserContext(), principal(c), id, rental.UpdateRequest{
		Discount:    in.Discount,
		Surcharge:   in.Surcharge,
		RatePerHour: in.RatePerHour,
		Notes:       in.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewRentalResponse(rt))
}

// ListItems godoc
// @Summary      Líneas de consumo del alquiler
// @Tags         rentals
// @Security     Bearer
// @Produce      json
// @Param        id              path   string  true   "ID del alquiler"
// @Param        include_voided  query  bool    false  "Incluir anuladas"
// @Success      200             {array}  dto.RentalItemResponse
// @Router       /api/rentals/{id}/items [get]
func (h *RentalHandler) ListItems(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	items, err := h.items.ListItems(c.UserContext(), id, c.QueryBool("include_voided", false))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewRentalItemsResponse(items))
}

func toItemRequest(in dto.AddItemRequest) rental.ItemRequest {
	return rental.ItemRequest{
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		UnitName:    in.UnitName,
		Qty:         in.Qty,
		UnitPrice:   in.UnitPrice,
		Discount:    in.Discount,
		ClientOpID:  in.ClientOpID,
		WarehouseID: in.WarehouseID,
	}
}

// AddItem godoc
// @Summary      Agregar consumo (idempotente por client_op_id)
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del alquiler"
// @Param        body  body  dto.AddItemRequest  true  "Línea"
// @Success      201   {object}  dto.AddItemResponse
// @Success      200   {object}  dto.AddItemResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/rentals/{id}/items [post]
func (h *RentalHandler) AddItem(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.AddItemRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	res, err := h.items.AddItem(c.UserContext(), principal(c), id, toItemRequest(in))
	if err != nil {
		return err
	}
	item := dto.NewRentalItemResponse(res.Item)
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.AddItemResponse{Item: &item, Rental: dto.NewRentalResponse(res.Rental), Created: res.Created})
}

// AddItemsBulk godoc
// @Summary      Agregar varias líneas en una sola transacción
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del alquiler"
// @Param        body  body  dto.BulkItemsRequest  true  "Líneas"
// @Success      200   {object}  dto.BulkItemsResponse
// @Router       /api/rentals/{id}/items/bulk [post]
func (h *RentalHandler) AddItemsBulk(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.BulkItemsRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	reqs := make([]rental.ItemRequest, 0, len(in.Items))
	for _, it := range in.Items {
		reqs = append(reqs, toItemRequest(it))
	}
	res, err := h.items.AddItemsBulk(c.UserContext(), principal(c), id, reqs)
	if err != nil {
		return err
	}
	return c.JSON(dto.BulkItemsResponse{
		Rental:  dto.NewRentalResponse(res.Rental),
		Items:   dto.NewRentalItemsResponse(res.Items),
		Created: res.Created,
		Skipped: res.Skipped,
	})
}

// UpdateItem godoc
// @Summary      Cambiar cantidad, precio o descuento de una línea
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la línea"
// @Param        body  body  dto.UpdateItemRequest  true  "Cambios"
// @Success      200   {object}  dto.RentalItemResponse
// @Router       /api/rental-items/{id} [put]
func (h *RentalHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateItemRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	item, err := h.items.UpdateItem(c.UserContext(), principal(c), id, rental.ItemUpdate{
		Qty:       in.Qty,
		UnitPrice: in.UnitPrice,
		Discount:  in.Discount,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewRentalItemResponse(item))
}

// VoidItem godoc
// @Summary      Anular una línea de consumo
// @Tags         rentals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "ID de la línea"
// @Param        body  body  dto.VoidItemRequest  false  "Motivo"
// @Success      200   {object}  dto.RentalItemResponse
// @Router       /api/rental-items/{id} [delete]
func (h *RentalHandler) VoidItem(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.VoidItemRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if in.Reason == "" {
		in.Reason = c.Query("reason")
	}
	item, err := h.items.VoidItem(c.UserContext(), principal(c), id, in.Reason)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewRentalItemResponse(item))
}
