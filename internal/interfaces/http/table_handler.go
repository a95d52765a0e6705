package http

import (
	"io"
	"mime"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/billing"
	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/rental"
	"github.com/jhoicas/billar-api/internal/application/usecase"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
)

// TableHandler catálogo de mesas y su ciclo de ocupación.
type TableHandler struct {
	tables    *usecase.TableUseCase
	occupancy *rental.OccupancyUseCase
	settle    *billing.SettleTableUseCase
}

// NewTableHandler construye el handler.
func NewTableHandler(tables *usecase.TableUseCase, occupancy *rental.OccupancyUseCase, settle *billing.SettleTableUseCase) *TableHandler {
	return &TableHandler{tables: tables, occupancy: occupancy, settle: settle}
}

// List godoc
// @Summary      Listar mesas
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "available | in_progress | cancelled"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.TableListResponse
// @Router       /api/tables [get]
func (h *TableHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	out, err := h.tables.List(c.UserContext(), c.Query("status"), page)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear mesa
// @Tags         tables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTableRequest  true  "Datos de la mesa"
// @Success      201   {object}  dto.TableResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/tables [post]
func (h *TableHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTableRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.tables.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Obtener mesa
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la mesa"
// @Success      200  {object}  dto.TableResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tables/{id} [get]
func (h *TableHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.tables.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar mesa
// @Tags         tables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la mesa"
// @Param        body  body  dto.UpdateTableRequest  true  "Cambios"
// @Success      200   {object}  dto.TableResponse
// @Router       /api/tables/{id} [put]
func (h *TableHandler) Update(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateTableRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.tables.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Start godoc
// @Summary      Iniciar alquiler de la mesa (idempotente)
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la mesa"
// @Success      201  {object}  dto.StartTableResponse
// @Success      200  {object}  dto.StartTableResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tables/{id}/start [post]
func (h *TableHandler) Start(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	res, err := h.occupancy.Start(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.StartTableResponse{
		Table:   dto.NewTableResponse(res.Table),
		Rental:  dto.NewRentalResponse(res.Rental),
		Created: res.Created,
	})
}

// Pause godoc
// @Summary      Pausar mesa (deshabilitado)
// @Tags         tables
// @Security     Bearer
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tables/{id}/pause [post]
func (h *TableHandler) Pause(c *fiber.Ctx) error {
	return h.occupancy.Pause(c.UserContext(), principal(c), c.Params("id"))
}

// Resume godoc
// @Summary      Reanudar mesa (deshabilitado)
// @Tags         tables
// @Security     Bearer
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/tables/{id}/resume [post]
func (h *TableHandler) Resume(c *fiber.Ctx) error {
	return h.occupancy.Resume(c.UserContext(), principal(c), c.Params("id"))
}

// Finish godoc
// @Summary      Liquidar mesa: cierra el alquiler y emite la nota de venta
// @Tags         tables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la mesa"
// @Param        body  body  dto.FinishTableRequest  true  "Datos del cobro"
// @Success      200   {object}  dto.FinishTableResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/tables/{id}/finish [post]
func (h *TableHandler) Finish(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.FinishTableRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	req := billing.FinishRequest{
		RentalID:           in.RentalID,
		PaymentMethod:      entity.PaymentMethod(in.PaymentMethod),
		Consumption:        in.Consumption,
		WarehouseID:        in.WarehouseID,
		Discount:           in.Discount,
		Surcharge:          in.Surcharge,
		RatePerHour:        in.RatePerHour,
		AllowNegativeStock: in.AllowNegativeStock,
		Series:             in.Series,
		Notes:              in.Notes,
	}
	for _, it := range in.Items {
		req.Items = append(req.Items, billing.FinishItem{
			ProductID:   it.ProductID,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			WarehouseID: it.WarehouseID,
		})
	}
	res, err := h.settle.Finish(c.UserContext(), principal(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(dto.FinishTableResponse{
		Table:    dto.NewTableResponse(res.Table),
		Rental:   dto.NewRentalResponse(res.Rental),
		Document: dto.NewDocumentResponse(res.Document),
	})
}

// Cancel godoc
// @Summary      Cancelar la ocupación de la mesa (idempotente)
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la mesa"
// @Success      200  {object}  dto.TableStateResponse
// @Router       /api/tables/{id}/cancel [post]
func (h *TableHandler) Cancel(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	table, err := h.occupancy.Cancel(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.TableStateResponse{Table: dto.NewTableResponse(table)})
}

// UploadCover godoc
// @Summary      Subir portada de la mesa
// @Tags         tables
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "ID de la mesa"
// @Param        file  formData  file    true  "Imagen jpeg, png o webp (máx. 5 MB)"
// @Success      200   {object}  dto.TableResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/tables/{id}/cover [post]
func (h *TableHandler) UploadCover(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("MISSING_FILE", "campo file requerido")
	}
	if fh.Size > usecase.MaxCoverSize {
		return domain.NewValidation("file", "supera el tamaño máximo de 5 MB")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxCoverSize+1))
	if err != nil {
		return err
	}
	contentType, _, _ := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	out, err := h.tables.UploadCover(c.UserContext(), id, contentType, data)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteCover godoc
// @Summary      Quitar portada de la mesa
// @Tags         tables
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la mesa"
// @Success      200  {object}  dto.TableResponse
// @Router       /api/tables/{id}/cover [delete]
func (h *TableHandler) DeleteCover(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.tables.DeleteCover(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
