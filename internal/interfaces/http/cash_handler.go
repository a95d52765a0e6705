package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/cash"
	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// CashHandler sesiones de caja, movimientos y arqueo.
type CashHandler struct {
	uc  *cash.UseCase
	loc *time.Location
}

// NewCashHandler construye el handler.
func NewCashHandler(uc *cash.UseCase, loc *time.Location) *CashHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CashHandler{uc: uc, loc: loc}
}

func detailResponse(v *cash.SessionView) dto.CashSessionDetailResponse {
	return dto.NewCashSessionDetailResponse(v.Session, v.Movements)
}

// Open godoc
// @Summary      Abrir caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenCashRequest  true  "Fondo inicial"
// @Success      201   {object}  dto.CashSessionResponse
// @Failure      422   {object}  dto.ErrorResponse  "el usuario ya tiene una caja abierta"
// @Router       /api/cash-sessions/open [post]
func (h *CashHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCashRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	s, err := h.uc.Open(c.UserContext(), principal(c), in.OpeningCash, in.Notes)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCashSessionResponse(s))
}

// Current godoc
// @Summary      Caja abierta del usuario
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CashSessionDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cash-sessions/current [get]
func (h *CashHandler) Current(c *fiber.Ctx) error {
	v, err := h.uc.Current(c.UserContext(), principal(c))
	if err != nil {
		return err
	}
	return c.JSON(detailResponse(v))
}

// Get godoc
// @Summary      Sesión de caja con movimientos
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.CashSessionDetailResponse
// @Router       /api/cash-sessions/{id} [get]
func (h *CashHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	v, err := h.uc.Get(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	return c.JSON(detailResponse(v))
}

// List godoc
// @Summary      Listar sesiones de caja (un cajero solo ve las suyas)
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        status   query  string  false  "open | closed"
// @Param        user_id  query  string  false  "Usuario (solo admin)"
// @Param        from     query  string  false  "Desde"
// @Param        to       query  string  false  "Hasta (inclusive)"
// @Success      200      {object}  dto.CashSessionListResponse
// @Router       /api/cash-sessions [get]
func (h *CashHandler) List(c *fiber.Ctx) error {
	var in dto.CashSessionQueryRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	from, to, err := parseRange(in.From, in.To, h.loc)
	if err != nil {
		return err
	}
	q := repository.CashSessionQuery{UserID: in.UserID, From: from, To: to, Page: toPage(in.PageRequest)}
	if in.Status != "" {
		st := entity.CashSessionStatus(in.Status)
		q.Status = &st
	}
	list, total, err := h.uc.List(c.UserContext(), principal(c), q)
	if err != nil {
		return err
	}
	out := dto.CashSessionListResponse{Items: make([]dto.CashSessionResponse, 0, len(list)), Page: pageResponse(q.Page, total)}
	for _, s := range list {
		out.Items = append(out.Items, dto.NewCashSessionResponse(s))
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Movimientos de la sesión
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {array}  dto.CashMovementResponse
// @Router       /api/cash-sessions/{id}/movements [get]
func (h *CashHandler) Movements(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	list, err := h.uc.Movements(c.UserContext(), principal(c), id)
	if err != nil {
		return err
	}
	out := make([]dto.CashMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewCashMovementResponse(m))
	}
	return c.JSON(out)
}

// AddMovement godoc
// @Summary      Registrar ingreso, egreso, retiro, devolución o ajuste
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la sesión"
// @Param        body  body  dto.CashMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      409   {object}  dto.ErrorResponse  "sesión cerrada"
// @Router       /api/cash-sessions/{id}/movements [post]
func (h *CashHandler) AddMovement(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.CashMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	m, err := h.uc.AddMovement(c.UserContext(), principal(c), id, cash.MovementRequest{
		Type:         entity.CashMovementType(in.Type),
		Amount:       in.Amount,
		SignedAmount: in.SignedAmount,
		Description:  in.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCashMovementResponse(m))
}

// Close godoc
// @Summary      Cerrar caja con arqueo
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la sesión"
// @Param        body  body  dto.CloseCashRequest  true  "Efectivo contado"
// @Success      200   {object}  dto.CloseCashResponse
// @Failure      409   {object}  dto.ErrorResponse  "sesión ya cerrada"
// @Router       /api/cash-sessions/{id}/close [post]
func (h *CashHandler) Close(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.CloseCashRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	res, err := h.uc.Close(c.UserContext(), principal(c), id, cash.CloseRequest{
		CountedCash:  in.CountedCash,
		CreateAdjust: in.CreateAdjust,
		Notes:        in.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CloseCashResponse{
		CashSessionDetailResponse: detailResponse(&res.SessionView),
		Reconciliation:            dto.NewReconciliationResponse(res.Reconciliation),
	})
}
