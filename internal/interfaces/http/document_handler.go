package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/document"
	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

// DocumentHandler consulta de notas de venta emitidas.
type DocumentHandler struct {
	emitter *document.Emitter
	loc     *time.Location
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(emitter *document.Emitter, loc *time.Location) *DocumentHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DocumentHandler{emitter: emitter, loc: loc}
}

// List godoc
// @Summary      Listar documentos emitidos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        series           query  string  false  "Serie"
// @Param        payment_method   query  string  false  "cash | card | transfer | other"
// @Param        cash_session_id  query  string  false  "Sesión de caja"
// @Param        from             query  string  false  "Desde"
// @Param        to               query  string  false  "Hasta (inclusive)"
// @Success      200              {object}  dto.DocumentListResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var in dto.DocumentQueryRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	from, to, err := parseRange(in.From, in.To, h.loc)
	if err != nil {
		return err
	}
	q := repository.DocumentQuery{Series: in.Series, CashSessionID: in.CashSessionID, From: from, To: to, Page: toPage(in.PageRequest)}
	if in.PaymentMethod != "" {
		pm := entity.PaymentMethod(in.PaymentMethod)
		q.PaymentMethod = &pm
	}
	list, total, err := h.emitter.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	out := dto.DocumentListResponse{Items: make([]dto.DocumentResponse, 0, len(list)), Page: pageResponse(q.Page, total)}
	for _, d := range list {
		out.Items = append(out.Items, dto.NewDocumentResponse(d))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Documento con su detalle
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	d, err := h.emitter.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDocumentResponse(d))
}

// PDF godoc
// @Summary      Ticket PDF de la nota de venta
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	pdf, d, err := h.emitter.RenderPDF(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, d.FullNumber()))
	return c.Send(pdf)
}
