package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/analytics"
	"github.com/jhoicas/billar-api/internal/application/dto"
)

// ReportHandler reportes de ventas.
type ReportHandler struct {
	sales *analytics.SalesSummaryUseCase
}

func NewReportHandler(sales *analytics.SalesSummaryUseCase) *ReportHandler {
	return &ReportHandler{sales: sales}
}

// SalesSummary godoc
// @Summary      Resumen de ventas
// @Description  Totales por medio de pago y productos más vendidos en el rango. Por defecto el día actual.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from             query  string  false  "YYYY-MM-DD"
// @Param        to               query  string  false  "YYYY-MM-DD (inclusive)"
// @Param        cash_session_id  query  string  false  "Sesión de caja"
// @Param        top              query  int     false  "Cantidad de productos top"  default(5)
// @Success      200              {object}  dto.SalesSummaryResponse
// @Failure      422              {object}  dto.ErrorResponse
// @Router       /api/reports/sales-summary [get]
func (h *ReportHandler) SalesSummary(c *fiber.Ctx) error {
	var in dto.SalesSummaryRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.sales.GetSummary(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
