package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// uuidParam valida que el parámetro de ruta sea un UUID.
func uuidParam(c *fiber.Ctx, name string) (string, error) {
	v := c.Params(name)
	if _, err := uuid.Parse(v); err != nil {
		return "", badRequest("INVALID_ID", name+" debe ser un UUID")
	}
	return v, nil
}

// parseInstant acepta RFC3339 o fecha simple en loc. Con fecha simple y endOfDay
// devuelve el último instante del día.
func parseInstant(field, raw string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, domain.NewValidation(field, "formato esperado YYYY-MM-DD o RFC3339")
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &d, nil
}

// parseRange rango [from, to] con to inclusivo.
func parseRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	f, err := parseInstant("from", from, loc, false)
	if err != nil {
		return nil, nil, err
	}
	t, err := parseInstant("to", to, loc, true)
	if err != nil {
		return nil, nil, err
	}
	if f != nil && t != nil && t.Before(*f) {
		return nil, nil, domain.NewValidation("to", "debe ser posterior a from")
	}
	return f, t, nil
}

func toPage(p dto.PageRequest) repository.Page {
	return repository.Page{Limit: p.Limit, Offset: p.Offset}.Normalize()
}

func pageResponse(p repository.Page, total int) dto.PageResponse {
	return dto.PageResponse{Limit: p.Limit, Offset: p.Offset, Total: total}
}
