package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/infrastructure/tenant"
)

// TenantBinder deja en el contexto la base del tenant; release se llama al terminar la petición.
type TenantBinder interface {
	Bind(ctx context.Context, slug string) (context.Context, func(), error)
}

// TenantMiddleware resuelve el tenant desde la cabecera header o el subdominio de baseDomain.
func TenantMiddleware(binder TenantBinder, header, baseDomain string) fiber.Handler {
	if header == "" {
		header = "X-Tenant"
	}
	return func(c *fiber.Ctx) error {
		raw := c.Get(header)
		if raw == "" {
			raw = tenant.SlugFromHost(c.Hostname(), baseDomain)
		}
		if raw == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "TENANT_REQUIRED", Message: "cabecera " + header + " o subdominio requerido"})
		}
		slug, err := tenant.NormalizeSlug(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "TENANT_INVALID", Message: err.Error()})
		}
		ctx, release, err := binder.Bind(c.UserContext(), slug)
		if err != nil {
			switch {
			case errors.Is(err, tenant.ErrTenantNotFound):
				return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "TENANT_NOT_FOUND", Message: "local no encontrado"})
			case errors.Is(err, tenant.ErrTenantNotActive):
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "TENANT_INACTIVE", Message: "local inactivo"})
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TENANT_UNAVAILABLE", Message: "base del local no disponible, intente más tarde"})
		}
		defer release()
		c.SetUserContext(ctx)
		c.Locals(LocalTenant, slug)
		return c.Next()
	}
}
