package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/pkg/jwt"
)

// Locals keys cargados por los middlewares.
const (
	LocalUserID      = "user_id"
	LocalWarehouseID = "warehouse_id"
	LocalRole        = "role"
	LocalTenant      = "tenant"
)

// AuthMiddleware valida el Bearer Token JWT y carga usuario, bodega y rol en c.Locals.
// Si TenantMiddleware ya resolvió un tenant, el claim tenant del token debe coincidir.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if tenant := GetTenant(c); tenant != "" && id.Tenant != tenant {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "TENANT_MISMATCH", Message: "el token no pertenece a este local"})
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalWarehouseID, id.WarehouseID)
		c.Locals(LocalRole, id.Role)
		if GetTenant(c) == "" {
			c.Locals(LocalTenant, id.Tenant)
		}
		return c.Next()
	}
}

// RequireRole permite el paso solo a los roles indicados. Va después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		if !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permisos insuficientes"})
		}
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID usuario autenticado.
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetWarehouseID bodega por defecto del token.
func GetWarehouseID(c *fiber.Ctx) string { return localString(c, LocalWarehouseID) }

// GetRole rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// GetTenant slug del tenant de la petición.
func GetTenant(c *fiber.Ctx) string { return localString(c, LocalTenant) }

// principal arma el ports.Principal de la petición.
func principal(c *fiber.Ctx) ports.Principal {
	return ports.Principal{UserID: GetUserID(c), WarehouseID: GetWarehouseID(c), Role: GetRole(c)}
}
