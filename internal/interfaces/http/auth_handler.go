package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/internal/application/auth"
	"github.com/jhoicas/billar-api/internal/application/dto"
)

// AuthHandler login de usuarios del club.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  El club se resuelve por cabecera o subdominio antes de validar credenciales.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Tenant  header  string            false  "Slug del club"
// @Param        body      body    dto.LoginRequest  true   "email, password"
// @Success      200       {object}  dto.LoginResponse
// @Failure      401       {object}  dto.ErrorResponse
// @Failure      403       {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	slug := GetTenant(c)
	if slug == "" {
		return badRequest("TENANT_REQUIRED", "club no indicado")
	}
	var in dto.LoginRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), slug, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
