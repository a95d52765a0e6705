package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/application/ports"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/domain/repository"
	"github.com/jhoicas/billar-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login contra la base del tenant del contexto.
type AuthUseCase struct {
	tx     ports.TxRunner
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(tx ports.TxRunner, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{tx: tx, jwtCfg: jwtCfg}
}

// Login verifica email/password, genera el JWT atado al tenant y retorna token + usuario.
// Email inexistente y contraseña incorrecta responden igual.
func (uc *AuthUseCase) Login(ctx context.Context, tenant string, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.NewValidation("email", "email y contraseña son obligatorios")
	}
	var user *entity.User
	err := uc.tx.Read(ctx, func(r repository.Repos) error {
		var err error
		user, err = r.Users.GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	id := jwt.Identity{UserID: user.ID, Role: user.Role, Tenant: tenant}
	if user.WarehouseID != nil {
		id.WarehouseID = *user.WarehouseID
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, id)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:  token,
		Tenant: tenant,
		User:   *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		WarehouseID: u.WarehouseID,
		Status:      u.Status,
	}
}
