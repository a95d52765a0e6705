package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/billar-api/internal/application/auth"
	"github.com/jhoicas/billar-api/internal/application/dto"
	"github.com/jhoicas/billar-api/internal/domain"
	"github.com/jhoicas/billar-api/internal/domain/entity"
	"github.com/jhoicas/billar-api/internal/infrastructure/memory"
	"github.com/jhoicas/billar-api/pkg/jwt"
)

const secret = "test-secret"

func seedUser(t *testing.T, s *memory.Store, email, status string) entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	wh := "wh-barra"
	u := entity.User{ID: "u-" + email, Email: email, PasswordHash: string(hash), Name: "Ana", Role: entity.RoleCashier, WarehouseID: &wh, Status: status}
	s.PutUser(u)
	return u
}

func TestLogin_EmiteTokenDelTenant(t *testing.T) {
	s := memory.NewStore()
	u := seedUser(t, s, "ana@billar.pe", "active")
	uc := auth.NewAuthUseCase(s, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "billar-api"})

	out, err := uc.Login(context.Background(), "demo", dto.LoginRequest{Email: " ANA@billar.pe ", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "demo", out.Tenant)
	assert.Equal(t, u.ID, out.User.ID)

	id, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "wh-barra", id.WarehouseID)
	assert.Equal(t, entity.RoleCashier, id.Role)
	assert.Equal(t, "demo", id.Tenant)
}

func TestLogin_Rechazos(t *testing.T) {
	s := memory.NewStore()
	seedUser(t, s, "ana@billar.pe", "active")
	seedUser(t, s, "baja@billar.pe", "inactive")
	uc := auth.NewAuthUseCase(s, auth.JWTConfig{Secret: secret, ExpMinutes: 60})
	ctx := context.Background()

	_, err := uc.Login(ctx, "demo", dto.LoginRequest{Email: "ana@billar.pe", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, "demo", dto.LoginRequest{Email: "nadie@billar.pe", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, "demo", dto.LoginRequest{Email: "baja@billar.pe", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Login(ctx, "demo", dto.LoginRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
