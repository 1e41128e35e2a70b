package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/traslados-api/internal/application/auth"
	"github.com/jhoicas/traslados-api/internal/application/dto"
	"github.com/jhoicas/traslados-api/internal/domain"
	"github.com/jhoicas/traslados-api/internal/domain/entity"
	"github.com/jhoicas/traslados-api/internal/infrastructure/memory"
	"github.com/jhoicas/traslados-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store, string) {
	t.Helper()
	store := memory.New()
	businessID := uuid.NewString()
	store.AddBusiness(entity.Business{ID: businessID, Name: "Tienda", Status: "active"})
	uc := auth.NewAuthUseCase(store.Users(), store.Businesses(), auth.JWTConfig{Secret: testSecret, ExpMinutes: 5, Issuer: "traslados-api"})
	return uc, store, businessID
}

func TestAuthUseCase_RegistroYLogin(t *testing.T) {
	uc, _, businessID := newAuth(t)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email:      "  Bodega@Tienda.co ",
		Password:   "clave-segura",
		BusinessID: businessID,
		Role:       entity.RoleBodeguero,
	})
	require.NoError(t, err)
	assert.Equal(t, "bodega@tienda.co", user.Email)
	assert.Equal(t, "bodega@tienda.co", user.Name, "sin nombre se usa el email")
	assert.Equal(t, entity.RoleBodeguero, user.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "bodega@tienda.co", Password: "otra-clave", BusinessID: businessID})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "BODEGA@tienda.co", Password: "clave-segura"})
	require.NoError(t, err)
	userID, gotBusiness, role, err := jwt.Parse(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, businessID, gotBusiness)
	assert.Equal(t, entity.RoleBodeguero, role)
}

func TestAuthUseCase_RolPorDefectoYNegocioInexistente(t *testing.T) {
	uc, _, businessID := newAuth(t)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ventas@tienda.co", Password: "clave-segura", BusinessID: businessID})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, user.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "x@tienda.co", Password: "clave-segura", BusinessID: uuid.NewString()})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAuthUseCase_LoginFallido(t *testing.T) {
	uc, store, businessID := newAuth(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Email: "nadie@tienda.co", Password: "x"})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "sup@tienda.co", Password: "clave-segura", BusinessID: businessID, Role: entity.RoleSupervisor})
	require.NoError(t, err)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "sup@tienda.co", Password: "equivocada"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	stored, err := store.Users().GetByEmail(ctx, "sup@tienda.co")
	require.NoError(t, err)
	stored.Status = "suspended"
	store.AddUser(*stored)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "sup@tienda.co", Password: "clave-segura"})
	assert.True(t, errors.Is(err, domain.ErrForbidden), "usuario suspendido no inicia sesión")
}
