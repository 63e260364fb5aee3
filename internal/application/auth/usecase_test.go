package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biometria-api/internal/application/auth"
	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/infrastructure/memory"
	"github.com/jhoicas/biometria-api/pkg/config"
	"github.com/jhoicas/biometria-api/pkg/jwt"
)

var tokens = jwt.NewSigner(config.JWTConfig{Secret: "test-secret", Issuer: "test", Expiration: 10})

func newUseCase() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewStore().Users(), tokens)
}

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "RH@Empresa.com ", Password: "12345678", CompanyID: "c-1"})
	require.NoError(t, err)
	assert.Equal(t, "rh@empresa.com", user.Email)
	assert.Equal(t, "rh", user.Role, "rol por defecto")

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "rh@empresa.com", Password: "12345678", CompanyID: "c-1"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "rh@empresa.com", Password: "12345678"})
	require.NoError(t, err)
	op, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.Operator{UserID: user.ID, CompanyID: "c-1", Role: "rh"}, op)
}

func TestLogin_Errores(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@b.com", Password: "12345678", CompanyID: "c-1", Role: "admin"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@b.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@b.com", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRegister_RolInvalido(t *testing.T) {
	_, err := newUseCase().RegisterUser(context.Background(), dto.RegisterRequest{Email: "a@b.com", Password: "12345678", CompanyID: "c", Role: "vendedor"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
