package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/pkg/config"
	"github.com/jhoicas/biometria-api/pkg/jwt"
)

// ─── Operadores de prueba ──────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "biometria-api-test"
)

var testTokens = jwt.NewSigner(config.JWTConfig{Secret: testJWTSecret, Issuer: testIssuer, Expiration: 60})

func tokenFrom(t *testing.T, s *jwt.Signer, role string) string {
	t.Helper()
	tok, err := s.Generate(jwt.Operator{UserID: testUserID, CompanyID: testCompanyID, Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return tokenFrom(t, testTokens, role)
}

// ─── Matriz de acceso por rol sobre las rutas reales ───────────────────────

func TestRutas_AccesoPorRol(t *testing.T) {
	enlace := "/api/biometria/empleados/" + employeeID + "/enlace"
	perfil := "/api/biometria/empleados/" + employeeID + "/perfil"
	inactive := dto.UpdateProfileStatusRequest{Status: "inactive"}

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		body   any
		want   int
	}{
		{"rh emite enlaces", http.MethodPost, enlace, "rh", nil, http.StatusCreated},
		{"admin emite enlaces", http.MethodPost, enlace, "admin", nil, http.StatusCreated},
		{"empleado no emite enlaces", http.MethodPost, enlace, "empleado", nil, http.StatusForbidden},
		{"rh consulta el perfil", http.MethodGet, perfil, "rh", nil, http.StatusOK},
		{"rh no cambia el estado del perfil", http.MethodPatch, perfil, "rh", inactive, http.StatusForbidden},
		{"admin cambia el estado del perfil", http.MethodPatch, perfil, "admin", inactive, http.StatusNoContent},
		{"rh no da de alta operadores", http.MethodPost, "/api/auth/register", "rh",
			dto.RegisterRequest{Email: "x@demo.local", Password: "12345678", CompanyID: testCompanyID}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, nil)
			api.enroll(t, make(biometria.Descriptor, biometria.DescriptorSize))

			resp := api.do(t, tt.method, tt.path, tokenForRole(t, tt.role), tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, resp).Code)
			}
		})
	}
}

// ─── Rechazos del middleware ───────────────────────────────────────────────

func TestRutas_TokenRechazado(t *testing.T) {
	enlace := "/api/biometria/empleados/" + employeeID + "/enlace"
	expired := jwt.NewSigner(config.JWTConfig{Secret: testJWTSecret, Issuer: testIssuer, Expiration: 5}).
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	foreign := jwt.NewSigner(config.JWTConfig{Secret: testJWTSecret, Issuer: "otra-api", Expiration: 60})

	tests := []struct {
		name       string
		authHeader string
		want       int
		code       string
	}{
		{"sin cabecera", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token expirado", tokenFrom(t, expired, "rh"), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token de otro emisor", tokenFrom(t, foreign, "admin"), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token sin rol", tokenForRole(t, ""), http.StatusUnauthorized, "MISSING_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, nil)
			resp := api.do(t, http.MethodPost, enlace, tt.authHeader, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

// ─── Alta y login de operadores ────────────────────────────────────────────

func TestOperador_AltaLoginYUsoDelToken(t *testing.T) {
	api := newTestAPI(t, nil)

	resp := api.do(t, http.MethodPost, "/api/auth/register", tokenForRole(t, "admin"), dto.RegisterRequest{
		Email: "rh@demo.local", Password: "clave-segura", CompanyID: testCompanyID, Role: "rh",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := decode[dto.UserResponse](t, resp)
	assert.Equal(t, "rh", user.Role)

	resp = api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "rh@demo.local", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "RH@demo.local", Password: "clave-segura"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)

	op, err := testTokens.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, op.UserID)
	assert.Equal(t, "rh", op.Role)

	resp = api.do(t, http.MethodPost, "/api/biometria/empleados/"+employeeID+"/enlace", "Bearer "+login.Token, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "el token del login habilita la emisión de enlaces")
	resp.Body.Close()
}
