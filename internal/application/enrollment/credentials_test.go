package enrollment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
	"github.com/jhoicas/biometria-api/internal/infrastructure/memory"
)

func TestIssue_GeneraTokenConVentanaDe24h(t *testing.T) {
	now := baseTime
	store := newStore()
	svc := newCredentialService(store, &now, false)

	cred, err := svc.Issue(context.Background(), employeeID)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.Token)
	assert.Equal(t, entity.CredentialIssued, cred.State)
	assert.Equal(t, baseTime, cred.IssuedAt)
	assert.Equal(t, baseTime.Add(24*time.Hour), cred.ExpiresAt)
	assert.True(t, cred.ExpiresAt.After(cred.IssuedAt))

	other, err := svc.Issue(context.Background(), employeeID)
	require.NoError(t, err)
	assert.NotEqual(t, cred.Token, other.Token, "cada emisión genera un token nuevo")
}

func TestIssue_EmpleadoInexistente(t *testing.T) {
	now := baseTime
	svc := newCredentialService(newStore(), &now, false)
	_, err := svc.Issue(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}

type brokenCreds struct{ repository.CredentialRepository }

func (brokenCreds) Upsert(context.Context, *entity.EnrollmentCredential) error {
	return errors.New("disco lleno")
}

func TestIssue_FallaDeEscrituraEsPersistenceError(t *testing.T) {
	store := newStore()
	svc := enrollment.NewCredentialService(brokenCreds{store.Credentials()}, store.Profiles(), store.Employees(),
		enrollment.CredentialConfig{}, zerolog.Nop())
	_, err := svc.Issue(context.Background(), employeeID)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

// Escenario A: válido dentro de la ventana, expirado 24h + 1s después.
func TestValidate_VentanaDeValidez(t *testing.T) {
	now := baseTime
	store := newStore()
	svc := newCredentialService(store, &now, false)
	cred, err := svc.Issue(context.Background(), employeeID)
	require.NoError(t, err)

	res, err := svc.Validate(context.Background(), employeeID, cred.Token)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusValid, res.Status)
	assert.Equal(t, "Ana María Pérez", res.EmployeeName)

	now = baseTime.Add(24 * time.Hour)
	res, err = svc.Validate(context.Background(), employeeID, cred.Token)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusValid, res.Status, "el instante exacto de expiración aún es válido")

	now = baseTime.Add(24*time.Hour + time.Second)
	res, err = svc.Validate(context.Background(), employeeID, cred.Token)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusExpired, res.Status)
	assert.Equal(t, "Ana María Pérez", res.EmployeeName, "el nombre se informa aunque no sea válido")
	assert.ErrorIs(t, res.Err(), domain.ErrTokenExpired)
}

// Escenario B: perfil activo con token fresco o sin credencial emitida.
func TestValidate_PerfilActivoEsUsado(t *testing.T) {
	ctx := context.Background()
	for _, allow := range []bool{false, true} {
		now := baseTime
		store := newStore()
		svc := newCredentialService(store, &now, allow)
		require.NoError(t, store.Profiles().Upsert(ctx, &entity.BiometricProfile{
			EmployeeID: employeeID, Descriptor: descriptor(0), Status: entity.ProfileActive, CapturedAt: baseTime,
		}))

		res, err := svc.Validate(ctx, employeeID, "")
		require.NoError(t, err)
		assert.Equal(t, enrollment.StatusUsed, res.Status, "sin credencial, allow=%v", allow)

		cred, err := svc.Issue(ctx, employeeID)
		require.NoError(t, err)
		res, err = svc.Validate(ctx, employeeID, cred.Token)
		require.NoError(t, err)
		assert.Equal(t, enrollment.StatusUsed, res.Status, "token fresco, allow=%v", allow)
		assert.ErrorIs(t, res.Err(), domain.ErrTokenUsed)
	}
}

func TestValidate_ReemisionInvalidaTokenAnterior(t *testing.T) {
	ctx := context.Background()
	now := baseTime
	svc := newCredentialService(newStore(), &now, true)

	old, err := svc.Issue(ctx, employeeID)
	require.NoError(t, err)
	now = baseTime.Add(time.Hour)
	fresh, err := svc.Issue(ctx, employeeID)
	require.NoError(t, err)

	res, err := svc.Validate(ctx, employeeID, old.Token)
	require.NoError(t, err)
	assert.NotEqual(t, enrollment.StatusValid, res.Status)
	assert.Equal(t, enrollment.StatusInvalid, res.Status)

	res, err = svc.Validate(ctx, employeeID, fresh.Token)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusValid, res.Status)
}

func TestValidate_SinCredencialSegunPolitica(t *testing.T) {
	ctx := context.Background()
	now := baseTime

	strict := newCredentialService(newStore(), &now, false)
	res, err := strict.Validate(ctx, employeeID, "cualquiera")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusInvalid, res.Status)

	lenient := newCredentialService(newStore(), &now, true)
	res, err = lenient.Validate(ctx, employeeID, "cualquiera")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusValid, res.Status)
}

func TestValidate_EmpleadoDesconocidoYTokenErroneo(t *testing.T) {
	ctx := context.Background()
	now := baseTime
	svc := newCredentialService(newStore(), &now, true)
	_, err := svc.Issue(ctx, employeeID)
	require.NoError(t, err)

	res, err := svc.Validate(ctx, "otro", "x")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusInvalid, res.Status)
	assert.Empty(t, res.EmployeeName)

	res, err = svc.Validate(ctx, employeeID, "token-falso")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusInvalid, res.Status)
	assert.ErrorIs(t, res.Err(), domain.ErrTokenInvalid)

	res, err = svc.Validate(ctx, employeeID, "")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusInvalid, res.Status)
}

func TestConsume_Idempotente(t *testing.T) {
	ctx := context.Background()
	now := baseTime
	store := memory.NewStore()
	store.AddEmployee(entity.Employee{ID: employeeID, Name: "Ana"})
	svc := newCredentialService(store, &now, false)
	cred, err := svc.Issue(ctx, employeeID)
	require.NoError(t, err)

	now = baseTime.Add(time.Minute)
	require.NoError(t, svc.Consume(ctx, employeeID, cred.Token))
	first, err := store.Credentials().GetByEmployee(ctx, employeeID)
	require.NoError(t, err)

	now = baseTime.Add(time.Hour)
	require.NoError(t, svc.Consume(ctx, employeeID, cred.Token))
	second, err := store.Credentials().GetByEmployee(ctx, employeeID)
	require.NoError(t, err)

	assert.Equal(t, entity.CredentialConsumed, second.State)
	assert.Equal(t, first, second, "consumir dos veces deja el mismo estado terminal")

	res, err := svc.Validate(ctx, employeeID, cred.Token)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusUsed, res.Status)
}

func TestLinkURL(t *testing.T) {
	now := baseTime
	svc := newCredentialService(newStore(), &now, false)
	assert.Equal(t, "https://rh.example.com/biometria-remota/emp-001?token=abc_-1",
		svc.LinkURL(employeeID, "abc_-1"))
}

func TestGreetingName(t *testing.T) {
	assert.Equal(t, "José Ñuñez", enrollment.GreetingName("  JOSÉ   ñuñez "))
	assert.Equal(t, "", enrollment.GreetingName("   "))
}

func TestAuthorize_RepiteLaDecisionDeValidate(t *testing.T) {
	ctx := context.Background()
	now := baseTime
	store := newStore()
	svc := newCredentialService(store, &now, false)
	cred, err := svc.Issue(ctx, employeeID)
	require.NoError(t, err)

	assert.NoError(t, svc.Authorize(cred, cred.Token, false))
	assert.ErrorIs(t, svc.Authorize(cred, "otro", false), domain.ErrTokenInvalid)
	assert.ErrorIs(t, svc.Authorize(nil, cred.Token, false), domain.ErrTokenInvalid)
	assert.ErrorIs(t, svc.Authorize(cred, cred.Token, true), domain.ErrTokenUsed, "ya hay un perfil activo")

	consumed := *cred
	consumed.State = entity.CredentialConsumed
	assert.ErrorIs(t, svc.Authorize(&consumed, cred.Token, false), domain.ErrTokenUsed)

	now = baseTime.Add(24*time.Hour + time.Second)
	assert.ErrorIs(t, svc.Authorize(cred, cred.Token, false), domain.ErrTokenExpired)

	lenient := newCredentialService(newStore(), &now, true)
	assert.NoError(t, lenient.Authorize(nil, "", false), "sin credencial emitida según la política")
}
