//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
	"github.com/jhoicas/biometria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/biometria-api/pkg/config"
)

func setupTestContainer(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil || container == nil {
		t.Skipf("Docker no disponible, se omite la prueba de integración: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{
		DatabaseURL: fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()), "migrar dos veces no falla")
	return pool
}

func descriptor(seed float32) biometria.Descriptor {
	d := make(biometria.Descriptor, biometria.DescriptorSize)
	for i := range d {
		d[i] = seed + float32(i)/1000
	}
	return d
}

func TestPostgresRepositories(t *testing.T) {
	pool := setupTestContainer(t)
	ctx := context.Background()
	employees := postgres.NewEmployeeRepository(pool)
	creds := postgres.NewCredentialRepository(pool)
	profiles := postgres.NewProfileRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, employees.Upsert(ctx, &entity.Employee{ID: "e-1", CompanyID: "c-1", Name: "Ana Pérez"}))

	t.Run("empleado sin perfil", func(t *testing.T) {
		e, err := employees.GetByID(ctx, "e-1")
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, entity.BiometricNone, e.BiometricStatus)

		missing, err := employees.GetByID(ctx, "nadie")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("credencial: reemisión y consumo idempotente", func(t *testing.T) {
		first := &entity.EnrollmentCredential{EmployeeID: "e-1", Token: "tok-1", IssuedAt: now, ExpiresAt: now.Add(24 * time.Hour), State: entity.CredentialIssued}
		require.NoError(t, creds.Upsert(ctx, first))
		second := &entity.EnrollmentCredential{EmployeeID: "e-1", Token: "tok-2", IssuedAt: now, ExpiresAt: now.Add(24 * time.Hour), State: entity.CredentialIssued}
		require.NoError(t, creds.Upsert(ctx, second))

		old, err := creds.Get(ctx, "e-1", "tok-1")
		require.NoError(t, err)
		assert.Nil(t, old, "la reemisión sobrescribe")

		require.NoError(t, creds.Consume(ctx, "e-1", "tok-2", now.Add(time.Minute)))
		require.NoError(t, creds.Consume(ctx, "e-1", "tok-2", now.Add(time.Hour)))
		got, err := creds.GetByEmployee(ctx, "e-1")
		require.NoError(t, err)
		assert.Equal(t, entity.CredentialConsumed, got.State)
		require.NotNil(t, got.ConsumedAt)
		assert.True(t, got.ConsumedAt.Equal(now.Add(time.Minute)), "el segundo consumo no cambia nada")
	})

	t.Run("perfil: upsert con pgvector y estado", func(t *testing.T) {
		p := &entity.BiometricProfile{EmployeeID: "e-1", Descriptor: descriptor(0.1), Status: entity.ProfileActive, CapturedAt: now}
		require.NoError(t, profiles.Upsert(ctx, p))

		got, err := profiles.GetActive(ctx, "e-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDeltaSlice(t, []float32(p.Descriptor), []float32(got.Descriptor), 1e-6)

		e, err := employees.GetByID(ctx, "e-1")
		require.NoError(t, err)
		assert.Equal(t, entity.BiometricActive, e.BiometricStatus)

		require.NoError(t, profiles.SetStatus(ctx, "e-1", entity.ProfileInactive))
		active, err := profiles.GetActive(ctx, "e-1")
		require.NoError(t, err)
		assert.Nil(t, active)

		assert.ErrorIs(t, profiles.SetStatus(ctx, "nadie", entity.ProfileActive), domain.ErrProfileNotFound)
	})

	t.Run("perfil: escrituras concurrentes dejan una fila", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, profiles.Upsert(ctx, &entity.BiometricProfile{
					EmployeeID: "e-1", Descriptor: descriptor(float32(i)), Status: entity.ProfileActive, CapturedAt: now,
				}))
			}(i)
		}
		wg.Wait()

		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM biometric_profiles WHERE employee_id = 'e-1'`).Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("tx: rollback ante error", func(t *testing.T) {
		require.NoError(t, employees.Upsert(ctx, &entity.Employee{ID: "e-2", CompanyID: "c-1", Name: "Luis"}))
		tx := postgres.NewTxRunner(pool)
		boom := errors.New("boom")
		err := tx.RunEnrollment(ctx, func(p repository.ProfileRepository, _ repository.CredentialRepository) error {
			if err := p.Upsert(ctx, &entity.BiometricProfile{EmployeeID: "e-2", Descriptor: descriptor(0), Status: entity.ProfileActive, CapturedAt: now}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		got, err := profiles.Get(ctx, "e-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("usuarios", func(t *testing.T) {
		users := postgres.NewUserRepository(pool)
		u := &entity.User{ID: "u-1", CompanyID: "c-1", Email: "rh@x.com", PasswordHash: "h", Name: "RH", Role: entity.RoleRH, Status: "active", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, users.Create(ctx, u))
		dup := *u
		dup.ID = "u-2"
		assert.ErrorIs(t, users.Create(ctx, &dup), domain.ErrEmailAlreadyExists)

		got, err := users.GetByEmail(ctx, "rh@x.com")
		require.NoError(t, err)
		assert.Equal(t, "u-1", got.ID)
	})
}
