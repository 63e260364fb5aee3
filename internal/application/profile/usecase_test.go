package profile_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biometria-api/internal/application/profile"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/infrastructure/memory"
)

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddEmployee(entity.Employee{ID: "e-1", Name: "Ana"})
	store.AddEmployee(entity.Employee{ID: "e-2", Name: "Luis"})
	require.NoError(t, store.Profiles().Upsert(ctx, &entity.BiometricProfile{EmployeeID: "e-1", Status: entity.ProfileActive}))
	uc := profile.NewUseCase(store.Profiles(), store.Employees(), zerolog.Nop())

	require.NoError(t, uc.SetStatus(ctx, "e-1", entity.ProfileInactive))
	p, err := uc.Get(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ProfileInactive, p.Status)

	emp, err := store.Employees().GetByID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, entity.BiometricInactive, emp.BiometricStatus)

	assert.ErrorIs(t, uc.SetStatus(ctx, "e-2", entity.ProfileActive), domain.ErrProfileNotFound)
	assert.ErrorIs(t, uc.SetStatus(ctx, "e-9", entity.ProfileActive), domain.ErrEmployeeNotFound)
	assert.ErrorIs(t, uc.SetStatus(ctx, "e-1", "borrado"), domain.ErrInvalidInput)

	_, err = uc.Get(ctx, "e-2")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
