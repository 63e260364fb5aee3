package repository

import (
	"context"

	"github.com/jhoicas/biometria-api/internal/domain/entity"
)

// ProfileRepository define el puerto de persistencia para perfiles biométricos.
type ProfileRepository interface {
	// GetActive devuelve el perfil activo del empleado; nil, nil si no existe o está inactivo.
	GetActive(ctx context.Context, employeeID string) (*entity.BiometricProfile, error)
	// Get devuelve el perfil en cualquier estado.
	Get(ctx context.Context, employeeID string) (*entity.BiometricProfile, error)
	// Upsert inserta o reemplaza de forma atómica el perfil del empleado (última escritura gana).
	Upsert(ctx context.Context, profile *entity.BiometricProfile) error
	// SetStatus cambia el estado; domain.ErrProfileNotFound si el empleado no tiene perfil.
	SetStatus(ctx context.Context, employeeID, status string) error
}
