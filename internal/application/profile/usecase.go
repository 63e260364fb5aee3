package profile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
)

// UseCase administra el estado de los perfiles biométricos.
type UseCase struct {
	profiles  repository.ProfileRepository
	employees repository.EmployeeRepository
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(profiles repository.ProfileRepository, employees repository.EmployeeRepository, log zerolog.Logger) *UseCase {
	return &UseCase{profiles: profiles, employees: employees, log: log.With().Str("component", "profile").Logger()}
}

// Get devuelve el estado del perfil del empleado en cualquier estado.
func (uc *UseCase) Get(ctx context.Context, employeeID string) (*dto.ProfileResponse, error) {
	p, err := uc.profiles.Get(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("buscar perfil: %w", err)
	}
	if p == nil {
		return nil, domain.ErrProfileNotFound
	}
	return &dto.ProfileResponse{
		EmployeeID: p.EmployeeID,
		Status:     p.Status,
		CapturedAt: p.CapturedAt,
		UpdatedAt:  p.UpdatedAt,
	}, nil
}

// SetStatus activa o desactiva el perfil. La reactivación no exige nueva captura.
func (uc *UseCase) SetStatus(ctx context.Context, employeeID, status string) error {
	if status != entity.ProfileActive && status != entity.ProfileInactive {
		return domain.ErrInvalidInput
	}
	emp, err := uc.employees.GetByID(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("buscar empleado: %w", err)
	}
	if emp == nil {
		return domain.ErrEmployeeNotFound
	}
	if err := uc.profiles.SetStatus(ctx, employeeID, status); err != nil {
		return err
	}
	uc.log.Info().Str("employee_id", employeeID).Str("status", status).Msg("estado de perfil actualizado")
	return nil
}
