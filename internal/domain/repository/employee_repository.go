package repository

import (
	"context"

	"github.com/jhoicas/biometria-api/internal/domain/entity"
)

// EmployeeRepository es el acceso de solo lectura al registro externo de empleados.
type EmployeeRepository interface {
	// GetByID devuelve el empleado con su estado biométrico normalizado; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Employee, error)
}
