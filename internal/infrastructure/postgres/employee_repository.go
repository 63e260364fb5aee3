package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

// EmployeeRepo lee el registro de empleados y normaliza el estado biométrico.
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// GetByID devuelve el empleado; el perfil se une como máximo una fila (1:1) y se reduce
// a un BiometricStatus.
func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	query := `
		SELECT e.id, e.name, e.company_id, COALESCE(bp.status, '')
		FROM employees e
		LEFT JOIN biometric_profiles bp ON bp.employee_id = e.id
		WHERE e.id = $1`
	var e entity.Employee
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.CompanyID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	e.BiometricStatus = entity.BiometricStatusFrom(status)
	return &e, nil
}

// Upsert registra o actualiza un empleado (uso administrativo y pruebas).
func (r *EmployeeRepo) Upsert(ctx context.Context, e *entity.Employee) error {
	query := `
		INSERT INTO employees (id, company_id, name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET company_id = EXCLUDED.company_id, name = EXCLUDED.name`
	if _, err := r.q.Exec(ctx, query, e.ID, e.CompanyID, e.Name); err != nil {
		return fmt.Errorf("upsert employee: %w", err)
	}
	return nil
}
