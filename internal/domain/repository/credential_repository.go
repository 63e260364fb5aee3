package repository

import (
	"context"
	"time"

	"github.com/jhoicas/biometria-api/internal/domain/entity"
)

// CredentialRepository define el puerto de persistencia para credenciales de enrolamiento.
// Una fila por empleado; Upsert sobrescribe la credencial previa.
type CredentialRepository interface {
	// Get devuelve la credencial del empleado solo si el token coincide; nil, nil si no hay fila.
	Get(ctx context.Context, employeeID, token string) (*entity.EnrollmentCredential, error)
	// GetByEmployee devuelve la credencial vigente del empleado, cualquiera sea su token.
	GetByEmployee(ctx context.Context, employeeID string) (*entity.EnrollmentCredential, error)
	// GetForUpdate es GetByEmployee bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, employeeID string) (*entity.EnrollmentCredential, error)
	Upsert(ctx context.Context, cred *entity.EnrollmentCredential) error
	// Consume marca la credencial como consumida. Idempotente: no modifica una ya consumida.
	Consume(ctx context.Context, employeeID, token string, at time.Time) error
}
