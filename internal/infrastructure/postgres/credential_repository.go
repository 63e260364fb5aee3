package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
)

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// CredentialRepo implementación de CredentialRepository sobre PostgreSQL (usable con pool o tx).
type CredentialRepo struct {
	q Querier
}

// NewCredentialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCredentialRepository(q Querier) *CredentialRepo {
	return &CredentialRepo{q: q}
}

const credentialColumns = `employee_id, token, issued_at, expires_at, state, consumed_at`

// Get devuelve la credencial solo si el token coincide.
func (r *CredentialRepo) Get(ctx context.Context, employeeID, token string) (*entity.EnrollmentCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM biometric_credentials WHERE employee_id = $1 AND token = $2`
	return r.scanOne(ctx, "get credential", query, employeeID, token)
}

// GetByEmployee devuelve la credencial vigente del empleado.
func (r *CredentialRepo) GetByEmployee(ctx context.Context, employeeID string) (*entity.EnrollmentCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM biometric_credentials WHERE employee_id = $1`
	return r.scanOne(ctx, "get credential by employee", query, employeeID)
}

// GetForUpdate lee la credencial con SELECT ... FOR UPDATE; solo tiene efecto dentro de una tx.
func (r *CredentialRepo) GetForUpdate(ctx context.Context, employeeID string) (*entity.EnrollmentCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM biometric_credentials WHERE employee_id = $1 FOR UPDATE`
	return r.scanOne(ctx, "lock credential", query, employeeID)
}

func (r *CredentialRepo) scanOne(ctx context.Context, op, query string, args ...any) (*entity.EnrollmentCredential, error) {
	var c entity.EnrollmentCredential
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&c.EmployeeID, &c.Token, &c.IssuedAt, &c.ExpiresAt, &c.State, &c.ConsumedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// Upsert sobrescribe la credencial del empleado (reemitir invalida la anterior).
func (r *CredentialRepo) Upsert(ctx context.Context, c *entity.EnrollmentCredential) error {
	query := `
		INSERT INTO biometric_credentials (employee_id, token, issued_at, expires_at, state, consumed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id) DO UPDATE SET
			token = EXCLUDED.token,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at,
			state = EXCLUDED.state,
			consumed_at = EXCLUDED.consumed_at`
	_, err := r.q.Exec(ctx, query, c.EmployeeID, c.Token, c.IssuedAt, c.ExpiresAt, c.State, c.ConsumedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("upsert credential: token duplicado: %w", err)
		}
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

// Consume marca la credencial como consumida. Una ya consumida no se modifica.
func (r *CredentialRepo) Consume(ctx context.Context, employeeID, token string, at time.Time) error {
	query := `
		UPDATE biometric_credentials SET state = $3, consumed_at = $4
		WHERE employee_id = $1 AND token = $2 AND state <> $3`
	if _, err := r.q.Exec(ctx, query, employeeID, token, entity.CredentialConsumed, at); err != nil {
		return fmt.Errorf("consume credential: %w", err)
	}
	return nil
}
