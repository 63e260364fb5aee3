package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo implementación de ProfileRepository sobre PostgreSQL con pgvector.
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

// GetActive devuelve el perfil solo si está activo.
func (r *ProfileRepo) GetActive(ctx context.Context, employeeID string) (*entity.BiometricProfile, error) {
	query := `
		SELECT employee_id, descriptor, status, captured_at, updated_at
		FROM biometric_profiles WHERE employee_id = $1 AND status = $2`
	return r.scanOne(ctx, "get active profile", query, employeeID, entity.ProfileActive)
}

// Get devuelve el perfil en cualquier estado.
func (r *ProfileRepo) Get(ctx context.Context, employeeID string) (*entity.BiometricProfile, error) {
	query := `
		SELECT employee_id, descriptor, status, captured_at, updated_at
		FROM biometric_profiles WHERE employee_id = $1`
	return r.scanOne(ctx, "get profile", query, employeeID)
}

func (r *ProfileRepo) scanOne(ctx context.Context, op, query string, args ...any) (*entity.BiometricProfile, error) {
	var p entity.BiometricProfile
	var vec pgvector.Vector
	err := r.q.QueryRow(ctx, query, args...).Scan(&p.EmployeeID, &vec, &p.Status, &p.CapturedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Descriptor = biometria.Descriptor(vec.Slice())
	return &p, nil
}

// Upsert inserta o reemplaza el perfil en una sola sentencia; con escrituras concurrentes
// gana la última confirmada y nunca hay filas duplicadas.
func (r *ProfileRepo) Upsert(ctx context.Context, p *entity.BiometricProfile) error {
	if err := p.Descriptor.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO biometric_profiles (employee_id, descriptor, status, captured_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id) DO UPDATE SET
			descriptor = EXCLUDED.descriptor,
			status = EXCLUDED.status,
			captured_at = EXCLUDED.captured_at,
			updated_at = EXCLUDED.updated_at`
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	vec := pgvector.NewVector(p.Descriptor)
	if _, err := r.q.Exec(ctx, query, p.EmployeeID, vec, p.Status, p.CapturedAt, updated); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// SetStatus cambia el estado; domain.ErrProfileNotFound si no hay perfil.
func (r *ProfileRepo) SetStatus(ctx context.Context, employeeID, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE biometric_profiles SET status = $2, updated_at = NOW() WHERE employee_id = $1`,
		employeeID, status)
	if err != nil {
		return fmt.Errorf("set profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
