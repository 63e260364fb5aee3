package repository

import (
	"context"

	"github.com/jhoicas/biometria-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para operadores (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail busca en cualquier empresa; alias semántico para auth.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailAndCompany(ctx context.Context, email, companyID string) (*entity.User, error)
}
