package enrollment

import (
	"context"

	"github.com/jhoicas/biometria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el perfil activo y el consumo de la credencial se confirmen juntos.
type TxRunner interface {
	RunEnrollment(ctx context.Context, fn func(
		profiles repository.ProfileRepository,
		creds repository.CredentialRepository,
	) error) error
}

// Listener recibe los cambios de la sesión para la capa de presentación.
// Los métodos no deben invocar de vuelta a la sesión.
type Listener interface {
	StateChanged(view View)
	Detection(snap Snapshot)
}

// NopListener descarta las notificaciones.
type NopListener struct{}

func (NopListener) StateChanged(View)  {}
func (NopListener) Detection(Snapshot) {}
