package ports

import "context"

// Constraints son las preferencias al adquirir la cámara.
type Constraints struct {
	Facing string // "user" (frontal) o "environment"
	Width  int
	Height int
}

// DefaultConstraints son las usadas por la sesión de registro remoto.
var DefaultConstraints = Constraints{Facing: "user", Width: 640, Height: 480}

// Stream es el manejador de una cámara adquirida.
type Stream interface {
	// Frame devuelve el frame más reciente; false si aún no hay imagen.
	Frame() (Frame, bool)
	// Release libera la cámara. Debe ser idempotente.
	Release()
}

// Camera es la capacidad de adquirir la cámara del dispositivo.
// Acquire devuelve un error que envuelve domain.ErrAcquisition ante permisos o hardware.
type Camera interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}
