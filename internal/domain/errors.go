package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// Biometría: extracción y cámara.
	ErrModelUnavailable = errors.New("modelo de reconocimiento facial no disponible")
	ErrAcquisition      = errors.New("no fue posible acceder a la cámara")
	ErrNoFaceDetected   = errors.New("rostro no detectado")
	ErrNotCentered      = errors.New("rostro no centrado")

	// Credenciales de enrolamiento (terminales para la sesión, nunca se combinan).
	ErrTokenInvalid = errors.New("enlace de registro inválido")
	ErrTokenExpired = errors.New("enlace de registro expirado")
	ErrTokenUsed    = errors.New("enlace de registro ya utilizado")

	// Persistencia y verificación.
	ErrPersistence       = errors.New("falla al persistir datos biométricos")
	ErrProfileNotFound   = errors.New("perfil biométrico activo no encontrado")
	ErrNoSample          = errors.New("muestra biométrica ausente")
	ErrInvalidDescriptor = errors.New("descriptor facial inválido")
	ErrEmployeeNotFound  = errors.New("empleado no encontrado")

	// Máquina de estados de la sesión.
	ErrInvalidTransition = errors.New("acción no permitida en el estado actual de la sesión")
)
