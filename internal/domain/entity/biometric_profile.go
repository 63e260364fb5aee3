package entity

import (
	"time"

	"github.com/jhoicas/biometria-api/internal/domain/biometria"
)

// Estados del perfil biométrico.
const (
	ProfileInactive = "inactive"
	ProfileActive   = "active"
)

// BiometricProfile es la referencia facial almacenada de un empleado (1:1 con el empleado).
type BiometricProfile struct {
	EmployeeID string
	Descriptor biometria.Descriptor
	Status     string // active, inactive
	CapturedAt time.Time
	UpdatedAt  time.Time
}

// IsActive indica si el perfil puede usarse para verificación.
func (p *BiometricProfile) IsActive() bool {
	return p != nil && p.Status == ProfileActive
}
