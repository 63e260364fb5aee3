package entity

import "time"

// Estados de la credencial de enrolamiento.
const (
	CredentialNotIssued = "not_issued"
	CredentialIssued    = "issued"
	CredentialConsumed  = "consumed"
)

// EnrollmentCredential es el token de un solo uso que autoriza a un empleado a registrar
// su perfil biométrico dentro de la ventana de validez. Una fila por empleado: reemitir
// sobrescribe la anterior.
type EnrollmentCredential struct {
	EmployeeID string
	Token      string
	IssuedAt   time.Time
	ExpiresAt  time.Time // siempre posterior a IssuedAt
	State      string    // issued, consumed
	ConsumedAt *time.Time
}

// IsExpired indica si la credencial venció respecto a now.
func (c *EnrollmentCredential) IsExpired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// IsConsumed indica si la credencial ya fue utilizada para persistir un descriptor.
func (c *EnrollmentCredential) IsConsumed() bool {
	return c.State == CredentialConsumed
}
