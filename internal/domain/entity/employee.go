package entity

// BiometricStatus es el estado biométrico normalizado del empleado. El registro externo
// puede devolver el perfil como objeto o como lista; se normaliza en el repositorio y el
// núcleo nunca ramifica sobre esa forma.
type BiometricStatus string

const (
	BiometricNone     BiometricStatus = "none"
	BiometricInactive BiometricStatus = "inactive"
	BiometricActive   BiometricStatus = "active"
)

// BiometricStatusFrom normaliza el estado de un perfil (vacío = sin perfil).
func BiometricStatusFrom(profileStatus string) BiometricStatus {
	switch profileStatus {
	case ProfileActive:
		return BiometricActive
	case ProfileInactive:
		return BiometricInactive
	default:
		return BiometricNone
	}
}

// Employee es la vista de solo lectura del registro de empleados (propiedad externa).
type Employee struct {
	ID              string
	Name            string
	CompanyID       string
	BiometricStatus BiometricStatus
}
