package dto

import "time"

// EnrollmentLinkResponse enlace de registro remoto emitido para un empleado.
type EnrollmentLinkResponse struct {
	EmployeeID string    `json:"employee_id"`
	Token      string    `json:"token"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// LinkValidationResponse resultado de abrir un enlace remoto.
type LinkValidationResponse struct {
	Status       string `json:"status"` // valid, invalid, expired, used
	Message      string `json:"message"`
	EmployeeName string `json:"employee_name,omitempty"`
}

// VerifyRequest verificación 1:1. Se envía el descriptor ya extraído o una imagen en base64.
type VerifyRequest struct {
	EmployeeID  string    `json:"employee_id" validate:"required"`
	Descriptor  []float32 `json:"descriptor,omitempty"`
	Image       string    `json:"image,omitempty"` // base64, con o sin prefijo data:
	ImageWidth  int       `json:"image_width,omitempty"`
	ImageHeight int       `json:"image_height,omitempty"`
}

// VerifyResponse decisión y confianza (0..100).
type VerifyResponse struct {
	EmployeeID string  `json:"employee_id"`
	Verified   bool    `json:"verified"`
	Confidence int     `json:"confidence"`
	Distance   float64 `json:"distance"`
}

// ProfileResponse estado del perfil biométrico (nunca expone el descriptor).
type ProfileResponse struct {
	EmployeeID string    `json:"employee_id"`
	Status     string    `json:"status"`
	CapturedAt time.Time `json:"captured_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpdateProfileStatusRequest cambio administrativo de estado.
type UpdateProfileStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}
