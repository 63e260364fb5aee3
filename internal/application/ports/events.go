package ports

import (
	"context"
	"time"
)

// Subjects de eventos de dominio.
const (
	SubjectEnrollmentCompleted = "biometria.registro.completado"
	SubjectVerification        = "biometria.verificacion"
)

// EnrollmentCompleted se emite cuando un perfil queda activo tras un registro.
type EnrollmentCompleted struct {
	EventID    string    `json:"event_id"`
	EmployeeID string    `json:"employee_id"`
	ArchiveKey string    `json:"archive_key,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// VerificationPerformed se emite en cada verificación 1:1.
type VerificationPerformed struct {
	EventID    string    `json:"event_id"`
	EmployeeID string    `json:"employee_id"`
	Verified   bool      `json:"verified"`
	Confidence int       `json:"confidence"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publica eventos de dominio. Un fallo de publicación nunca revierte
// la operación que lo originó.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event any) error
}

// NoopPublisher descarta los eventos (sin broker configurado).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
