package ports

import "context"

// CaptureArchive guarda la imagen de vista previa confirmada para auditoría.
// Devuelve la clave del objeto almacenado.
type CaptureArchive interface {
	Store(ctx context.Context, employeeID string, frame Frame) (string, error)
}

// NoopArchive no guarda nada.
type NoopArchive struct{}

func (NoopArchive) Store(context.Context, string, Frame) (string, error) { return "", nil }
