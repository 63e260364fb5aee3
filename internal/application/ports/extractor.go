package ports

import (
	"context"

	"github.com/jhoicas/biometria-api/internal/domain/biometria"
)

// Frame es una muestra de imagen de la cámara (efímera, no se persiste).
type Frame struct {
	Image       []byte
	Width       int
	Height      int
	ContentType string // image/jpeg, image/png
}

// IsEmpty indica si el frame no trae imagen utilizable.
func (f Frame) IsEmpty() bool {
	return len(f.Image) == 0 || f.Width <= 0 || f.Height <= 0
}

// Extraction es el resultado de pasar un frame por el modelo facial.
// Sin rostro: Detected=false, Box y Descriptor nil.
type Extraction struct {
	Detected   bool
	Box        *biometria.Box
	Descriptor biometria.Descriptor
}

// DescriptorExtractor define el puerto de salida hacia el modelo de detección y descriptores.
// El modelo es una caja negra: frame de entrada, cero o un rostro con descriptor de salida.
// Las implementaciones deben ser idempotentes por frame (sin estado entre frames).
type DescriptorExtractor interface {
	Extract(ctx context.Context, frame Frame) (Extraction, error)
}
