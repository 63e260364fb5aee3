// Package biometria contiene las reglas puras del núcleo biométrico: descriptor facial,
// evaluación de encuadre y comparación de descriptores. No depende de infraestructura.
package biometria

import (
	"fmt"
	"math"

	"github.com/jhoicas/biometria-api/internal/domain"
)

// DescriptorSize es la dimensión fija del descriptor producido por el modelo de extracción.
const DescriptorSize = 128

// Descriptor es el vector facial de longitud fija. Una vez almacenado no se modifica;
// la re-captura lo reemplaza completo.
type Descriptor []float32

// Validate verifica longitud y que todos los componentes sean finitos.
func (d Descriptor) Validate() error {
	if len(d) != DescriptorSize {
		return fmt.Errorf("%w: se esperaban %d dimensiones, llegaron %d", domain.ErrInvalidDescriptor, DescriptorSize, len(d))
	}
	for i, v := range d {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: componente %d no finito", domain.ErrInvalidDescriptor, i)
		}
	}
	return nil
}

// Clone devuelve una copia independiente (los snapshots nunca comparten el slice).
func (d Descriptor) Clone() Descriptor {
	if d == nil {
		return nil
	}
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// EuclideanDistance calcula la distancia euclidiana entre dos vectores de igual longitud.
func EuclideanDistance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("%w: longitudes %d y %d", domain.ErrInvalidDescriptor, len(a), len(b))
	}
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum), nil
}
