package biometria

import "math"

// MatchThreshold es la distancia euclidiana máxima (exclusiva) para considerar dos rostros
// la misma persona en el espacio de descriptores de 128 dimensiones.
const MatchThreshold = 0.6

// Match es el resultado de comparar el descriptor de referencia contra una muestra.
type Match struct {
	Verified   bool    `json:"verified"`
	Confidence int     `json:"confidence"` // 0..100
	Distance   float64 `json:"distance"`
}

// Compare calcula la decisión verificado/no verificado y la confianza.
//
//	verified   = d < MatchThreshold
//	confidence = round(clamp((1 - d) * 100, 0, 100))
//
// Una muestra con longitud distinta o componentes no finitos es ErrInvalidDescriptor.
func Compare(profile, sample Descriptor) (Match, error) {
	if err := sample.Validate(); err != nil {
		return Match{}, err
	}
	d, err := EuclideanDistance(profile, sample)
	if err != nil {
		return Match{}, err
	}
	return Match{
		Verified:   d < MatchThreshold,
		Confidence: ConfidenceFromDistance(d),
		Distance:   d,
	}, nil
}

// ConfidenceFromDistance convierte la distancia en un porcentaje entero 0..100.
// Una distancia NaN vale 0.
func ConfidenceFromDistance(d float64) int {
	if math.IsNaN(d) {
		return 0
	}
	c := (1 - d) * 100
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	return int(math.Round(c))
}
