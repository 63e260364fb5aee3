package biometria_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/biometria-api/internal/domain/biometria"
)

func TestIsCentered(t *testing.T) {
	tests := []struct {
		name     string
		box      biometria.Box
		w, h     int
		expected bool
	}{
		{
			name:     "rostro en el centro exacto",
			box:      biometria.Box{X: 270, Y: 190, Width: 100, Height: 100},
			w:        640,
			h:        480,
			expected: true,
		},
		{
			name:     "rostro pegado a la izquierda",
			box:      biometria.Box{X: 0, Y: 190, Width: 100, Height: 100},
			w:        640,
			h:        480,
			expected: false,
		},
		{
			name:     "rostro muy abajo",
			box:      biometria.Box{X: 270, Y: 400, Width: 100, Height: 80},
			w:        640,
			h:        480,
			expected: false,
		},
		{
			// centro x = 0.3 * 1000 = 300 exacto: la desigualdad es estricta
			name:     "borde izquierdo exacto no cuenta",
			box:      biometria.Box{X: 250, Y: 450, Width: 100, Height: 100},
			w:        1000,
			h:        1000,
			expected: false,
		},
		{
			name:     "justo dentro del borde izquierdo",
			box:      biometria.Box{X: 250.5, Y: 450, Width: 100, Height: 100},
			w:        1000,
			h:        1000,
			expected: true,
		},
		{
			// centro x = 700 exacto
			name:     "borde derecho exacto no cuenta",
			box:      biometria.Box{X: 650, Y: 450, Width: 100, Height: 100},
			w:        1000,
			h:        1000,
			expected: false,
		},
		{
			// centro y = 200 exacto
			name:     "borde superior exacto no cuenta",
			box:      biometria.Box{X: 450, Y: 150, Width: 100, Height: 100},
			w:        1000,
			h:        1000,
			expected: false,
		},
		{
			// centro y = 800 exacto
			name:     "borde inferior exacto no cuenta",
			box:      biometria.Box{X: 450, Y: 750, Width: 100, Height: 100},
			w:        1000,
			h:        1000,
			expected: false,
		},
		{
			name:     "justo dentro del borde inferior",
			box:      biometria.Box{X: 450, Y: 749, Width: 100, Height: 100},
			w:        1000,
			h:        1000,
			expected: true,
		},
		{
			name:     "frame sin dimensiones",
			box:      biometria.Box{X: 0, Y: 0, Width: 0, Height: 0},
			w:        0,
			h:        0,
			expected: false,
		},
		{
			name:     "alto negativo",
			box:      biometria.Box{X: 270, Y: 190, Width: 100, Height: 100},
			w:        640,
			h:        -480,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, biometria.IsCentered(tt.box, tt.w, tt.h))
		})
	}
}

func TestIsCentered_Determinista(t *testing.T) {
	boxes := []biometria.Box{
		{X: 10, Y: 10, Width: 50, Height: 50},
		{X: 300, Y: 200, Width: 40, Height: 60},
		{X: 599.9, Y: 0.1, Width: 1, Height: 479},
	}
	for _, b := range boxes {
		first := biometria.IsCentered(b, 640, 480)
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, biometria.IsCentered(b, 640, 480), "misma entrada, misma salida")
		}
	}
}

func TestStatusMessage_Precedencia(t *testing.T) {
	assert.Equal(t, biometria.MessageFaceNotDetected, biometria.StatusMessage(false, false))
	// sin rostro gana aunque llegue centered=true
	assert.Equal(t, biometria.MessageFaceNotDetected, biometria.StatusMessage(false, true))
	assert.Equal(t, biometria.MessageCenterFace, biometria.StatusMessage(true, false))
	assert.Equal(t, biometria.MessageHoldStill, biometria.StatusMessage(true, true))
}
