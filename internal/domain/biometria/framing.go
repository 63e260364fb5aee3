package biometria

// Fracciones de política de encuadre. Fijas, no configurables en tiempo de ejecución.
const (
	CenterMinXFraction = 0.3
	CenterMaxXFraction = 0.7
	CenterMinYFraction = 0.2
	CenterMaxYFraction = 0.8
)

// Box es el recuadro del rostro en píxeles del frame (origen arriba a la izquierda).
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center devuelve el punto central del recuadro.
func (b Box) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// IsCentered indica si el centro del rostro cae dentro de la zona aceptable del frame.
// Las desigualdades son estrictas; dimensiones no positivas nunca se consideran centradas.
func IsCentered(box Box, frameWidth, frameHeight int) bool {
	if frameWidth <= 0 || frameHeight <= 0 {
		return false
	}
	w, h := float64(frameWidth), float64(frameHeight)
	cx, cy := box.Center()
	return CenterMinXFraction*w < cx && cx < CenterMaxXFraction*w &&
		CenterMinYFraction*h < cy && cy < CenterMaxYFraction*h
}
