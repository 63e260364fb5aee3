package biometria

// Mensajes de estado publicados en cada tick de detección, en orden de precedencia.
const (
	MessageFaceNotDetected = "face not detected"
	MessageCenterFace      = "center your face"
	MessageHoldStill       = "hold, looks good"
)

// StatusMessage elige el mensaje de retroalimentación para la interfaz.
func StatusMessage(detected, centered bool) string {
	switch {
	case !detected:
		return MessageFaceNotDetected
	case !centered:
		return MessageCenterFace
	default:
		return MessageHoldStill
	}
}
