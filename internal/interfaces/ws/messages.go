package ws

import (
	"errors"

	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
)

// Acciones que envía el cliente.
const (
	ActionStart   = "start"
	ActionFrame   = "frame"
	ActionCapture = "capture"
	ActionRetry   = "retry"
	ActionConfirm = "confirm"
	ActionStop    = "stop"
)

// Tipos de mensaje que envía el servidor.
const (
	TypeState     = "state"
	TypeDetection = "detection"
	TypePreview   = "preview"
	TypeError     = "error"
)

// ClientMessage es cualquier mensaje del navegador. Image solo viaja con "frame";
// Error solo con "start" cuando getUserMedia falló.
type ClientMessage struct {
	Type   string `json:"type"`
	Image  string `json:"image,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StateMessage refleja la vista de la sesión.
type StateMessage struct {
	Type         string `json:"type"`
	State        string `json:"state"`
	Message      string `json:"message"`
	EmployeeName string `json:"employee_name,omitempty"`
}

// DetectionMessage es un tick del ciclo de detección.
type DetectionMessage struct {
	Type     string         `json:"type"`
	Detected bool           `json:"detected"`
	Centered bool           `json:"centered"`
	Message  string         `json:"message"`
	Box      *biometria.Box `json:"box,omitempty"`
}

// PreviewMessage lleva la captura a confirmar como data URL.
type PreviewMessage struct {
	Type  string `json:"type"`
	Image string `json:"image"`
}

// ErrorMessage informa el rechazo de una acción.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrNotCentered, "NOT_CENTERED"},
	{domain.ErrNoFaceDetected, "NO_FACE"},
	{domain.ErrInvalidTransition, "INVALID_ACTION"},
	{domain.ErrAcquisition, "CAMERA"},
	{domain.ErrPersistence, "PERSISTENCE"},
	{domain.ErrModelUnavailable, "MODEL_UNAVAILABLE"},
	{domain.ErrInvalidDescriptor, "INVALID_DESCRIPTOR"},
	{domain.ErrTokenExpired, "LINK_EXPIRED"},
	{domain.ErrTokenUsed, "LINK_USED"},
	{domain.ErrTokenInvalid, "LINK_INVALID"},
}

func errorMessage(err error) ErrorMessage {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return ErrorMessage{Type: TypeError, Code: m.code, Message: m.err.Error()}
		}
	}
	return ErrorMessage{Type: TypeError, Code: "INTERNAL", Message: "error interno"}
}
