package enrollment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
	"github.com/jhoicas/biometria-api/internal/observability"
)

// State es el estado de una sesión de registro remoto.
type State string

const (
	StateLoading    State = "loading"
	StateInvalid    State = "invalid"
	StateExpired    State = "expired"
	StateUsed       State = "used"
	StateReady      State = "ready"
	StateCapturing  State = "capturing"
	StateConfirming State = "confirming"
	StateSaving     State = "saving"
	StateSuccess    State = "success"
)

// IsTerminal indica si el estado ya no admite transiciones.
func (s State) IsTerminal() bool {
	switch s {
	case StateInvalid, StateExpired, StateUsed, StateSuccess:
		return true
	}
	return false
}

// Mensajes para el usuario por estado.
const (
	msgInvalid       = "Enlace inválido. Solicite un nuevo enlace a Recursos Humanos."
	msgExpired       = "El enlace expiró. Solicite un nuevo enlace a Recursos Humanos."
	msgUsed          = "Este enlace ya fue utilizado. Su biometría ya está registrada."
	msgReady         = "Presione iniciar para activar la cámara."
	msgCameraError   = "No fue posible acceder a la cámara. Verifique los permisos e intente de nuevo."
	msgCapturing     = "Ubique su rostro frente a la cámara."
	msgConfirming    = "Revise la captura y confirme o repita."
	msgSaving        = "Guardando biometría..."
	msgSaveError     = "No fue posible guardar la biometría. Intente capturar de nuevo."
	msgSuccess       = "Biometría registrada con éxito."
	msgValidateError = "No fue posible validar el enlace. Intente de nuevo."
)

// View es la foto del estado expuesta a la interfaz.
type View struct {
	State        State  `json:"state"`
	Message      string `json:"message"`
	EmployeeName string `json:"employee_name,omitempty"`
}

// SessionDeps son los colaboradores de una sesión.
type SessionDeps struct {
	Credentials *CredentialService
	Tx          TxRunner
	Camera      ports.Camera
	Extractor   ports.DescriptorExtractor
	Archive     ports.CaptureArchive
	Events      ports.EventPublisher
	Listener    Listener
	Loop        LoopConfig
	Log         zerolog.Logger
}

// Session conduce el registro remoto de un empleado desde la validación del enlace hasta
// la persistencia del perfil. Las operaciones se serializan; la cámara solo está adquirida
// en StateCapturing.
type Session struct {
	deps       SessionDeps
	employeeID string
	token      string
	log        zerolog.Logger

	mu           sync.Mutex
	state        State
	message      string
	employeeName string
	stream       ports.Stream
	loop         *DetectionLoop
	preview      ports.Frame
	descriptor   biometria.Descriptor
}

// NewSession crea la sesión en StateLoading.
func NewSession(employeeID, token string, deps SessionDeps) *Session {
	if deps.Listener == nil {
		deps.Listener = NopListener{}
	}
	if deps.Archive == nil {
		deps.Archive = ports.NoopArchive{}
	}
	if deps.Events == nil {
		deps.Events = ports.NoopPublisher{}
	}
	return &Session{
		deps:       deps,
		employeeID: employeeID,
		token:      token,
		log:        deps.Log.With().Str("component", "enrollment_session").Str("employee_id", employeeID).Logger(),
		state:      StateLoading,
	}
}

// View devuelve el estado actual.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{State: s.state, Message: s.message, EmployeeName: s.employeeName}
}

// Preview devuelve la imagen capturada mientras la sesión está en StateConfirming.
func (s *Session) Preview() (ports.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConfirming {
		return ports.Frame{}, false
	}
	return s.preview, true
}

func (s *Session) setLocked(state State, message string) {
	s.state = state
	s.message = message
	if state.IsTerminal() {
		observability.EnrollmentSessions.WithLabelValues(string(state)).Inc()
	}
	s.deps.Listener.StateChanged(s.viewLocked())
}

func (s *Session) require(state State) error {
	if s.state != state {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransition, s.state)
	}
	return nil
}

// Open valida el enlace. Solo desde StateLoading. Un error de lectura deja la sesión en
// StateLoading para poder reintentar.
func (s *Session) Open(ctx context.Context) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateLoading); err != nil {
		return s.viewLocked(), err
	}
	res, err := s.deps.Credentials.Validate(ctx, s.employeeID, s.token)
	if err != nil {
		s.message = msgValidateError
		s.log.Error().Err(err).Msg("validar enlace")
		return s.viewLocked(), err
	}
	s.employeeName = res.EmployeeName
	switch res.Status {
	case StatusValid:
		s.setLocked(StateReady, msgReady)
	case StatusExpired:
		s.setLocked(StateExpired, msgExpired)
	case StatusUsed:
		s.setLocked(StateUsed, msgUsed)
	default:
		s.setLocked(StateInvalid, msgInvalid)
	}
	return s.viewLocked(), res.Err()
}

// Start adquiere la cámara y arranca el ciclo de detección. Si la cámara falla la sesión
// permanece en StateReady con el mensaje de error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateReady); err != nil {
		return err
	}
	if err := s.beginCaptureLocked(ctx); err != nil {
		s.setLocked(StateReady, msgCameraError)
		return err
	}
	s.setLocked(StateCapturing, msgCapturing)
	return nil
}

// Capture toma el descriptor definitivo. Solo se acepta cuando el último snapshot
// publicado indica rostro centrado; de lo contrario devuelve domain.ErrNotCentered sin
// cambiar de estado.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateCapturing); err != nil {
		return err
	}
	last, ok := s.loop.Last()
	if !ok || !last.Centered {
		return domain.ErrNotCentered
	}
	frame, ok := s.stream.Frame()
	if !ok || frame.IsEmpty() {
		return domain.ErrNoFaceDetected
	}

	s.loop.Stop()
	s.loop = nil
	ext, err := s.deps.Extractor.Extract(ctx, frame)
	if err == nil && (!ext.Detected || len(ext.Descriptor) == 0) {
		err = domain.ErrNoFaceDetected
	}
	if err == nil {
		err = ext.Descriptor.Validate()
	}
	if err != nil {
		s.startLoopLocked(ctx)
		return err
	}

	s.releaseCameraLocked()
	s.preview = ports.Frame{
		Image:       append([]byte(nil), frame.Image...),
		Width:       frame.Width,
		Height:      frame.Height,
		ContentType: frame.ContentType,
	}
	s.descriptor = ext.Descriptor.Clone()
	s.setLocked(StateConfirming, msgConfirming)
	return nil
}

// Retry descarta la captura y vuelve a StateCapturing readquiriendo la cámara.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateConfirming); err != nil {
		return err
	}
	s.clearCaptureLocked()
	if err := s.beginCaptureLocked(ctx); err != nil {
		s.setLocked(StateReady, msgCameraError)
		return err
	}
	s.setLocked(StateCapturing, msgCapturing)
	return nil
}

// Confirm persiste el perfil activo y consume la credencial en una transacción, previa
// relectura de la credencial: si el enlace fue reemitido, venció o ya se usó, la sesión
// termina en StateInvalid, StateExpired o StateUsed sin escribir nada. Ante falla de
// escritura vuelve a StateCapturing (o StateReady si la cámara no puede readquirirse) y
// devuelve un error que envuelve domain.ErrPersistence.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.require(StateConfirming); err != nil {
		return err
	}
	s.setLocked(StateSaving, msgSaving)

	now := s.deps.Credentials.Now().UTC()
	profile := &entity.BiometricProfile{
		EmployeeID: s.employeeID,
		Descriptor: s.descriptor.Clone(),
		Status:     entity.ProfileActive,
		CapturedAt: now,
		UpdatedAt:  now,
	}
	err := s.deps.Tx.RunEnrollment(ctx, func(profiles repository.ProfileRepository, creds repository.CredentialRepository) error {
		cred, err := creds.GetForUpdate(ctx, s.employeeID)
		if err != nil {
			return fmt.Errorf("%w: releer credencial: %w", domain.ErrPersistence, err)
		}
		current, err := profiles.GetActive(ctx, s.employeeID)
		if err != nil {
			return fmt.Errorf("%w: releer perfil: %w", domain.ErrPersistence, err)
		}
		if err := s.deps.Credentials.Authorize(cred, s.token, current.IsActive()); err != nil {
			return err
		}
		if err := profiles.Upsert(ctx, profile); err != nil {
			return fmt.Errorf("guardar perfil: %w", err)
		}
		if cred == nil {
			return nil
		}
		if err := creds.Consume(ctx, s.employeeID, s.token, now); err != nil {
			return fmt.Errorf("consumir credencial: %w", err)
		}
		return nil
	})
	if state, msg, ok := linkState(err); ok {
		s.log.Warn().Err(err).Msg("enlace dejó de ser válido antes de guardar")
		s.clearCaptureLocked()
		s.setLocked(state, msg)
		return err
	}
	if err != nil {
		s.log.Error().Err(err).Msg("persistir biometría")
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		s.clearCaptureLocked()
		if camErr := s.beginCaptureLocked(ctx); camErr != nil {
			s.setLocked(StateReady, msgSaveError)
			return err
		}
		s.setLocked(StateCapturing, msgSaveError)
		return err
	}

	preview := s.preview
	s.clearCaptureLocked()
	s.setLocked(StateSuccess, msgSuccess)
	s.log.Info().Msg("biometría registrada")
	s.afterSuccess(ctx, preview, now)
	return nil
}

// linkState traduce un error de enlace al estado terminal de la sesión.
func linkState(err error) (State, string, bool) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return StateExpired, msgExpired, true
	case errors.Is(err, domain.ErrTokenUsed):
		return StateUsed, msgUsed, true
	case errors.Is(err, domain.ErrTokenInvalid):
		return StateInvalid, msgInvalid, true
	}
	return "", "", false
}

// afterSuccess archiva la vista previa y publica el evento. Sus fallas no revierten el registro.
func (s *Session) afterSuccess(ctx context.Context, preview ports.Frame, at time.Time) {
	key, err := s.deps.Archive.Store(ctx, s.employeeID, preview)
	if err != nil {
		s.log.Warn().Err(err).Msg("archivar captura")
	}
	ev := ports.EnrollmentCompleted{
		EventID:    uuid.New().String(),
		EmployeeID: s.employeeID,
		ArchiveKey: key,
		OccurredAt: at,
	}
	if err := s.deps.Events.Publish(ctx, ports.SubjectEnrollmentCompleted, ev); err != nil {
		s.log.Warn().Err(err).Msg("publicar evento de registro")
	}
}

// Stop detiene el ciclo y libera la cámara de forma sincrónica. Desde StateCapturing la
// sesión vuelve a StateReady; en los demás estados no cambia.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	capturing := s.state == StateCapturing
	s.teardownLocked()
	if capturing {
		s.setLocked(StateReady, msgReady)
	}
}

func (s *Session) beginCaptureLocked(ctx context.Context) error {
	stream, err := s.deps.Camera.Acquire(ctx, ports.DefaultConstraints)
	if err != nil {
		if !errors.Is(err, domain.ErrAcquisition) {
			err = fmt.Errorf("%w: %w", domain.ErrAcquisition, err)
		}
		s.log.Warn().Err(err).Msg("adquirir cámara")
		return err
	}
	observability.ActiveCameras.Inc()
	s.stream = stream
	s.startLoopLocked(ctx)
	return nil
}

func (s *Session) startLoopLocked(ctx context.Context) {
	s.loop = StartDetectionLoop(
		context.WithoutCancel(ctx),
		s.deps.Loop,
		s.deps.Extractor,
		s.stream.Frame,
		s.deps.Listener.Detection,
		s.log,
	)
}

func (s *Session) releaseCameraLocked() {
	if s.stream != nil {
		s.stream.Release()
		s.stream = nil
		observability.ActiveCameras.Dec()
	}
}

func (s *Session) teardownLocked() {
	if s.loop != nil {
		s.loop.Stop()
		s.loop = nil
	}
	s.releaseCameraLocked()
}

func (s *Session) clearCaptureLocked() {
	s.preview = ports.Frame{}
	s.descriptor = nil
}
