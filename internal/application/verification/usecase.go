package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
	"github.com/jhoicas/biometria-api/internal/observability"
)

// UseCase verifica 1:1 una muestra contra el perfil activo del empleado.
type UseCase struct {
	profiles  repository.ProfileRepository
	extractor ports.DescriptorExtractor
	events    ports.EventPublisher
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso. events puede ser nil.
func NewUseCase(profiles repository.ProfileRepository, extractor ports.DescriptorExtractor, events ports.EventPublisher, log zerolog.Logger) *UseCase {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	return &UseCase{
		profiles:  profiles,
		extractor: extractor,
		events:    events,
		log:       log.With().Str("component", "verification").Logger(),
	}
}

// Verify compara sample con el descriptor almacenado. Nunca modifica el perfil.
func (uc *UseCase) Verify(ctx context.Context, employeeID string, sample biometria.Descriptor) (biometria.Match, error) {
	if len(sample) == 0 {
		return biometria.Match{}, domain.ErrNoSample
	}
	if err := sample.Validate(); err != nil {
		return biometria.Match{}, err
	}
	profile, err := uc.profiles.GetActive(ctx, employeeID)
	if err != nil {
		return biometria.Match{}, fmt.Errorf("buscar perfil: %w", err)
	}
	if profile == nil {
		observability.Verifications.WithLabelValues("no_profile").Inc()
		return biometria.Match{}, domain.ErrProfileNotFound
	}
	match, err := biometria.Compare(profile.Descriptor, sample)
	if err != nil {
		return biometria.Match{}, err
	}

	result := "rejected"
	if match.Verified {
		result = "verified"
	}
	observability.Verifications.WithLabelValues(result).Inc()
	uc.log.Info().Str("employee_id", employeeID).Bool("verified", match.Verified).
		Int("confidence", match.Confidence).Msg("verificación biométrica")

	ev := ports.VerificationPerformed{
		EventID:    uuid.New().String(),
		EmployeeID: employeeID,
		Verified:   match.Verified,
		Confidence: match.Confidence,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.events.Publish(ctx, ports.SubjectVerification, ev); err != nil {
		uc.log.Warn().Err(err).Msg("publicar evento de verificación")
	}
	return match, nil
}

// VerifyFrame extrae el descriptor del frame y luego verifica. Un frame sin rostro es
// una muestra ausente.
func (uc *UseCase) VerifyFrame(ctx context.Context, employeeID string, frame ports.Frame) (biometria.Match, error) {
	if frame.IsEmpty() {
		return biometria.Match{}, domain.ErrNoSample
	}
	start := time.Now()
	ext, err := uc.extractor.Extract(ctx, frame)
	observability.ExtractionDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	if err != nil {
		return biometria.Match{}, err
	}
	if !ext.Detected || len(ext.Descriptor) == 0 {
		return biometria.Match{}, fmt.Errorf("%w: %w", domain.ErrNoSample, domain.ErrNoFaceDetected)
	}
	return uc.Verify(ctx, employeeID, ext.Descriptor)
}
