package enrollment

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
	"github.com/jhoicas/biometria-api/internal/observability"
)

// DefaultLinkTTL es la ventana de validez del enlace remoto.
const DefaultLinkTTL = 24 * time.Hour

const tokenBytes = 32

// ValidationStatus es el resultado de validar un enlace de registro.
type ValidationStatus string

const (
	StatusValid   ValidationStatus = "valid"
	StatusInvalid ValidationStatus = "invalid"
	StatusExpired ValidationStatus = "expired"
	StatusUsed    ValidationStatus = "used"
)

// ValidationResult acompaña el estado con el nombre del empleado para el saludo,
// que se informa siempre que el empleado exista.
type ValidationResult struct {
	Status       ValidationStatus
	EmployeeName string
}

// Err traduce el estado al error de dominio correspondiente; nil si es válido.
func (r ValidationResult) Err() error {
	switch r.Status {
	case StatusValid:
		return nil
	case StatusExpired:
		return domain.ErrTokenExpired
	case StatusUsed:
		return domain.ErrTokenUsed
	default:
		return domain.ErrTokenInvalid
	}
}

// CredentialConfig agrupa la política de enlaces.
type CredentialConfig struct {
	BaseURL string
	TTL     time.Duration
	// AllowUnissuedLinks acepta enlaces de empleados sin credencial emitida y sin perfil activo.
	AllowUnissuedLinks bool
}

// CredentialService emite, valida y consume credenciales de enrolamiento.
type CredentialService struct {
	creds     repository.CredentialRepository
	profiles  repository.ProfileRepository
	employees repository.EmployeeRepository
	cfg       CredentialConfig
	now       func() time.Time
	log       zerolog.Logger
}

// NewCredentialService construye el servicio con reloj de sistema.
func NewCredentialService(
	creds repository.CredentialRepository,
	profiles repository.ProfileRepository,
	employees repository.EmployeeRepository,
	cfg CredentialConfig,
	log zerolog.Logger,
) *CredentialService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultLinkTTL
	}
	return &CredentialService{
		creds:     creds,
		profiles:  profiles,
		employees: employees,
		cfg:       cfg,
		now:       time.Now,
		log:       log.With().Str("component", "credentials").Logger(),
	}
}

// WithClock reemplaza el reloj (tests y CLI).
func (s *CredentialService) WithClock(now func() time.Time) *CredentialService {
	s.now = now
	return s
}

// Issue genera un token nuevo para el empleado y sobrescribe cualquier credencial previa.
func (s *CredentialService) Issue(ctx context.Context, employeeID string) (*entity.EnrollmentCredential, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("buscar empleado: %w", err)
	}
	if emp == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generar token: %w", err)
	}
	now := s.now().UTC()
	cred := &entity.EnrollmentCredential{
		EmployeeID: employeeID,
		Token:      token,
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.TTL),
		State:      entity.CredentialIssued,
	}
	if err := s.creds.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("%w: emitir credencial: %w", domain.ErrPersistence, err)
	}
	observability.CredentialsIssued.Inc()
	s.log.Info().Str("employee_id", employeeID).Time("expires_at", cred.ExpiresAt).Msg("enlace de registro emitido")
	return cred, nil
}

// Validate decide si el enlace (empleado, token) habilita un registro.
func (s *CredentialService) Validate(ctx context.Context, employeeID, token string) (ValidationResult, error) {
	res, err := s.validate(ctx, employeeID, token)
	if err != nil {
		return res, err
	}
	observability.CredentialValidations.WithLabelValues(string(res.Status)).Inc()
	return res, nil
}

func (s *CredentialService) validate(ctx context.Context, employeeID, token string) (ValidationResult, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("buscar empleado: %w", err)
	}
	if emp == nil {
		return ValidationResult{Status: StatusInvalid}, nil
	}
	res := ValidationResult{EmployeeName: GreetingName(emp.Name)}

	cred, err := s.creds.GetByEmployee(ctx, employeeID)
	if err != nil {
		return res, fmt.Errorf("buscar credencial: %w", err)
	}
	profile, err := s.profiles.GetActive(ctx, employeeID)
	if err != nil {
		return res, fmt.Errorf("buscar perfil: %w", err)
	}
	res.Status = s.status(cred, token, profile.IsActive())
	return res, nil
}

// Authorize repite la decisión de Validate sobre la credencial y el perfil releídos dentro
// de la transacción de guardado. Devuelve el error de dominio del enlace o nil.
func (s *CredentialService) Authorize(cred *entity.EnrollmentCredential, token string, activeProfile bool) error {
	return ValidationResult{Status: s.status(cred, token, activeProfile)}.Err()
}

func (s *CredentialService) status(cred *entity.EnrollmentCredential, token string, active bool) ValidationStatus {
	switch {
	case cred == nil && active:
		return StatusUsed
	case cred == nil && s.cfg.AllowUnissuedLinks:
		return StatusValid
	case cred == nil:
		return StatusInvalid
	case !sameToken(cred.Token, token):
		return StatusInvalid
	case cred.IsExpired(s.now()):
		return StatusExpired
	case cred.IsConsumed() || active:
		return StatusUsed
	}
	return StatusValid
}

// Consume marca la credencial como usada. Llamarlo dos veces no es error.
func (s *CredentialService) Consume(ctx context.Context, employeeID, token string) error {
	if err := s.creds.Consume(ctx, employeeID, token, s.now().UTC()); err != nil {
		return fmt.Errorf("%w: consumir credencial: %w", domain.ErrPersistence, err)
	}
	return nil
}

// LinkURL arma el enlace remoto {baseUrl}/biometria-remota/{employeeId}?token={token}.
func (s *CredentialService) LinkURL(employeeID, token string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	return base + "/biometria-remota/" + url.PathEscape(employeeID) + "?token=" + url.QueryEscape(token)
}

// Now expone el reloj del servicio para quien necesite el mismo instante de referencia.
func (s *CredentialService) Now() time.Time { return s.now() }

// GreetingName normaliza el nombre del empleado para el saludo ("ANA maría" -> "Ana María").
func GreetingName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return cases.Title(language.Spanish).String(name)
}

func sameToken(stored, given string) bool {
	if given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
