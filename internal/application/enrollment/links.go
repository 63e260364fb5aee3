package enrollment

import (
	"context"
	"fmt"

	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/domain"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
)

// LinkUseCase expone la emisión y la consulta de enlaces a la capa HTTP y a la CLI.
type LinkUseCase struct {
	creds     *CredentialService
	employees repository.EmployeeRepository
	sheets    ports.LinkSheetGenerator
}

// NewLinkUseCase construye el caso de uso. sheets puede ser nil si no se generan PDFs.
func NewLinkUseCase(creds *CredentialService, employees repository.EmployeeRepository, sheets ports.LinkSheetGenerator) *LinkUseCase {
	return &LinkUseCase{creds: creds, employees: employees, sheets: sheets}
}

// Issue emite un enlace nuevo y devuelve la URL lista para compartir.
func (uc *LinkUseCase) Issue(ctx context.Context, employeeID string) (*dto.EnrollmentLinkResponse, error) {
	cred, err := uc.creds.Issue(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return &dto.EnrollmentLinkResponse{
		EmployeeID: cred.EmployeeID,
		Token:      cred.Token,
		URL:        uc.creds.LinkURL(cred.EmployeeID, cred.Token),
		ExpiresAt:  cred.ExpiresAt,
	}, nil
}

// IssueSheet emite un enlace y lo devuelve como hoja PDF con código QR.
func (uc *LinkUseCase) IssueSheet(ctx context.Context, employeeID string) ([]byte, *dto.EnrollmentLinkResponse, error) {
	if uc.sheets == nil {
		return nil, nil, fmt.Errorf("generador de hojas no configurado")
	}
	link, err := uc.Issue(ctx, employeeID)
	if err != nil {
		return nil, nil, err
	}
	emp, err := uc.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, nil, fmt.Errorf("buscar empleado: %w", err)
	}
	if emp == nil {
		return nil, nil, domain.ErrEmployeeNotFound
	}
	pdf, err := uc.sheets.GenerateLinkSheet(ctx, ports.LinkSheet{
		EmployeeName: GreetingName(emp.Name),
		URL:          link.URL,
		ExpiresAt:    link.ExpiresAt,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("generar hoja del enlace: %w", err)
	}
	return pdf, link, nil
}

// Check valida un enlace sin abrir sesión; lo usa la página pública antes de pedir la cámara.
func (uc *LinkUseCase) Check(ctx context.Context, employeeID, token string) (*dto.LinkValidationResponse, error) {
	res, err := uc.creds.Validate(ctx, employeeID, token)
	if err != nil {
		return nil, err
	}
	return &dto.LinkValidationResponse{
		Status:       string(res.Status),
		Message:      statusMessage(res.Status),
		EmployeeName: res.EmployeeName,
	}, nil
}

func statusMessage(s ValidationStatus) string {
	switch s {
	case StatusValid:
		return msgReady
	case StatusExpired:
		return msgExpired
	case StatusUsed:
		return msgUsed
	default:
		return msgInvalid
	}
}
