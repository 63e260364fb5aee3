package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	"github.com/jhoicas/biometria-api/internal/application/profile"
	"github.com/jhoicas/biometria-api/internal/application/verification"
	"github.com/jhoicas/biometria-api/internal/domain/biometria"
	"github.com/jhoicas/biometria-api/internal/interfaces/codec"
)

// BiometriaHandler expone enlaces de registro, verificación 1:1 y perfiles.
type BiometriaHandler struct {
	links   *enrollment.LinkUseCase
	verify  *verification.UseCase
	profile *profile.UseCase
}

// NewBiometriaHandler construye el handler.
func NewBiometriaHandler(links *enrollment.LinkUseCase, verify *verification.UseCase, profile *profile.UseCase) *BiometriaHandler {
	return &BiometriaHandler{links: links, verify: verify, profile: profile}
}

// IssueLink godoc
// @Summary      Emitir enlace de registro remoto
// @Description  Reemplaza cualquier enlace previo del empleado. Con formato=pdf devuelve la hoja imprimible con QR.
// @Tags         biometria
// @Produce      json,application/pdf
// @Security     BearerAuth
// @Param        employeeId  path   string  true   "ID del empleado"
// @Param        formato     query  string  false  "pdf"
// @Success      201  {object}  dto.EnrollmentLinkResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/biometria/empleados/{employeeId}/enlace [post]
func (h *BiometriaHandler) IssueLink(c *fiber.Ctx) error {
	employeeID := c.Params("employeeId")
	if employeeID == "" {
		return badRequest(c, "VALIDATION", "employeeId requerido")
	}
	if c.Query("formato") == "pdf" {
		pdf, _, err := h.links.IssueSheet(c.Context(), employeeID)
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="enlace-biometria-`+employeeID+`.pdf"`)
		return c.Status(fiber.StatusCreated).Send(pdf)
	}
	link, err := h.links.Issue(c.Context(), employeeID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

// CheckLink godoc
// @Summary      Validar enlace de registro remoto (público)
// @Tags         biometria
// @Produce      json
// @Param        employeeId  path   string  true  "ID del empleado"
// @Param        token       query  string  true  "token del enlace"
// @Success      200  {object}  dto.LinkValidationResponse
// @Failure      429  {object}  dto.ErrorResponse
// @Router       /api/public/biometria-remota/{employeeId} [get]
func (h *BiometriaHandler) CheckLink(c *fiber.Ctx) error {
	res, err := h.links.Check(c.Context(), c.Params("employeeId"), c.Query("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Verify godoc
// @Summary      Verificación facial 1:1
// @Description  Compara contra el perfil activo. Acepta descriptor de 128 dimensiones o imagen base64.
// @Tags         biometria
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.VerifyRequest  true  "employee_id y descriptor o imagen"
// @Success      200  {object}  dto.VerifyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/biometria/verificar [post]
func (h *BiometriaHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.EmployeeID == "" {
		return badRequest(c, "VALIDATION", "employee_id requerido")
	}

	var (
		m   biometria.Match
		err error
	)
	switch {
	case len(in.Descriptor) > 0:
		m, err = h.verify.Verify(c.Context(), in.EmployeeID, biometria.Descriptor(in.Descriptor))
	case in.Image != "":
		frame, derr := codec.DecodeFrame(in.Image, in.ImageWidth, in.ImageHeight)
		if derr != nil {
			return badRequest(c, "INVALID_IMAGE", "imagen base64 inválida")
		}
		m, err = h.verify.VerifyFrame(c.Context(), in.EmployeeID, frame)
	default:
		return badRequest(c, "NO_SAMPLE", "se requiere descriptor o imagen")
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.VerifyResponse{
		EmployeeID: in.EmployeeID,
		Verified:   m.Verified,
		Confidence: m.Confidence,
		Distance:   m.Distance,
	})
}

// GetProfile godoc
// @Summary      Estado del perfil biométrico
// @Tags         biometria
// @Produce      json
// @Security     BearerAuth
// @Param        employeeId  path  string  true  "ID del empleado"
// @Success      200  {object}  dto.ProfileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/biometria/empleados/{employeeId}/perfil [get]
func (h *BiometriaHandler) GetProfile(c *fiber.Ctx) error {
	out, err := h.profile.Get(c.Context(), c.Params("employeeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetProfileStatus godoc
// @Summary      Activar o desactivar el perfil biométrico
// @Tags         biometria
// @Accept       json
// @Security     BearerAuth
// @Param        employeeId  path  string                          true  "ID del empleado"
// @Param        body        body  dto.UpdateProfileStatusRequest  true  "active | inactive"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/biometria/empleados/{employeeId}/perfil [patch]
func (h *BiometriaHandler) SetProfileStatus(c *fiber.Ctx) error {
	var in dto.UpdateProfileStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := h.profile.SetStatus(c.Context(), c.Params("employeeId"), in.Status); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
