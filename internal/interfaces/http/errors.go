package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/domain"
)

// domainErrors traduce errores de dominio a status HTTP y código. El orden importa:
// un error envuelto puede coincidir con varios sentinelas y gana el primero.
var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidDescriptor, fiber.StatusBadRequest, "INVALID_DESCRIPTOR"},
	{domain.ErrNoFaceDetected, fiber.StatusUnprocessableEntity, "NO_FACE"},
	{domain.ErrNoSample, fiber.StatusBadRequest, "NO_SAMPLE"},
	{domain.ErrEmployeeNotFound, fiber.StatusNotFound, "EMPLOYEE_NOT_FOUND"},
	{domain.ErrProfileNotFound, fiber.StatusNotFound, "PROFILE_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrModelUnavailable, fiber.StatusServiceUnavailable, "MODEL_UNAVAILABLE"},
	{domain.ErrPersistence, fiber.StatusServiceUnavailable, "PERSISTENCE"},
}

// writeError responde con el status que corresponde al error de dominio, o 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
