package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/infrastructure/ratelimit"
)

// RateLimit limita por IP las rutas públicas.
//   - 429 Too Many Requests → cuota agotada.
//   - Si el limitador falla (Redis caído) se deja pasar la solicitud y se registra.
func RateLimit(limiter ratelimit.Limiter, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := limiter.Allow(c.Context(), c.IP())
		if err != nil {
			log.Warn().Err(err).Str("ip", c.IP()).Msg("limitador no disponible")
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas solicitudes, intente en un minuto",
			})
		}
		return c.Next()
	}
}
