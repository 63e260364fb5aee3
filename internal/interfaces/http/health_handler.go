package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/biometria-api/internal/application/dto"
)

// HealthCheck verifica una dependencia; nil = ok.
type HealthCheck func(ctx context.Context) error

// Health godoc
// @Summary      Estado del servicio
// @Tags         sistema
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func Health(service string, checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		out := dto.HealthResponse{Status: "ok", Service: service, Checks: map[string]string{}}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				out.Status = "degraded"
				out.Checks[name] = err.Error()
				continue
			}
			out.Checks[name] = "ok"
		}
		if out.Status != "ok" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(out)
		}
		return c.JSON(out)
	}
}

// Metrics expone el registro por defecto de Prometheus.
func Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
