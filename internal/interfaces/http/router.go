package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/auth"
	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	"github.com/jhoicas/biometria-api/internal/application/profile"
	"github.com/jhoicas/biometria-api/internal/application/verification"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/biometria-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	Links        *enrollment.LinkUseCase
	Verification *verification.UseCase
	Profiles     *profile.UseCase
	Limiter      ratelimit.Limiter
	Checks       map[string]HealthCheck
	ServiceName  string
	Tokens       *jwt.Signer
	Log          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health(deps.ServiceName, deps.Checks))
	app.Get("/metrics", Metrics())

	api := app.Group("/api")
	bio := NewBiometriaHandler(deps.Links, deps.Verification, deps.Profiles)

	// Auth: login público, alta de operadores solo admin
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.Tokens), RequireRole(entity.RoleAdmin), authHandler.Register)

	// Enlace remoto (público, limitado por IP)
	public := api.Group("/public")
	if deps.Limiter != nil {
		public.Use(RateLimit(deps.Limiter, deps.Log))
	}
	public.Get("/biometria-remota/:employeeId", bio.CheckLink)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/biometria", AuthMiddleware(deps.Tokens), RequireRole(entity.RoleAdmin, entity.RoleRH))
	protected.Post("/empleados/:employeeId/enlace", bio.IssueLink)
	protected.Get("/empleados/:employeeId/perfil", bio.GetProfile)
	protected.Patch("/empleados/:employeeId/perfil", RequireRole(entity.RoleAdmin), bio.SetProfileStatus)
	protected.Post("/verificar", bio.Verify)
}
