package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biometria-api/internal/application/auth"
	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	"github.com/jhoicas/biometria-api/internal/application/ports"
	"github.com/jhoicas/biometria-api/internal/application/profile"
	"github.com/jhoicas/biometria-api/internal/application/verification"
	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/domain/repository"
	"github.com/jhoicas/biometria-api/internal/infrastructure/archive"
	"github.com/jhoicas/biometria-api/internal/infrastructure/events"
	"github.com/jhoicas/biometria-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/biometria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/biometria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/biometria-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/biometria-api/internal/infrastructure/vision"
	httpRouter "github.com/jhoicas/biometria-api/internal/interfaces/http"
	"github.com/jhoicas/biometria-api/internal/interfaces/ws"
	"github.com/jhoicas/biometria-api/pkg/config"
	"github.com/jhoicas/biometria-api/pkg/jwt"
	"github.com/jhoicas/biometria-api/pkg/logger"
)

// storage agrupa los repositorios del driver elegido.
type storage struct {
	employees repository.EmployeeRepository
	creds     repository.CredentialRepository
	profiles  repository.ProfileRepository
	users     repository.UserRepository
	tx        enrollment.TxRunner
	ping      httpRouter.HealthCheck
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	checks := map[string]httpRouter.HealthCheck{}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()
	if store.ping != nil {
		checks["db"] = store.ping
	}

	// Modelo facial: se carga una sola vez; si falla, el registro y la verificación por
	// imagen responden ErrModelUnavailable pero la API sigue arriba.
	loader := vision.NewHTTPLoader(cfg.Face.ServiceURL, cfg.Face.Timeout)
	if cfg.Face.Skip {
		log.Warn().Msg("FACE_SKIP activo: extractor local determinista, no usar en producción")
		loader = vision.StubLoader
	}
	faces := vision.NewCapability(loader)
	if err := faces.Init(ctx); err != nil {
		log.Error().Err(err).Msg("modelo facial no disponible")
	}
	checks["face_model"] = func(context.Context) error {
		if faces.State() != vision.Ready {
			return errors.New(faces.State().String())
		}
		return nil
	}

	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if cfg.NATS.URL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATS.URL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		defer nats.Close()
		publisher = nats
		checks["nats"] = func(context.Context) error { return nats.Ping() }
	}

	var captures ports.CaptureArchive = ports.NoopArchive{}
	if cfg.MinIO.Endpoint != "" {
		arch, err := archive.NewMinIOArchive(cfg.MinIO)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente MinIO")
		}
		if err := arch.EnsureBucket(ctx); err != nil {
			log.Error().Err(err).Msg("bucket de capturas")
		}
		captures = arch
	}

	var limiter ratelimit.Limiter = ratelimit.NewTokenBucket(cfg.Redis.RatePerMinute, cfg.Redis.RatePerMinute)
	if cfg.Redis.Addr != "" {
		rdb := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		redisLimiter := ratelimit.NewRedis(rdb, cfg.Redis.RatePerMinute)
		limiter = redisLimiter
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	creds := enrollment.NewCredentialService(store.creds, store.profiles, store.employees, enrollment.CredentialConfig{
		BaseURL:            cfg.Biometria.BaseURL,
		TTL:                cfg.Biometria.LinkTTL,
		AllowUnissuedLinks: cfg.Biometria.AllowUnissuedLinks,
	}, log)
	linkUC := enrollment.NewLinkUseCase(creds, store.employees, infrapdf.NewMarotoLinkSheetGenerator())
	verifyUC := verification.NewUseCase(store.profiles, faces, publisher, log)
	profileUC := profile.NewUseCase(store.profiles, store.employees, log)
	tokens := jwt.NewSigner(cfg.JWT)
	authUC := auth.NewAuthUseCase(store.users, tokens)
	if cfg.DB.Driver == "memory" {
		seedDemoAdmin(ctx, authUC, log)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 << 20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Biometría API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		Links:        linkUC,
		Verification: verifyUC,
		Profiles:     profileUC,
		Limiter:      limiter,
		Checks:       checks,
		ServiceName:  cfg.App.Name,
		Tokens:       tokens,
		Log:          log,
	})

	gateway := ws.NewGateway(enrollment.SessionDeps{
		Credentials: creds,
		Tx:          store.tx,
		Extractor:   faces,
		Archive:     captures,
		Events:      publisher,
		Loop:        enrollment.LoopConfig{Interval: cfg.Biometria.TickInterval},
		Log:         log,
	}, cfg.WS.AllowedOrigins, log)
	wsServer := ws.NewServer(cfg.WS.Addr(), gateway)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.WS.Addr()).Msg("gateway websocket escuchando")
		if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("gateway websocket finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidores...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del gateway websocket")
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// seedDemoAdmin crea el operador de desarrollo del almacén en memoria.
func seedDemoAdmin(ctx context.Context, uc *auth.AuthUseCase, log zerolog.Logger) {
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email:     "admin@demo.local",
		Password:  "admin-demo",
		CompanyID: "demo",
		Name:      "Administrador Demo",
		Role:      "admin",
	})
	if err != nil {
		log.Error().Err(err).Msg("crear operador demo")
		return
	}
	log.Warn().Str("email", "admin@demo.local").Msg("operador demo creado (password: admin-demo)")
}

// openStorage abre PostgreSQL (con migraciones) o el almacén en memoria con un empleado demo.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.DB.Driver == "memory" {
		mem := memory.NewStore()
		mem.AddEmployee(entity.Employee{ID: "demo-001", Name: "Empleado Demo", CompanyID: "demo"})
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar; empleado demo-001 disponible")
		return &storage{
			employees: mem.Employees(),
			creds:     mem.Credentials(),
			profiles:  mem.Profiles(),
			users:     mem.Users(),
			tx:        mem.TxRunner(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		employees: postgres.NewEmployeeRepository(pool),
		creds:     postgres.NewCredentialRepository(pool),
		profiles:  postgres.NewProfileRepository(pool),
		users:     postgres.NewUserRepository(pool),
		tx:        postgres.NewTxRunner(pool),
		ping:      func(ctx context.Context) error { return pool.Ping(ctx) },
		close:     pool.Close,
	}, nil
}
