// admin es la CLI de operación: migraciones, operadores, empleados, enlaces y perfiles.
//
// Uso: go run ./cmd/admin <comando> --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/biometria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/biometria-api/pkg/config"
	"github.com/jhoicas/biometria-api/pkg/logger"
)

var (
	// cfg y pool se inicializan en PersistentPreRunE y los comparten los subcomandos.
	cfg  *config.Config
	pool *pgxpool.Pool
	log  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Administración de la API de biometría",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "biometria-admin"})
		if cfg.DB.Driver != "postgres" {
			return fmt.Errorf("la CLI requiere DB_DRIVER=postgres (actual: %s)", cfg.DB.Driver)
		}
		pool, err = postgres.NewPool(cmd.Context(), cfg.DB)
		if err != nil {
			return fmt.Errorf("conectar a PostgreSQL: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if pool != nil {
			pool.Close()
		}
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones pendientes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return postgres.Migrate(cmd.Context(), pool, log)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(migrateCmd, usuarioCmd(), empleadosCmd(), enlaceCmd(), perfilCmd())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
