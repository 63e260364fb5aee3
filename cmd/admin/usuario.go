package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/biometria-api/internal/application/auth"
	"github.com/jhoicas/biometria-api/internal/application/dto"
	"github.com/jhoicas/biometria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/biometria-api/pkg/jwt"
)

func usuarioCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "usuario", Short: "Operadores de la API"}

	var in dto.RegisterRequest
	crear := &cobra.Command{
		Use:   "crear",
		Short: "Crea un operador (admin o rh)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), jwt.NewSigner(cfg.JWT))
			user, err := uc.RegisterUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "operador %s creado (%s, rol %s)\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
	crear.Flags().StringVar(&in.Email, "email", "", "email del operador")
	crear.Flags().StringVar(&in.Password, "password", "", "password (mínimo 8 caracteres)")
	crear.Flags().StringVar(&in.CompanyID, "empresa", "", "ID de la empresa")
	crear.Flags().StringVar(&in.Name, "nombre", "", "nombre visible")
	crear.Flags().StringVar(&in.Role, "rol", "rh", "admin | rh")
	for _, f := range []string{"email", "password", "empresa"} {
		_ = crear.MarkFlagRequired(f)
	}

	cmd.AddCommand(crear)
	return cmd
}
