package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/biometria-api/internal/application/enrollment"
	infrapdf "github.com/jhoicas/biometria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/biometria-api/internal/infrastructure/postgres"
)

func linkUseCase() *enrollment.LinkUseCase {
	employees := postgres.NewEmployeeRepository(pool)
	creds := enrollment.NewCredentialService(
		postgres.NewCredentialRepository(pool),
		postgres.NewProfileRepository(pool),
		employees,
		enrollment.CredentialConfig{
			BaseURL:            cfg.Biometria.BaseURL,
			TTL:                cfg.Biometria.LinkTTL,
			AllowUnissuedLinks: cfg.Biometria.AllowUnissuedLinks,
		},
		log,
	)
	return enrollment.NewLinkUseCase(creds, employees, infrapdf.NewMarotoLinkSheetGenerator())
}

func enlaceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "enlace", Short: "Enlaces de registro remoto"}

	var pdfPath string
	emitir := &cobra.Command{
		Use:   "emitir <employeeId>",
		Short: "Emite un enlace nuevo (invalida el anterior)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := linkUseCase()
			if pdfPath != "" {
				pdf, link, err := uc.IssueSheet(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := os.WriteFile(pdfPath, pdf, 0o600); err != nil {
					return fmt.Errorf("escribir %s: %w", pdfPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\nhoja: %s (vence %s)\n", link.URL, pdfPath, link.ExpiresAt.Local().Format("2006-01-02 15:04"))
				return nil
			}
			link, err := uc.Issue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nvence %s\n", link.URL, link.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	emitir.Flags().StringVar(&pdfPath, "pdf", "", "guardar además la hoja imprimible con QR en este archivo")

	validar := &cobra.Command{
		Use:   "validar <employeeId> <token>",
		Short: "Muestra el estado de un enlace sin consumirlo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := linkUseCase().Check(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Status, res.Message)
			return nil
		},
	}

	cmd.AddCommand(emitir, validar)
	return cmd
}
