package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/biometria-api/internal/application/profile"
	"github.com/jhoicas/biometria-api/internal/infrastructure/postgres"
)

func perfilCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "perfil", Short: "Perfiles biométricos"}
	uc := func() *profile.UseCase {
		return profile.NewUseCase(postgres.NewProfileRepository(pool), postgres.NewEmployeeRepository(pool), log)
	}

	ver := &cobra.Command{
		Use:   "ver <employeeId>",
		Short: "Muestra el estado del perfil",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := uc().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "EMPLEADO\tESTADO\tCAPTURADO\tACTUALIZADO")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.EmployeeID, p.Status,
				p.CapturedAt.Local().Format("2006-01-02 15:04"), p.UpdatedAt.Local().Format("2006-01-02 15:04"))
			return w.Flush()
		},
	}

	estado := &cobra.Command{
		Use:       "estado <employeeId> <active|inactive>",
		Short:     "Activa o desactiva el perfil",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"active", "inactive"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := uc().SetStatus(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "perfil de %s: %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(ver, estado)
	return cmd
}
