package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/biometria-api/internal/domain/entity"
	"github.com/jhoicas/biometria-api/internal/infrastructure/postgres"
)

func empleadosCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "empleados", Short: "Registro de empleados"}

	var latin1 bool
	importar := &cobra.Command{
		Use:   "importar <archivo.csv>",
		Short: "Importa empleados desde CSV (id;nombre;empresa)",
		Long: "Importa o actualiza empleados. El CSV usa ';' como separador y puede traer " +
			"encabezado. Exportaciones de nómina en ISO-8859-1 se leen con --latin1.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer f.Close()

			var r io.Reader = f
			if latin1 {
				r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
			}
			employees, err := parseEmployees(r)
			if err != nil {
				return err
			}

			repo := postgres.NewEmployeeRepository(pool)
			for i := range employees {
				if err := repo.Upsert(cmd.Context(), &employees[i]); err != nil {
					return fmt.Errorf("empleado %s: %w", employees[i].ID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d empleados importados\n", len(employees))
			return nil
		},
	}
	importar.Flags().BoolVar(&latin1, "latin1", false, "el archivo está en ISO-8859-1")

	cmd.AddCommand(importar)
	return cmd
}

// parseEmployees lee filas id;nombre;empresa. La primera fila se omite si es encabezado.
func parseEmployees(r io.Reader) ([]entity.Employee, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var out []entity.Employee
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "id") {
			continue
		}
		e := entity.Employee{
			ID:        strings.TrimSpace(rec[0]),
			Name:      strings.TrimSpace(rec[1]),
			CompanyID: strings.TrimSpace(rec[2]),
		}
		if e.ID == "" || e.Name == "" || e.CompanyID == "" {
			return nil, fmt.Errorf("línea %d: id, nombre y empresa son requeridos", line)
		}
		out = append(out, e)
	}
	return out, nil
}
