package ports

import (
	"context"
	"time"
)

// LinkSheet son los datos de la hoja imprimible con el enlace de registro remoto.
type LinkSheet struct {
	EmployeeName string
	URL          string
	ExpiresAt    time.Time
}

// LinkSheetGenerator genera el PDF con el enlace y su código QR.
type LinkSheetGenerator interface {
	GenerateLinkSheet(ctx context.Context, sheet LinkSheet) ([]byte, error)
}
