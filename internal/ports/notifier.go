package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// Notifier presenta el resultado de un scan al usuario.
// Es fire-and-forget: un error del notifier se loguea y nunca se propaga
// como fallo del scan.
type Notifier interface {
	// Notify entrega el reporte del ciclo (resumen + top oportunidades).
	Notify(ctx context.Context, report domain.ScanReport) error
}
