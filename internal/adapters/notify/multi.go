package notify

import (
	"context"
	"errors"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/alejandrodnm/polyhedge/internal/ports"
)

// Multi entrega el reporte a varios notifiers. Todos reciben el reporte
// aunque alguno falle; los errores se agregan.
type Multi []ports.Notifier

// Notify reparte el reporte a cada notifier.
func (m Multi) Notify(ctx context.Context, report domain.ScanReport) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
