package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// MarketProvider obtiene mercados normalizados desde la API de Gamma.
type MarketProvider interface {
	// FetchMarketsByTag devuelve los mercados activos del tag dado,
	// normalizados a domain.Market, junto al número de registros raw
	// descartados por malformados (DataShapeError).
	FetchMarketsByTag(ctx context.Context, tag string) ([]domain.Market, int, error)
}
