package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// Storage persiste el estado de cada ciclo de escaneo.
// Todas las escrituras son idempotentes por primary key (market id, group id,
// hedge id): reintentar un write es seguro.
type Storage interface {
	// UpsertMarkets guarda o actualiza los mercados del ciclo.
	UpsertMarkets(ctx context.Context, markets []domain.Market) error

	// UpsertGroups guarda o actualiza los grupos del ciclo.
	UpsertGroups(ctx context.Context, groups []domain.MarketGroup) error

	// SaveHedges inserta las oportunidades de hedge detectadas.
	SaveHedges(ctx context.Context, hedges []domain.HedgeOpportunity) error

	// LogScan añade el resumen del ciclo al historial.
	LogScan(ctx context.Context, summary domain.ScanSummary) error

	// RecentHedges devuelve las últimas oportunidades registradas.
	RecentHedges(ctx context.Context, limit int) ([]domain.HedgeOpportunity, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
