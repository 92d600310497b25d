package ports

import (
	"context"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// PriceProvider consulta precios y orderbooks puntuales del CLOB.
// Lo usan los checks auxiliares (sampling de estabilidad); un sample
// fallido se ignora, nunca aborta el scan que lo engloba.
type PriceProvider interface {
	// FetchPrice devuelve el precio actual del token para el lado dado
	// ("BUY" | "SELL").
	FetchPrice(ctx context.Context, tokenID, side string) (float64, error)

	// FetchOrderBook devuelve el libro de órdenes del token.
	FetchOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error)
}
