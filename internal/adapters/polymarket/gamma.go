package polymarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const (
	gammaTagPath     = "/tags/slug/"
	gammaMarketsPath = "/markets"
	gammaPageLimit   = 200
)

// FetchMarketsByTag resuelve el slug del tag en Gamma y devuelve sus mercados
// activos, normalizados y ordenados por volumen descendente. El segundo valor
// es el número de registros raw descartados por malformados.
func (c *Client) FetchMarketsByTag(ctx context.Context, tag string) ([]domain.Market, int, error) {
	tagID, err := c.resolveTag(ctx, tag)
	if err != nil {
		return nil, 0, fmt.Errorf("gamma.FetchMarketsByTag %q: %w", tag, err)
	}

	reqURL := fmt.Sprintf("%s%s?tag_id=%s&closed=false&active=true&order=volume&ascending=false&limit=%d",
		c.gammaBase,
		gammaMarketsPath,
		url.QueryEscape(tagID),
		gammaPageLimit,
	)

	var raw []gammaMarket
	if err := c.getJSON(ctx, c.gammaLimiter, reqURL, &raw); err != nil {
		return nil, 0, fmt.Errorf("gamma.FetchMarketsByTag %q: %w", tag, err)
	}

	now := c.now()
	markets := make([]domain.Market, 0, len(raw))
	dropped := 0
	for _, gm := range raw {
		m, err := normalizeMarket(gm, now)
		if err != nil {
			dropped++
			var shape *domain.DataShapeError
			if errors.As(err, &shape) {
				slog.Debug("malformed market record dropped",
					"tag", tag,
					"market_id", shape.MarketID,
					"field", shape.Field,
					"reason", shape.Reason,
				)
			}
			continue
		}
		markets = append(markets, m)
	}

	slog.Debug("gamma markets fetched",
		"tag", tag,
		"markets", len(markets),
		"dropped", dropped,
	)
	return markets, dropped, nil
}

// resolveTag traduce el slug del tag a su ID numérico en Gamma.
func (c *Client) resolveTag(ctx context.Context, tag string) (string, error) {
	var t gammaTag
	reqURL := c.gammaBase + gammaTagPath + url.PathEscape(tag)
	if err := c.getJSON(ctx, c.gammaLimiter, reqURL, &t); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	if t.ID.String() == "" {
		return "", fmt.Errorf("resolve tag: %q has no id", tag)
	}
	return t.ID.String(), nil
}
