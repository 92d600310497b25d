package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

const (
	pricePath = "/price"
	bookPath  = "/book"
)

// FetchPrice devuelve el precio actual del token para el lado dado
// ("BUY" | "SELL").
func (c *Client) FetchPrice(ctx context.Context, tokenID, side string) (float64, error) {
	reqURL := fmt.Sprintf("%s%s?token_id=%s&side=%s",
		c.clobBase, pricePath, url.QueryEscape(tokenID), url.QueryEscape(side))

	var resp priceResponse
	if err := c.getJSON(ctx, c.clobLimiter, reqURL, &resp); err != nil {
		return 0, fmt.Errorf("clob.FetchPrice %s: %w", tokenID, err)
	}

	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("clob.FetchPrice %s: bad price %q", tokenID, resp.Price)
	}
	return price, nil
}

// FetchOrderBook devuelve el libro de órdenes del token, con los niveles
// ordenados (bids descendente, asks ascendente).
func (c *Client) FetchOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	reqURL := fmt.Sprintf("%s%s?token_id=%s", c.clobBase, bookPath, url.QueryEscape(tokenID))

	var resp orderBookResponse
	if err := c.getJSON(ctx, c.clobLimiter, reqURL, &resp); err != nil {
		return domain.OrderBook{}, fmt.Errorf("clob.FetchOrderBook %s: %w", tokenID, err)
	}
	return mapOrderBook(tokenID, resp), nil
}
