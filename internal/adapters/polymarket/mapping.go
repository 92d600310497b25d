package polymarket

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// mapping.go — normalización estricta de DTOs de Gamma a domain.Market.
//
// Un registro con un campo malformado no se normaliza a medias: se devuelve
// DataShapeError y el caller lo descarta contándolo. Un Market que sale de
// aquí siempre tiene pregunta, precios en [0,1] y tokens coherentes.

// endDateLayouts son los formatos de fecha que usa Polymarket.
var endDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// normalizeMarket convierte un gammaMarket raw a domain.Market.
func normalizeMarket(gm gammaMarket, now time.Time) (domain.Market, error) {
	if gm.ID == "" {
		return domain.Market{}, &domain.DataShapeError{Field: "id", Reason: "missing"}
	}
	if gm.Question == "" {
		return domain.Market{}, &domain.DataShapeError{MarketID: gm.ID, Field: "question", Reason: "missing"}
	}

	m := domain.Market{
		ID:          gm.ID,
		Question:    gm.Question,
		Slug:        gm.Slug,
		ConditionID: gm.ConditionID,
		Active:      gm.Active && !gm.Closed,
	}

	yesTok, noTok, err := parseTokenIDs(gm)
	if err != nil {
		return domain.Market{}, err
	}
	m.YesTokenID = yesTok
	m.NoTokenID = noTok

	m.YesPrice, m.NoPrice, err = parseOutcomePrices(gm)
	if err != nil {
		return domain.Market{}, err
	}

	m.Volume, err = parseNumber(gm.ID, "volume", gm.Volume)
	if err != nil {
		return domain.Market{}, err
	}
	m.Liquidity, err = parseNumber(gm.ID, "liquidity", gm.Liquidity)
	if err != nil {
		return domain.Market{}, err
	}

	if gm.EndDateISO != "" {
		m.EndDate, err = parseEndDate(gm.ID, gm.EndDateISO)
		if err != nil {
			return domain.Market{}, err
		}
	}
	m.HoursUntilExpiry = m.HoursUntilExpiryFrom(now)

	return m, nil
}

// parseTokenIDs decodifica clobTokenIds: un array JSON [yes, no] codificado
// como string. Ausente es válido (mercado sin tokens listados).
func parseTokenIDs(gm gammaMarket) (string, string, error) {
	if gm.ClobTokenIDs == "" {
		return "", "", nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(gm.ClobTokenIDs), &ids); err != nil {
		return "", "", &domain.DataShapeError{MarketID: gm.ID, Field: "clobTokenIds", Reason: "not a JSON array: " + err.Error()}
	}
	switch len(ids) {
	case 0:
		return "", "", nil
	case 2:
		return ids[0], ids[1], nil
	default:
		return "", "", &domain.DataShapeError{
			MarketID: gm.ID,
			Field:    "clobTokenIds",
			Reason:   fmt.Sprintf("expected 2 outcome tokens, got %d", len(ids)),
		}
	}
}

// parseOutcomePrices decodifica outcomePrices: array JSON de dos decimales
// en string. Los precios son obligatorios y tienen que caer en [0, 1].
func parseOutcomePrices(gm gammaMarket) (float64, float64, error) {
	if gm.OutcomePrices == "" {
		return 0, 0, &domain.DataShapeError{MarketID: gm.ID, Field: "outcomePrices", Reason: "missing"}
	}
	var raw []string
	if err := json.Unmarshal([]byte(gm.OutcomePrices), &raw); err != nil {
		return 0, 0, &domain.DataShapeError{MarketID: gm.ID, Field: "outcomePrices", Reason: "not a JSON array: " + err.Error()}
	}
	if len(raw) < 2 {
		return 0, 0, &domain.DataShapeError{
			MarketID: gm.ID,
			Field:    "outcomePrices",
			Reason:   fmt.Sprintf("expected 2 prices, got %d", len(raw)),
		}
	}

	prices := make([]float64, 2)
	for i := 0; i < 2; i++ {
		p, err := strconv.ParseFloat(raw[i], 64)
		if err != nil {
			return 0, 0, &domain.DataShapeError{MarketID: gm.ID, Field: "outcomePrices", Reason: "not a decimal: " + raw[i]}
		}
		if p < 0 || p > 1 {
			return 0, 0, &domain.DataShapeError{
				MarketID: gm.ID,
				Field:    "outcomePrices",
				Reason:   fmt.Sprintf("price out of range: %v", p),
			}
		}
		prices[i] = p
	}
	return prices[0], prices[1], nil
}

// parseNumber convierte un json.Number opcional. Ausente vale 0.
func parseNumber(marketID, field string, n json.Number) (float64, error) {
	if n.String() == "" {
		return 0, nil
	}
	v, err := n.Float64()
	if err != nil {
		return 0, &domain.DataShapeError{MarketID: marketID, Field: field, Reason: "not a number: " + n.String()}
	}
	return v, nil
}

// parseEndDate prueba los formatos conocidos de Polymarket.
func parseEndDate(marketID, value string) (time.Time, error) {
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &domain.DataShapeError{MarketID: marketID, Field: "endDate", Reason: "unparseable date: " + value}
}

// mapOrderBook convierte la respuesta de /book a domain.OrderBook.
func mapOrderBook(tokenID string, r orderBookResponse) domain.OrderBook {
	ob := domain.OrderBook{
		TokenID: tokenID,
		Bids:    mapBookEntries(r.Bids, false),
		Asks:    mapBookEntries(r.Asks, true),
	}
	if r.AssetID != "" {
		ob.TokenID = r.AssetID
	}
	return ob
}

// mapBookEntries convierte entries raw a domain.BookEntry y los ordena.
// ascending=true → menor a mayor (asks), ascending=false → mayor a menor (bids).
func mapBookEntries(raw []bookEntryRaw, ascending bool) []domain.BookEntry {
	entries := make([]domain.BookEntry, 0, len(raw))
	for _, r := range raw {
		price, _ := strconv.ParseFloat(r.Price, 64)
		size, _ := strconv.ParseFloat(r.Size, 64)
		if price <= 0 || size <= 0 {
			continue
		}
		entries = append(entries, domain.BookEntry{Price: price, Size: size})
	}

	sort.Slice(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Price < entries[j].Price
		}
		return entries[i].Price > entries[j].Price
	})

	return entries
}
