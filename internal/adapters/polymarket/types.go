package polymarket

import "encoding/json"

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaTag es la respuesta de GET /tags/slug/{slug}.
type gammaTag struct {
	ID    json.Number `json:"id"`
	Label string      `json:"label"`
	Slug  string      `json:"slug"`
}

// gammaMarket contiene la metadata de un mercado en Gamma.
// Varios campos numéricos llegan como strings JSON; clobTokenIds y
// outcomePrices son arrays JSON codificados dentro de un string.
type gammaMarket struct {
	ID            string      `json:"id"`
	Question      string      `json:"question"`
	Slug          string      `json:"slug"`
	ConditionID   string      `json:"conditionId"`
	ClobTokenIDs  string      `json:"clobTokenIds"`
	OutcomePrices string      `json:"outcomePrices"`
	Volume        json.Number `json:"volume"`
	Liquidity     json.Number `json:"liquidity"`
	EndDateISO    string      `json:"endDate"`
	Active        bool        `json:"active"`
	Closed        bool        `json:"closed"`
}

// --- CLOB API ---

// priceResponse es la respuesta de GET /price.
type priceResponse struct {
	Price string `json:"price"`
}

// orderBookResponse es la respuesta de GET /book.
type orderBookResponse struct {
	AssetID string         `json:"asset_id"`
	Bids    []bookEntryRaw `json:"bids"`
	Asks    []bookEntryRaw `json:"asks"`
}

// bookEntryRaw es un nivel de precio raw de la API (strings para mayor precisión).
type bookEntryRaw struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// --- Websocket (canal market) ---

// wsCommand es el payload de subscribe/unsubscribe del canal market.
type wsCommand struct {
	Type     string   `json:"type"`
	AssetIDs []string `json:"assets_ids"`
}

// wsEnvelope discrimina el tipo de evento; el resto de campos se decodifican
// según event_type.
type wsEnvelope struct {
	EventType string         `json:"event_type"` // "book" | "price_change" | "last_trade_price"
	AssetID   string         `json:"asset_id"`
	Bids      []bookEntryRaw `json:"bids"`
	Asks      []bookEntryRaw `json:"asks"`
	Price     string         `json:"price"`
	Timestamp string         `json:"timestamp"`
}
