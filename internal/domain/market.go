package domain

import "time"

// Market representa un mercado de predicción binario normalizado.
// Se construye siempre vía normalización estricta (adapters/polymarket/mapping.go):
// si un campo raw es inválido el registro se descarta con DataShapeError,
// nunca llega aquí a medias.
type Market struct {
	ID          string
	Question    string
	Slug        string
	ConditionID string
	YesTokenID  string
	NoTokenID   string
	YesPrice    float64 // probabilidad implícita del outcome YES (0-1)
	NoPrice     float64 // probabilidad implícita del outcome NO (0-1)
	Volume      float64
	Liquidity   float64
	EndDate     time.Time // zero = sin fecha de resolución conocida
	Active      bool

	// Asignados por el grouper en cada ciclo.
	GroupID    string
	GroupLabel string // fragmento distintivo de la pregunta, ej. "above $2B"

	// HoursUntilExpiry son las horas hasta la resolución, derivadas de EndDate
	// en el momento del fetch. -1 = sin expiración conocida.
	HoursUntilExpiry float64
}

// HasEndDate devuelve true si el mercado tiene fecha de resolución.
func (m Market) HasEndDate() bool {
	return !m.EndDate.IsZero()
}

// HasBothTokens devuelve true si el mercado tiene los dos outcome tokens.
func (m Market) HasBothTokens() bool {
	return m.YesTokenID != "" && m.NoTokenID != ""
}

// PriceFor devuelve el precio del lado dado.
func (m Market) PriceFor(side Side) float64 {
	if side == SideYes {
		return m.YesPrice
	}
	return m.NoPrice
}

// HoursUntilExpiryFrom calcula las horas hasta EndDate desde el instante dado.
// Devuelve -1 si no hay fecha o si ya pasó.
func (m Market) HoursUntilExpiryFrom(now time.Time) float64 {
	if m.EndDate.IsZero() {
		return -1
	}
	h := m.EndDate.Sub(now).Hours()
	if h < 0 {
		return -1
	}
	return h
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si la pregunta está vacía usa el ID del mercado como fallback.
func TruncateQuestion(question, id string, maxLen int) string {
	q := question
	if q == "" {
		q = id
	}
	if len(q) > maxLen && maxLen > 3 {
		q = q[:maxLen-3] + "..."
	}
	return q
}

// Side es uno de los dos lados de un mercado binario.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Opposite devuelve el lado contrario.
func (s Side) Opposite() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// TimeBucket clasifica horas-hasta-expiración en rangos para el reporte.
type TimeBucket struct {
	Label string
	Min   float64
	Max   float64
}

// TimeBuckets son los rangos de expiración usados en el resumen de cada scan.
var TimeBuckets = []TimeBucket{
	{"<1h", 0, 1},
	{"1-5h", 1, 5},
	{"5-10h", 5, 10},
	{"10-24h", 10, 24},
	{"24-48h", 24, 48},
	{"48h+", 48, -1}, // Max -1 = sin tope
}

// BucketFor devuelve la etiqueta del rango para las horas dadas.
// Devuelve "N/A" para el sentinel -1 (sin expiración).
func BucketFor(hours float64) string {
	if hours < 0 {
		return "N/A"
	}
	for _, b := range TimeBuckets {
		if hours >= b.Min && (b.Max < 0 || hours < b.Max) {
			return b.Label
		}
	}
	return "48h+"
}

// ExpirySummary cuenta mercados por rango de expiración.
func ExpirySummary(markets []Market) map[string]int {
	buckets := make(map[string]int, len(TimeBuckets)+1)
	for _, b := range TimeBuckets {
		buckets[b.Label] = 0
	}
	buckets["N/A"] = 0
	for _, m := range markets {
		buckets[BucketFor(m.HoursUntilExpiry)]++
	}
	return buckets
}
