package domain

// Validation es el resultado de validar un mercado o un par de mercados.
// No es un error: un mercado inválido es un resultado normal del ciclo,
// con sus razones acumuladas (nunca short-circuit).
type Validation struct {
	Valid   bool
	Reasons []string
}

// ArbitrageOpportunity es una desviación de la suma YES+NO respecto a 1.0
// dentro de un mismo mercado. No hay pairing entre mercados: opera sobre
// los dos outcomes complementarios de un único mercado.
type ArbitrageOpportunity struct {
	MarketID   string
	Question   string
	YesPrice   float64
	NoPrice    float64
	Deviation  float64 // |yes + no - 1.0|
	Profit     float64 // Deviation × 100, en puntos porcentuales
	Validation Validation
}

// HedgeOpportunity es un par target/cover entre dos mercados relacionados
// cuya cobertura conjunta supera el mínimo configurado.
// Inmutable una vez creada: cada ciclo produce oportunidades nuevas.
type HedgeOpportunity struct {
	ID             string // uuid asignado en la detección
	Target         Market
	TargetPosition Side
	Cover          Market
	CoverPosition  Side
	Coverage       float64
	Tier           int
	TierLabel      string
	TotalCost      float64 // precio target + precio cover
	ExpectedProfit float64 // Coverage - TotalCost
	Relationship   string  // descripción legible del vínculo entre patas
}

// MarketPair es un par no ordenado de IDs de mercado con igualdad definida,
// usable como key de map. Reemplaza las tuplas ad hoc de strings: el orden
// de construcción no afecta la igualdad.
type MarketPair struct {
	A string
	B string
}

// NewMarketPair construye el par canónico (A <= B) para los IDs dados.
func NewMarketPair(id1, id2 string) MarketPair {
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	return MarketPair{A: id1, B: id2}
}

// Contains devuelve true si el par incluye el ID dado.
func (p MarketPair) Contains(id string) bool {
	return p.A == id || p.B == id
}
