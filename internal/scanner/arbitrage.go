package scanner

import (
	"math"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// defaultArbThreshold es la desviación mínima de yes+no respecto a 1.0 para
// considerar que hay mispricing. Estrictamente mayor: 0.01 exacto no cuenta.
const defaultArbThreshold = 0.01

// ArbitrageDetector detecta desviaciones de la suma YES+NO dentro de un
// mismo mercado. No hay pairing entre mercados: los dos outcomes de un
// mercado binario deberían sumar 1.0.
type ArbitrageDetector struct {
	threshold float64
	validator *Validator
}

// NewArbitrageDetector crea un detector con el umbral dado.
// Si threshold <= 0 usa el default del 1%.
func NewArbitrageDetector(threshold float64, validator *Validator) *ArbitrageDetector {
	if threshold <= 0 {
		threshold = defaultArbThreshold
	}
	return &ArbitrageDetector{threshold: threshold, validator: validator}
}

// Deviation devuelve |yes + no - 1.0| redondeado a 4 decimales, simétrica
// respecto al intercambio de los dos lados. El redondeo evita que el ruido
// de float64 empuje una suma de exactamente 1.01 por encima del umbral.
func Deviation(yesPrice, noPrice float64) float64 {
	d := math.Abs(yesPrice + noPrice - 1.0)
	return math.Round(d*10000) / 10000
}

// Detect devuelve una oportunidad por cada mercado cuya desviación supera
// el umbral. Los mercados sin ambos outcome tokens se saltan.
func (d *ArbitrageDetector) Detect(markets []domain.Market) []domain.ArbitrageOpportunity {
	var opps []domain.ArbitrageOpportunity

	for _, m := range markets {
		if !m.HasBothTokens() {
			continue
		}

		deviation := Deviation(m.YesPrice, m.NoPrice)
		if deviation <= d.threshold {
			continue
		}

		opps = append(opps, domain.ArbitrageOpportunity{
			MarketID:   m.ID,
			Question:   m.Question,
			YesPrice:   m.YesPrice,
			NoPrice:    m.NoPrice,
			Deviation:  deviation,
			Profit:     deviation * 100,
			Validation: d.validator.ValidateMarket(m),
		})
	}

	return opps
}
