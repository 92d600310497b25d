package domain

import "math"

// DefaultCoverProbability es la tasa de acierto condicional asumida para la
// pata de cobertura: si el target falla, asumimos que el cover paga con esta
// probabilidad. Es un supuesto del modelo, no una medida calibrada — el
// coverage resultante es una expectativa heurística, no una cota de arbitraje.
const DefaultCoverProbability = 0.98

// CoverageResult son las métricas del modelo de cobertura para una posición
// hedged de dos patas. Todos los valores van redondeados a 4 decimales.
type CoverageResult struct {
	// Coverage es la probabilidad estimada de que la posición pague:
	// targetPrice + (1 - targetPrice) × coverProb.
	Coverage float64
	// LossProbability es la probabilidad de que ninguna pata pague.
	LossProbability float64
	// ExpectedProfit es Coverage menos el coste total de las dos patas.
	ExpectedProfit float64
}

// CalculateCoverage evalúa la cobertura de un hedge donde targetPrice es
// P(outcome target) y coverPrice el precio de la pata de cobertura.
// coverProb es la probabilidad condicional de que el cover pague si el
// target falla; usar DefaultCoverProbability salvo configuración explícita.
func CalculateCoverage(targetPrice, coverPrice, coverProb float64) CoverageResult {
	pNotTarget := 1 - targetPrice

	coverage := targetPrice + pNotTarget*coverProb
	lossProb := pNotTarget * (1 - coverProb)
	expectedProfit := coverage - (targetPrice + coverPrice)

	return CoverageResult{
		Coverage:        round4(coverage),
		LossProbability: round4(lossProb),
		ExpectedProfit:  round4(expectedProfit),
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// tierThreshold define un escalón de clasificación por coverage.
type tierThreshold struct {
	min   float64
	tier  int
	label string
}

// Umbrales ordenados de mayor a menor; gana el primero que aplica.
// El tier 4 es el fallback y acepta cualquier coverage, incluso negativo.
var tierThresholds = []tierThreshold{
	{0.95, 1, "HIGH"},
	{0.90, 2, "GOOD"},
	{0.85, 3, "MODERATE"},
}

// ClassifyTier mapea un coverage a su tier de riesgo (1-4) y etiqueta.
func ClassifyTier(coverage float64) (int, string) {
	for _, t := range tierThresholds {
		if coverage >= t.min {
			return t.tier, t.label
		}
	}
	return 4, "LOW"
}
